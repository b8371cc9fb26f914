package partner

import (
	"github.com/printshop/backend/internal/domain/shared"
)

// Event types for the partner context
const (
	EventTypeClientCreated     = "partner.client.created"
	EventTypeClientDeactivated = "partner.client.deactivated"
)

// ClientCreatedEvent is emitted when a new client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Type  ClientType `json:"type"`
}

// NewClientCreatedEvent creates a new client created event
func NewClientCreatedEvent(client *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, "Client", client.ID),
		Email:           client.Email,
		Name:            client.Name,
		Type:            client.Type,
	}
}

// ClientDeactivatedEvent is emitted when a client is deactivated
type ClientDeactivatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewClientDeactivatedEvent creates a new client deactivated event
func NewClientDeactivatedEvent(client *Client) *ClientDeactivatedEvent {
	return &ClientDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeactivated, "Client", client.ID),
		Email:           client.Email,
	}
}
