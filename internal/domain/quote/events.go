package quote

import (
	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the quote context
const (
	EventTypeQuoteSubmitted = "quote.submitted"
	EventTypeQuoteReplied   = "quote.replied"
	EventTypeQuoteAccepted  = "quote.accepted"
	EventTypeQuoteRejected  = "quote.rejected"
	EventTypeQuoteConverted = "quote.converted"
)

// QuoteSubmittedEvent is emitted when a guest submits a new quote request
type QuoteSubmittedEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID `json:"client_id"`
	ItemCount int       `json:"item_count"`
}

// NewQuoteSubmittedEvent creates a quote submitted event
func NewQuoteSubmittedEvent(q *Quote) *QuoteSubmittedEvent {
	return &QuoteSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteSubmitted, "Quote", q.ID),
		ClientID:        q.ClientID,
		ItemCount:       len(q.Items),
	}
}

// QuoteRepliedEvent is emitted when staff prices a quote. The
// notification collaborator receives the token secrets separately from
// the reply response, never through the event bus.
type QuoteRepliedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID       `json:"client_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewQuoteRepliedEvent creates a quote replied event
func NewQuoteRepliedEvent(q *Quote, amount decimal.Decimal) *QuoteRepliedEvent {
	return &QuoteRepliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteReplied, "Quote", q.ID),
		ClientID:        q.ClientID,
		Amount:          amount,
	}
}

// QuoteAcceptedEvent is emitted when a client accepts via token
type QuoteAcceptedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
}

// NewQuoteAcceptedEvent creates a quote accepted event
func NewQuoteAcceptedEvent(q *Quote) *QuoteAcceptedEvent {
	return &QuoteAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteAccepted, "Quote", q.ID),
		ClientID:        q.ClientID,
	}
}

// QuoteRejectedEvent is emitted when a client rejects via token
type QuoteRejectedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
}

// NewQuoteRejectedEvent creates a quote rejected event
func NewQuoteRejectedEvent(q *Quote) *QuoteRejectedEvent {
	return &QuoteRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteRejected, "Quote", q.ID),
		ClientID:        q.ClientID,
	}
}

// QuoteConvertedEvent is emitted when an approved quote becomes a project
type QuoteConvertedEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID `json:"client_id"`
	ProjectID uuid.UUID `json:"project_id"`
}

// NewQuoteConvertedEvent creates a quote converted event
func NewQuoteConvertedEvent(q *Quote, projectID uuid.UUID) *QuoteConvertedEvent {
	return &QuoteConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteConverted, "Quote", q.ID),
		ClientID:        q.ClientID,
		ProjectID:       projectID,
	}
}
