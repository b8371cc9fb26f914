package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/printshop/backend/internal/domain/shared"
)

// ClientType represents the type of client
type ClientType string

const (
	ClientTypeIndividual ClientType = "individual"
	ClientTypeCompany    ClientType = "company"
)

// IsValid returns true if the client type is a known value
func (t ClientType) IsValid() bool {
	return t == ClientTypeIndividual || t == ClientTypeCompany
}

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lower-cases and trims an email address. All lookups and
// the unique index operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Client represents a customer of the shop. Clients are created implicitly
// by public intake flows (quote submission, checkout) keyed on email.
type Client struct {
	shared.BaseAggregateRoot
	Email  string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_clients_email"`
	Name   string     `gorm:"type:varchar(200);not null"`
	Type   ClientType `gorm:"type:varchar(20);not null;default:'individual'"`
	Active bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client with a normalized email
func NewClient(email, name string, clientType ClientType) (*Client, error) {
	email = NormalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return nil, shared.NewValidationError("invalid email address")
	}
	if name == "" {
		name = email
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("client name cannot exceed 200 characters")
	}
	if clientType == "" {
		clientType = ClientTypeIndividual
	}
	if !clientType.IsValid() {
		return nil, shared.NewValidationError("client type must be individual or company")
	}

	client := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		Type:              clientType,
		Active:            true,
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// Update changes the client's display name and type
func (c *Client) Update(name string, clientType ClientType) error {
	if name == "" {
		return shared.NewValidationError("client name is required")
	}
	if len(name) > 200 {
		return shared.NewValidationError("client name cannot exceed 200 characters")
	}
	if !clientType.IsValid() {
		return shared.NewValidationError("client type must be individual or company")
	}
	c.Name = name
	c.Type = clientType
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate marks the client inactive. Used instead of deletion while
// quotes, orders, or projects still reference the client.
func (c *Client) Deactivate() {
	if !c.Active {
		return
	}
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate re-enables a deactivated client
func (c *Client) Activate() {
	if c.Active {
		return
	}
	c.Active = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
