package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusReviewing QuoteStatus = "reviewing"
	QuoteStatusQuoted    QuoteStatus = "quoted"
	QuoteStatusApproved  QuoteStatus = "approved"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusConverted QuoteStatus = "converted"
)

// IsValid returns true if the status is a known value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusReviewing, QuoteStatusQuoted,
		QuoteStatusApproved, QuoteStatusRejected, QuoteStatusConverted:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for states that admit no further transition
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusRejected || s == QuoteStatusConverted
}

// bookkeepingTransitions enumerates the staff-editable moves between
// pre-decision states. Approved, Rejected, and Converted are reachable
// only through the token and conversion paths.
var bookkeepingTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusPending:   {QuoteStatusReviewing, QuoteStatusQuoted},
	QuoteStatusReviewing: {QuoteStatusQuoted},
	QuoteStatusQuoted:    {QuoteStatusReviewing},
}

// Quote represents a customer's request for priced work. It moves
// through a staff-mediated workflow before becoming a Project.
type Quote struct {
	shared.BaseAggregateRoot
	ClientID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	Description  string           `gorm:"type:text;not null"`
	Status       QuoteStatus      `gorm:"type:varchar(20);not null;default:'pending';index"`
	QuotedAmount *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Notes        string           `gorm:"type:text"`

	Items  []QuoteItem  `gorm:"foreignKey:QuoteID;references:ID"`
	Assets []QuoteAsset `gorm:"foreignKey:QuoteID;references:ID"`
}

// TableName returns the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}

// QuoteItem is one requested line on a quote. ProductID is a typed
// optional reference into the catalog; Description carries the
// free-text fallback when no catalog entry applies.
type QuoteItem struct {
	shared.BaseEntity
	QuoteID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `gorm:"type:uuid;index"`
	Description string     `gorm:"type:text"`
	Quantity    int        `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (QuoteItem) TableName() string {
	return "quote_items"
}

// NewQuote creates a new quote in Pending for the given client
func NewQuote(clientID uuid.UUID, description string, items []QuoteItem) (*Quote, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("client ID is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewValidationError("quote description is required")
	}
	for i := range items {
		if items[i].ProductID == nil && strings.TrimSpace(items[i].Description) == "" {
			return nil, shared.NewValidationError("quote item needs a product reference or a description")
		}
		if items[i].Quantity < 1 {
			return nil, shared.NewValidationError("quote item quantity must be at least 1")
		}
	}

	q := &Quote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		Description:       description,
		Status:            QuoteStatusPending,
		Items:             make([]QuoteItem, 0, len(items)),
	}
	for i := range items {
		item := items[i]
		item.BaseEntity = shared.NewBaseEntity()
		item.QuoteID = q.ID
		q.Items = append(q.Items, item)
	}

	q.AddDomainEvent(NewQuoteSubmittedEvent(q))

	return q, nil
}

// SetStatus performs a staff-driven bookkeeping transition. Decision
// states are rejected here; they require the token or conversion path.
func (q *Quote) SetStatus(newStatus QuoteStatus) error {
	if !newStatus.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("unknown quote status %q", newStatus))
	}
	if newStatus == q.Status {
		return nil
	}
	for _, allowed := range bookkeepingTransitions[q.Status] {
		if allowed == newStatus {
			q.Status = newStatus
			q.UpdatedAt = time.Now()
			q.IncrementVersion()
			return nil
		}
	}
	return shared.NewInvalidStateError(
		fmt.Sprintf("cannot move quote from %s to %s", q.Status, newStatus))
}

// Reply prices the quote. Valid from Pending, Reviewing, or Quoted
// (re-pricing); forces the status to Quoted and appends the staff
// message to the notes trail.
func (q *Quote) Reply(amount decimal.Decimal, message string) error {
	switch q.Status {
	case QuoteStatusPending, QuoteStatusReviewing, QuoteStatusQuoted:
	default:
		return shared.NewInvalidStateError(
			fmt.Sprintf("cannot reply to quote in state %s", q.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("quoted amount must be positive")
	}

	rounded := amount.Round(2)
	q.QuotedAmount = &rounded
	q.appendNote(message)
	q.Status = QuoteStatusQuoted
	q.UpdatedAt = time.Now()
	q.IncrementVersion()

	q.AddDomainEvent(NewQuoteRepliedEvent(q, rounded))

	return nil
}

// Approve records the client's acceptance. Valid only from Quoted.
func (q *Quote) Approve() error {
	if q.Status != QuoteStatusQuoted {
		return shared.NewInvalidStateError(
			fmt.Sprintf("cannot approve quote in state %s", q.Status))
	}
	q.Status = QuoteStatusApproved
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	q.AddDomainEvent(NewQuoteAcceptedEvent(q))
	return nil
}

// Reject records the client's refusal. Valid only from Quoted.
func (q *Quote) Reject() error {
	if q.Status != QuoteStatusQuoted {
		return shared.NewInvalidStateError(
			fmt.Sprintf("cannot reject quote in state %s", q.Status))
	}
	q.Status = QuoteStatusRejected
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	q.AddDomainEvent(NewQuoteRejectedEvent(q))
	return nil
}

// MarkConverted records the conversion into a project. Valid only from
// Approved.
func (q *Quote) MarkConverted(projectID uuid.UUID) error {
	if q.Status != QuoteStatusApproved {
		return shared.NewInvalidStateError(
			fmt.Sprintf("cannot convert quote in state %s", q.Status))
	}
	q.Status = QuoteStatusConverted
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	q.AddDomainEvent(NewQuoteConvertedEvent(q, projectID))
	return nil
}

func (q *Quote) appendNote(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	entry := fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339), message)
	if q.Notes == "" {
		q.Notes = entry
		return
	}
	q.Notes = q.Notes + "\n" + entry
}
