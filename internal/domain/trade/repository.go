package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	// FindByID retrieves an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByExternalReference retrieves an order by its gateway reference
	FindByExternalReference(ctx context.Context, ref string) (*Order, error)

	// FindAll retrieves orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)

	// Create inserts a new order with its items
	Create(ctx context.Context, o *Order) error

	// Save persists changes to an existing order under an optimistic
	// lock on the version the caller loaded. Returns
	// shared.ErrConcurrencyConflict when the row moved on. Save never
	// writes the status column; transitions have their own operations.
	Save(ctx context.Context, o *Order) error

	// ConfirmPending transitions the order from Pending to Confirmed
	// with a conditional update guarded on the current status. Returns
	// false when the order was not in Pending, which callers treat as
	// a lost race or a duplicate delivery.
	ConfirmPending(ctx context.Context, orderID uuid.UUID) (bool, error)

	// CancelPending transitions the order from Pending to Cancelled
	// with a conditional update guarded on the current status. Returns
	// false when the order had already left Pending.
	CancelPending(ctx context.Context, orderID uuid.UUID) (bool, error)

	// FulfillConfirmed transitions the order from Confirmed to
	// Fulfilled with a conditional update guarded on the current
	// status. Returns false when the order was not Confirmed.
	FulfillConfirmed(ctx context.Context, orderID uuid.UUID) (bool, error)

	// MarkBackordered flags a confirmed order whose materials fell short
	MarkBackordered(ctx context.Context, orderID uuid.UUID) error

	// CountByClient reports how many orders reference the client
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
}
