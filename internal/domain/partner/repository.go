package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// ClientRepository defines persistence operations for clients
type ClientRepository interface {
	// FindByID retrieves a client by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindByEmail retrieves a client by normalized email
	FindByEmail(ctx context.Context, email string) (*Client, error)

	// FindAll retrieves clients matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, int64, error)

	// Create inserts a new client. Returns shared.ErrAlreadyExists when
	// another client already holds the same normalized email.
	Create(ctx context.Context, client *Client) error

	// Save persists changes to an existing client
	Save(ctx context.Context, client *Client) error

	// Delete removes a client permanently
	Delete(ctx context.Context, id uuid.UUID) error

	// IsReferenced reports whether any quote, order, or project still
	// references the client
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}
