package project

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// ProjectRepository defines persistence operations for projects
type ProjectRepository interface {
	// FindByID retrieves a project with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindByQuoteID retrieves the project created from a quote, if any
	FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*Project, error)

	// FindAll retrieves projects matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Project, int64, error)

	// CreateFromQuote inserts the project unless one already exists for
	// its quote. On conflict, the previously created project is
	// returned; exactly one project per quote ever exists.
	CreateFromQuote(ctx context.Context, p *Project) (*Project, error)

	// Create inserts a standalone project (no source quote)
	Create(ctx context.Context, p *Project) error

	// Save persists changes to an existing project
	Save(ctx context.Context, p *Project) error

	// CountByClient reports how many projects reference the client
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
}
