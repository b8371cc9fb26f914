package quote

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// QuoteRepository defines persistence operations for quotes
type QuoteRepository interface {
	// FindByID retrieves a quote with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)

	// FindAll retrieves quotes matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Quote, int64, error)

	// Create inserts a new quote with its items and assets
	Create(ctx context.Context, q *Quote) error

	// Save persists changes to an existing quote under an optimistic
	// lock on the version the caller loaded. Returns
	// shared.ErrConcurrencyConflict when the row moved on.
	Save(ctx context.Context, q *Quote) error

	// ApplyDecision transitions the quote from Quoted to the given
	// decision with a conditional update guarded on the current
	// status. Returns false when the quote had already settled.
	ApplyDecision(ctx context.Context, quoteID uuid.UUID, decision QuoteStatus) (bool, error)

	// SaveAsset persists changes to one of the quote's assets
	SaveAsset(ctx context.Context, asset *QuoteAsset) error

	// CountByClient reports how many quotes reference the client
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
}

// TokenRepository defines persistence operations for accept/reject tokens
type TokenRepository interface {
	// FindBySecretHash retrieves a token by the hash of its secret
	FindBySecretHash(ctx context.Context, secretHash string) (*AcceptToken, error)

	// ReplacePair supersedes all live tokens for the quote and inserts
	// the new pair, atomically
	ReplacePair(ctx context.Context, quoteID uuid.UUID, pair *TokenPair) error

	// Consume marks the token used if and only if it is still unused.
	// Returns false when another request consumed it first.
	Consume(ctx context.Context, tokenID uuid.UUID) (bool, error)
}
