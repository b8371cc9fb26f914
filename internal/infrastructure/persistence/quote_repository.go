package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/quote"
	"github.com/printshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormQuoteRepository implements quote.QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByID finds a quote with its items and assets
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*quote.Quote, error) {
	var q quote.Quote
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("Assets").
		First(&q, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &q, nil
}

// FindAll finds quotes matching the filter
func (r *GormQuoteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]quote.Quote, int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	query := db.Model(&quote.Quote{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if clientID, ok := filter.Filters["client_id"]; ok {
		query = query.Where("client_id = ?", clientID)
	}
	if filter.Search != "" {
		query = query.Where("description LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quotes []quote.Quote
	if err := applyFilter(query, filter).Preload("Items").Find(&quotes).Error; err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// Create inserts a quote together with its items and assets
func (r *GormQuoteRepository) Create(ctx context.Context, q *quote.Quote) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(q).Error
}

// Save persists the quote's own columns under an optimistic lock on
// the version the caller loaded, so a stale aggregate cannot write
// over a transition that committed in between. Items are immutable
// after submission and assets change through SaveAsset.
func (r *GormQuoteRepository) Save(ctx context.Context, q *quote.Quote) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&quote.Quote{}).
		Where("id = ? AND version = ?", q.ID, q.Version-1).
		Updates(map[string]interface{}{
			"status":        q.Status,
			"quoted_amount": q.QuotedAmount,
			"notes":         q.Notes,
			"version":       q.Version,
			"updated_at":    q.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ApplyDecision moves the quote from Quoted to the client's decision
// with a conditional update. A false return means the quote had
// already settled, so the caller lost the race to the other token.
func (r *GormQuoteRepository) ApplyDecision(ctx context.Context, quoteID uuid.UUID, decision quote.QuoteStatus) (bool, error) {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&quote.Quote{}).
		Where("id = ? AND status = ?", quoteID, quote.QuoteStatusQuoted).
		Updates(map[string]interface{}{
			"status":     decision,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SaveAsset persists changes to one of the quote's assets
func (r *GormQuoteRepository) SaveAsset(ctx context.Context, asset *quote.QuoteAsset) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).
		Model(asset).
		Select("status", "updated_at").
		Updates(asset).Error
}

// CountByClient reports how many quotes reference the client
func (r *GormQuoteRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&quote.Quote{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}

// GormTokenRepository implements quote.TokenRepository using GORM
type GormTokenRepository struct {
	db *gorm.DB
}

// NewGormTokenRepository creates a new GormTokenRepository
func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

// FindBySecretHash finds a token by the hash of its secret
func (r *GormTokenRepository) FindBySecretHash(ctx context.Context, secretHash string) (*quote.AcceptToken, error) {
	var token quote.AcceptToken
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		First(&token, "secret_hash = ?", secretHash).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &token, nil
}

// ReplacePair supersedes every live token for the quote and inserts the
// fresh pair in one transaction, so exactly one live pair exists per
// quote while it awaits a decision
func (r *GormTokenRepository) ReplacePair(ctx context.Context, quoteID uuid.UUID, pair *quote.TokenPair) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&quote.AcceptToken{}).
			Where("quote_id = ? AND superseded = ? AND used_at IS NULL", quoteID, false).
			Updates(map[string]interface{}{
				"superseded": true,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		if err := tx.Create(pair.Accept).Error; err != nil {
			return err
		}
		return tx.Create(pair.Reject).Error
	})
}

// Consume marks the token used with a compare-and-swap on its unused
// state. Exactly one caller ever observes true.
func (r *GormTokenRepository) Consume(ctx context.Context, tokenID uuid.UUID) (bool, error) {
	result := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&quote.AcceptToken{}).
		Where("id = ? AND used_at IS NULL", tokenID).
		Updates(map[string]interface{}{
			"used_at":    time.Now(),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
