package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/partner"
	"github.com/printshop/backend/internal/domain/project"
	"github.com/printshop/backend/internal/domain/quote"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormClientRepository implements partner.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var client partner.Client
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &client, nil
}

// FindByEmail finds a client by normalized email
func (r *GormClientRepository) FindByEmail(ctx context.Context, email string) (*partner.Client, error) {
	var client partner.Client
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		First(&client, "email = ?", partner.NormalizeEmail(email)).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &client, nil
}

// FindAll finds clients matching the filter
func (r *GormClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Client, int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	query := db.Model(&partner.Client{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("email LIKE ? OR name LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []partner.Client
	if err := applyFilter(query, filter).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// Create inserts a new client. The unique index on email turns a
// concurrent duplicate into shared.ErrAlreadyExists for the caller's
// retry-and-re-read path.
func (r *GormClientRepository) Create(ctx context.Context, client *partner.Client) error {
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Create(client).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists changes to an existing client
func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(client).Error
}

// Delete removes a client permanently
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).WithContext(ctx).Delete(&partner.Client{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IsReferenced reports whether any quote, order, or project still
// points at the client
func (r *GormClientRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var count int64
	if err := db.Model(&quote.Quote{}).Where("client_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := db.Model(&trade.Order{}).Where("client_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := db.Model(&project.Project{}).Where("client_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
