package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/project"
	"github.com/printshop/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository implements project.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project with its items
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	var p project.Project
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		First(&p, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &p, nil
}

// FindByQuoteID finds the project created from a quote
func (r *GormProjectRepository) FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*project.Project, error) {
	var p project.Project
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Items").
		First(&p, "quote_id = ?", quoteID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &p, nil
}

// FindAll finds projects matching the filter
func (r *GormProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]project.Project, int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	query := db.Model(&project.Project{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if clientID, ok := filter.Filters["client_id"]; ok {
		query = query.Where("client_id = ?", clientID)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []project.Project
	if err := applyFilter(query, filter).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// CreateFromQuote inserts the project unless its quote already has one.
// The insert is DO NOTHING on the quote_id conflict; when no row lands,
// the winner is re-read and returned so both racers converge on the
// same project.
func (r *GormProjectRepository) CreateFromQuote(ctx context.Context, p *project.Project) (*project.Project, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quote_id"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(p)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		existing, err := r.FindByQuoteID(ctx, *p.QuoteID)
		if err != nil {
			return nil, err
		}
		return existing, nil
	}

	for i := range p.Items {
		p.Items[i].ProjectID = p.ID
	}
	if len(p.Items) > 0 {
		if err := db.Create(&p.Items).Error; err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Create inserts a standalone project with its items
func (r *GormProjectRepository) Create(ctx context.Context, p *project.Project) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(p).Error
}

// Save persists the project's own columns
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).
		Omit(clause.Associations).
		Save(p).Error
}

// CountByClient reports how many projects reference the client
func (r *GormProjectRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Model(&project.Project{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}
