package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/catalog"
	"github.com/printshop/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID, without materials
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := dbFromContext(ctx, r.db).WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &product, nil
}

// FindByIDWithMaterials finds a product with its bill of materials
func (r *GormProductRepository) FindByIDWithMaterials(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Preload("Materials").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &product, nil
}

// FindByIDs finds multiple products by ID in one query
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []catalog.Product
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll finds products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	query := db.Model(&catalog.Product{})
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	if err := applyFilter(query, filter).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindMaterials finds the bill of materials for a product
func (r *GormProductRepository) FindMaterials(ctx context.Context, productID uuid.UUID) ([]catalog.ProductMaterial, error) {
	var materials []catalog.ProductMaterial
	if err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// Create inserts a product with its materials
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	if err := dbFromContext(ctx, r.db).WithContext(ctx).Create(product).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists changes to a product's own columns
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).
		Omit(clause.Associations).
		Save(product).Error
}

// Delete removes a product and its materials
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&catalog.ProductMaterial{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}
