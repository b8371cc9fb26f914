package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	// FindByID retrieves a product by ID, without materials
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDWithMaterials retrieves a product with its bill of materials
	FindByIDWithMaterials(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs retrieves multiple products by ID in one query
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll retrieves products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)

	// FindMaterials retrieves the bill of materials for a product
	FindMaterials(ctx context.Context, productID uuid.UUID) ([]ProductMaterial, error)

	// Create inserts a new product with its materials
	Create(ctx context.Context, product *Product) error

	// Save persists changes to an existing product
	Save(ctx context.Context, product *Product) error

	// Delete removes a product
	Delete(ctx context.Context, id uuid.UUID) error
}
