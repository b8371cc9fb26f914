package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/catalog"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaterialInput declares one bill-of-materials row on product creation
type MaterialInput struct {
	InventoryItemID uuid.UUID
	QuantityNeeded  decimal.Decimal
}

// ProductService manages the storefront catalog
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Create adds a product with an optional bill of materials
func (s *ProductService) Create(ctx context.Context, name, description string, price decimal.Decimal, materials []MaterialInput) (*catalog.Product, error) {
	product, err := catalog.NewProduct(name, price)
	if err != nil {
		return nil, err
	}
	product.Description = description
	for _, m := range materials {
		if err := product.AddMaterial(m.InventoryItemID, m.QuantityNeeded); err != nil {
			return nil, err
		}
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Get retrieves a product with its bill of materials
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.productRepo.FindByIDWithMaterials(ctx, id)
}

// List retrieves products matching the filter
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	return s.productRepo.FindAll(ctx, filter)
}

// UpdatePrice changes a product's catalog price. Existing orders keep
// their snapshotted unit prices.
func (s *ProductService) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.UpdatePrice(price); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetActive toggles a product's availability
func (s *ProductService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		product.Activate()
	} else {
		product.Deactivate()
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}
