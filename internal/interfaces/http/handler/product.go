package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/printshop/backend/internal/application/catalog"
	"github.com/printshop/backend/internal/domain/catalog"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductHandler exposes the storefront catalog
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a ProductHandler
func NewProductHandler(products *catalogapp.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		BaseHandler: NewBaseHandler(logger),
		products:    products,
	}
}

type productMaterialResponse struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	QuantityNeeded  decimal.Decimal `json:"quantity_needed"`
}

type productResponse struct {
	ID          uuid.UUID                 `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Price       decimal.Decimal           `json:"price"`
	Active      bool                      `json:"active"`
	Materials   []productMaterialResponse `json:"materials,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

func toProductResponse(p *catalog.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i := range p.Materials {
		m := p.Materials[i]
		resp.Materials = append(resp.Materials, productMaterialResponse{
			InventoryItemID: m.InventoryItemID,
			QuantityNeeded:  m.QuantityNeeded,
		})
	}
	return resp
}

type createProductMaterial struct {
	InventoryItemID string          `json:"inventory_item_id" binding:"required,uuid"`
	QuantityNeeded  decimal.Decimal `json:"quantity_needed" binding:"required"`
}

type createProductRequest struct {
	Name        string                  `json:"name" binding:"required,max=200"`
	Description string                  `json:"description" binding:"omitempty,max=2000"`
	Price       decimal.Decimal         `json:"price" binding:"required"`
	Materials   []createProductMaterial `json:"materials" binding:"omitempty,dive"`
}

// Create adds a product with an optional bill of materials
// POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	materials := make([]catalogapp.MaterialInput, 0, len(req.Materials))
	for _, m := range req.Materials {
		itemID, err := uuid.Parse(m.InventoryItemID)
		if err != nil {
			h.BadRequest(c, "inventory_item_id must be a valid UUID")
			return
		}
		materials = append(materials, catalogapp.MaterialInput{
			InventoryItemID: itemID,
			QuantityNeeded:  m.QuantityNeeded,
		})
	}

	product, err := h.products.Create(c.Request.Context(), req.Name, req.Description, req.Price, materials)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductResponse(product))
}

// Get retrieves a product with its bill of materials
// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

// List retrieves products
// GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	if active := c.Query("active"); active != "" {
		filter.Filters["active"] = active == "true"
	}

	products, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	responses := make([]productResponse, 0, len(products))
	for i := range products {
		responses = append(responses, toProductResponse(&products[i]))
	}
	h.SuccessWithMeta(c, responses, dto.NewMeta(filter.Page, filter.Limit(), total))
}

type updatePriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// UpdatePrice changes a product's catalog price
// PUT /api/v1/products/:id/price
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	product, err := h.products.UpdatePrice(c.Request.Context(), id, req.Price)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive toggles a product's availability
// PUT /api/v1/products/:id/active
func (h *ProductHandler) SetActive(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "active is required")
		return
	}
	product, err := h.products.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}
