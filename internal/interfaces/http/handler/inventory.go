package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/printshop/backend/internal/application/inventory"
	"github.com/printshop/backend/internal/domain/inventory"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryHandler exposes staff-side stock management
type InventoryHandler struct {
	BaseHandler
	ledger *inventoryapp.LedgerService
	usage  *inventoryapp.UsageRecorderService
}

// NewInventoryHandler creates an InventoryHandler
func NewInventoryHandler(ledger *inventoryapp.LedgerService, usage *inventoryapp.UsageRecorderService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: NewBaseHandler(logger),
		ledger:      ledger,
		usage:       usage,
	}
}

type inventoryItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
	MinStock  decimal.Decimal `json:"min_stock"`
	Low       bool            `json:"low"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toInventoryItemResponse(i *inventory.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		ID:        i.ID,
		Name:      i.Name,
		Unit:      i.Unit,
		Quantity:  i.Quantity,
		MinStock:  i.MinStock,
		Low:       i.IsLow(),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

type movementResponse struct {
	Item     inventoryItemResponse `json:"item"`
	Previous decimal.Decimal       `json:"previous"`
	Current  decimal.Decimal       `json:"current"`
}

func toMovementResponse(m *inventory.StockMovement) movementResponse {
	return movementResponse{
		Item:     toInventoryItemResponse(m.Item),
		Previous: m.Previous,
		Current:  m.Current,
	}
}

type createItemRequest struct {
	Name     string          `json:"name" binding:"required,max=200"`
	Unit     string          `json:"unit" binding:"omitempty,max=20"`
	Quantity decimal.Decimal `json:"quantity"`
	MinStock decimal.Decimal `json:"min_stock"`
}

// Create adds an inventory item
// POST /api/v1/inventory
func (h *InventoryHandler) Create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	item, err := h.ledger.CreateItem(c.Request.Context(), req.Name, req.Unit, req.Quantity, req.MinStock)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toInventoryItemResponse(item))
}

// Get retrieves an inventory item
// GET /api/v1/inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	item, err := h.ledger.GetItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInventoryItemResponse(item))
}

// List retrieves inventory items
// GET /api/v1/inventory
func (h *InventoryHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	items, total, err := h.ledger.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	responses := make([]inventoryItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, toInventoryItemResponse(&items[i]))
	}
	h.SuccessWithMeta(c, responses, dto.NewMeta(filter.Page, filter.Limit(), total))
}

// ListLowStock retrieves items at or below their threshold
// GET /api/v1/inventory/low-stock
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	items, err := h.ledger.ListLowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	responses := make([]inventoryItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, toInventoryItemResponse(&items[i]))
	}
	h.Success(c, responses)
}

type updateItemRequest struct {
	Name     string          `json:"name" binding:"required,max=200"`
	Unit     string          `json:"unit" binding:"omitempty,max=20"`
	MinStock decimal.Decimal `json:"min_stock"`
}

// Update changes an item's descriptive fields and threshold
// PUT /api/v1/inventory/:id
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	item, err := h.ledger.UpdateItem(c.Request.Context(), id, req.Name, req.Unit, req.MinStock)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInventoryItemResponse(item))
}

// Delete removes an inventory item
// DELETE /api/v1/inventory/:id
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteItem(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

type adjustStockRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// Increment adds stock to an item
// POST /api/v1/inventory/:id/increment
func (h *InventoryHandler) Increment(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	movement, err := h.ledger.Increment(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMovementResponse(movement))
}

// Decrement removes stock from an item
// POST /api/v1/inventory/:id/decrement
func (h *InventoryHandler) Decrement(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	movement, err := h.ledger.Decrement(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMovementResponse(movement))
}

type usageHistoryQuery struct {
	ReferenceType string `form:"reference_type" binding:"required,oneof=order project"`
	ReferenceID   string `form:"reference_id" binding:"required,uuid"`
}

type usageRecordResponse struct {
	ID              uuid.UUID       `json:"id"`
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	QuantityUsed    decimal.Decimal `json:"quantity_used"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     uuid.UUID       `json:"reference_id"`
	Shortfall       bool            `json:"shortfall"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// UsageHistory retrieves the usage records of an order or project
// GET /api/v1/inventory/usage
func (h *InventoryHandler) UsageHistory(c *gin.Context) {
	var query usageHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "reference_type and reference_id are required")
		return
	}
	refID, err := uuid.Parse(query.ReferenceID)
	if err != nil {
		h.BadRequest(c, "reference_id must be a valid UUID")
		return
	}

	records, err := h.usage.History(c.Request.Context(), inventory.UsageReference{
		Type: inventory.ReferenceType(query.ReferenceType),
		ID:   refID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]usageRecordResponse, 0, len(records))
	for i := range records {
		r := records[i]
		responses = append(responses, usageRecordResponse{
			ID:              r.ID,
			InventoryItemID: r.InventoryItemID,
			QuantityUsed:    r.QuantityUsed,
			ReferenceType:   string(r.ReferenceType),
			ReferenceID:     r.ReferenceID,
			Shortfall:       r.Shortfall,
			Notes:           r.Notes,
			CreatedAt:       r.CreatedAt,
		})
	}
	h.Success(c, responses)
}
