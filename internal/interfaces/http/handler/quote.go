package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	quoteapp "github.com/printshop/backend/internal/application/quote"
	"github.com/printshop/backend/internal/domain/quote"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteHandler exposes the public quote intake and the staff-side
// quote lifecycle
type QuoteHandler struct {
	BaseHandler
	quotes *quoteapp.LifecycleService
}

// NewQuoteHandler creates a QuoteHandler
func NewQuoteHandler(quotes *quoteapp.LifecycleService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler: NewBaseHandler(logger),
		quotes:      quotes,
	}
}

type submitQuoteItem struct {
	ProductID   string `json:"product_id" binding:"omitempty,uuid"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

type submitAsset struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
}

type submitQuoteRequest struct {
	Email       string            `json:"email" binding:"required,email"`
	Name        string            `json:"name" binding:"omitempty,max=200"`
	ClientType  string            `json:"client_type" binding:"omitempty,oneof=individual company"`
	Description string            `json:"description" binding:"required,max=5000"`
	Items       []submitQuoteItem `json:"items" binding:"omitempty,dive"`
	Assets      []submitAsset     `json:"assets" binding:"omitempty,max=5,dive"`
}

// Submit accepts a public quote request
// POST /api/v1/public/quotes
func (h *QuoteHandler) Submit(c *gin.Context) {
	var req submitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	items := make([]quoteapp.SubmitQuoteItem, 0, len(req.Items))
	for _, item := range req.Items {
		var productID *uuid.UUID
		if item.ProductID != "" {
			id, err := uuid.Parse(item.ProductID)
			if err != nil {
				h.BadRequest(c, "product_id must be a valid UUID")
				return
			}
			productID = &id
		}
		items = append(items, quoteapp.SubmitQuoteItem{
			ProductID:   productID,
			Description: item.Description,
			Quantity:    item.Quantity,
		})
	}

	assets := make([]quoteapp.SubmitAsset, 0, len(req.Assets))
	for _, a := range req.Assets {
		assets = append(assets, quoteapp.SubmitAsset{
			FileName:    a.FileName,
			ContentType: a.ContentType,
		})
	}

	resp, err := h.quotes.SubmitPublic(c.Request.Context(), quoteapp.SubmitQuoteRequest{
		Email:       req.Email,
		Name:        req.Name,
		ClientType:  req.ClientType,
		Description: req.Description,
		Items:       items,
		Assets:      assets,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ConfirmAsset marks a reference image uploaded
// POST /api/v1/public/quotes/:id/assets/:asset_id/confirm
func (h *QuoteHandler) ConfirmAsset(c *gin.Context) {
	quoteID, ok := h.parseID(c)
	if !ok {
		return
	}
	assetID, err := uuid.Parse(c.Param("asset_id"))
	if err != nil {
		h.BadRequest(c, "asset_id must be a valid UUID")
		return
	}

	if err := h.quotes.ConfirmAsset(c.Request.Context(), quoteID, assetID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"status": "uploaded"})
}

// Get retrieves a quote
// GET /api/v1/quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.quotes.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List retrieves quotes
// GET /api/v1/quotes
func (h *QuoteHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if clientID := c.Query("client_id"); clientID != "" {
		id, err := uuid.Parse(clientID)
		if err != nil {
			h.BadRequest(c, "client_id must be a valid UUID")
			return
		}
		filter.Filters["client_id"] = id
	}

	quotes, total, err := h.quotes.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, quotes, dto.NewMeta(filter.Page, filter.Limit(), total))
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus moves a quote along its staff-driven transitions
// PUT /api/v1/quotes/:id/status
func (h *QuoteHandler) SetStatus(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "status is required")
		return
	}

	resp, err := h.quotes.SetStatus(c.Request.Context(), id, quote.QuoteStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

type replyRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Message string          `json:"message" binding:"omitempty,max=5000"`
}

// Reply prices a quote and issues a fresh accept/reject token pair.
// The token secrets appear in this response only.
// POST /api/v1/quotes/:id/reply
func (h *QuoteHandler) Reply(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.quotes.Reply(c.Request.Context(), id, quoteapp.ReplyRequest{
		Amount:  req.Amount,
		Message: req.Message,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Accept redeems an accept token
// POST /api/v1/public/quotes/accept/:token
func (h *QuoteHandler) Accept(c *gin.Context) {
	resp, err := h.quotes.AcceptViaToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject redeems a reject token
// POST /api/v1/public/quotes/reject/:token
func (h *QuoteHandler) Reject(c *gin.Context) {
	resp, err := h.quotes.RejectViaToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Convert turns an accepted quote into a project
// POST /api/v1/quotes/:id/convert
func (h *QuoteHandler) Convert(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.quotes.ConvertToProject(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
