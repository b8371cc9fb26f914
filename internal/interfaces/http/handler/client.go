package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partnerapp "github.com/printshop/backend/internal/application/partner"
	"github.com/printshop/backend/internal/domain/partner"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ClientHandler exposes staff-side client management
type ClientHandler struct {
	BaseHandler
	clients *partnerapp.ClientService
}

// NewClientHandler creates a ClientHandler
func NewClientHandler(clients *partnerapp.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		BaseHandler: NewBaseHandler(logger),
		clients:     clients,
	}
}

type clientResponse struct {
	ID        uuid.UUID          `json:"id"`
	Email     string             `json:"email"`
	Name      string             `json:"name"`
	Type      partner.ClientType `json:"type"`
	Active    bool               `json:"active"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toClientResponse(c *partner.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		Type:      c.Type,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type resolveClientRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"omitempty,max=200"`
	Type  string `json:"type" binding:"omitempty,oneof=individual company"`
}

// Resolve finds or creates the client for an email
// POST /api/v1/clients/resolve
func (h *ClientHandler) Resolve(c *gin.Context) {
	var req resolveClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	client, err := h.clients.Resolve(c.Request.Context(), req.Email, partnerapp.ClientDefaults{
		Name: req.Name,
		Type: partner.ClientType(req.Type),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toClientResponse(client))
}

// Get retrieves a client
// GET /api/v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	client, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toClientResponse(client))
}

// List retrieves clients
// GET /api/v1/clients
func (h *ClientHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	if active := c.Query("active"); active != "" {
		filter.Filters["active"] = active == "true"
	}

	clients, total, err := h.clients.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]clientResponse, 0, len(clients))
	for i := range clients {
		responses = append(responses, toClientResponse(&clients[i]))
	}
	h.SuccessWithMeta(c, responses, dto.NewMeta(filter.Page, filter.Limit(), total))
}

type updateClientRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Type string `json:"type" binding:"required,oneof=individual company"`
}

// Update changes a client's name and type
// PUT /api/v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	client, err := h.clients.Update(c.Request.Context(), id, req.Name, partner.ClientType(req.Type))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toClientResponse(client))
}

// Delete removes a client, or deactivates it when still referenced
// DELETE /api/v1/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	outcome, err := h.clients.Delete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"outcome": outcome})
}
