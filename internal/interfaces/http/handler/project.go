package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	projectapp "github.com/printshop/backend/internal/application/project"
	"github.com/printshop/backend/internal/domain/project"
	"github.com/printshop/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ProjectHandler exposes staff-side project management
type ProjectHandler struct {
	BaseHandler
	projects *projectapp.ProjectService
}

// NewProjectHandler creates a ProjectHandler
func NewProjectHandler(projects *projectapp.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler: NewBaseHandler(logger),
		projects:    projects,
	}
}

type projectItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	Description string     `json:"description,omitempty"`
	Quantity    int        `json:"quantity"`
}

type projectResponse struct {
	ID        uuid.UUID             `json:"id"`
	QuoteID   *uuid.UUID            `json:"quote_id,omitempty"`
	ClientID  uuid.UUID             `json:"client_id"`
	Name      string                `json:"name"`
	Status    project.ProjectStatus `json:"status"`
	Items     []projectItemResponse `json:"items"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func toProjectResponse(p *project.Project) projectResponse {
	resp := projectResponse{
		ID:        p.ID,
		QuoteID:   p.QuoteID,
		ClientID:  p.ClientID,
		Name:      p.Name,
		Status:    p.Status,
		Items:     make([]projectItemResponse, 0, len(p.Items)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for i := range p.Items {
		item := p.Items[i]
		resp.Items = append(resp.Items, projectItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
		})
	}
	return resp
}

type createProjectItem struct {
	ProductID   string `json:"product_id" binding:"omitempty,uuid"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

type createProjectRequest struct {
	ClientID string              `json:"client_id" binding:"required,uuid"`
	Name     string              `json:"name" binding:"required,max=200"`
	Items    []createProjectItem `json:"items" binding:"omitempty,dive"`
}

// Create inserts a standalone project not backed by a quote
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		h.BadRequest(c, "client_id must be a valid UUID")
		return
	}

	items := make([]project.ItemSnapshot, 0, len(req.Items))
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
		items = append(items, project.ItemSnapshot{
			ProductID:   productID,
			Description: item.Description,
			Quantity:    item.Quantity,
		})
	}

	p, err := h.projects.Create(c.Request.Context(), clientID, req.Name, items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProjectResponse(p))
}

// Get retrieves a project
// GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProjectResponse(p))
}

// List retrieves projects
// GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
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

	projects, total, err := h.projects.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	responses := make([]projectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, toProjectResponse(&projects[i]))
	}
	h.SuccessWithMeta(c, responses, dto.NewMeta(filter.Page, filter.Limit(), total))
}

// Complete marks a project finished
// POST /api/v1/projects/:id/complete
func (h *ProjectHandler) Complete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	p, err := h.projects.Complete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProjectResponse(p))
}
