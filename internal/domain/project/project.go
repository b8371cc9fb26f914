package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/shared"
)

// ProjectStatus represents the production state of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Project is a unit of production work. Projects created by quote
// conversion carry the quote id, which is unique: a quote converts to
// at most one project.
type Project struct {
	shared.BaseAggregateRoot
	QuoteID  *uuid.UUID    `gorm:"type:uuid;uniqueIndex:idx_projects_quote"`
	ClientID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Name     string        `gorm:"type:varchar(200);not null"`
	Status   ProjectStatus `gorm:"type:varchar(20);not null;default:'active'"`

	Items []ProjectItem `gorm:"foreignKey:ProjectID;references:ID"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// ProjectItem is one snapshotted line of work, copied from the source
// quote at conversion time
type ProjectItem struct {
	shared.BaseEntity
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `gorm:"type:uuid"`
	Description string     `gorm:"type:text"`
	Quantity    int        `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (ProjectItem) TableName() string {
	return "project_items"
}

// ItemSnapshot is the input for one project line at creation time
type ItemSnapshot struct {
	ProductID   *uuid.UUID
	Description string
	Quantity    int
}

// NewProject creates a new active project
func NewProject(clientID uuid.UUID, name string, quoteID *uuid.UUID, items []ItemSnapshot) (*Project, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("client ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("project name is required")
	}

	p := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		QuoteID:           quoteID,
		ClientID:          clientID,
		Name:              name,
		Status:            ProjectStatusActive,
		Items:             make([]ProjectItem, 0, len(items)),
	}
	for _, snap := range items {
		if snap.Quantity < 1 {
			snap.Quantity = 1
		}
		p.Items = append(p.Items, ProjectItem{
			BaseEntity:  shared.NewBaseEntity(),
			ProjectID:   p.ID,
			ProductID:   snap.ProductID,
			Description: snap.Description,
			Quantity:    snap.Quantity,
		})
	}
	return p, nil
}

// Complete marks the project finished
func (p *Project) Complete() error {
	if p.Status == ProjectStatusCompleted {
		return nil
	}
	p.Status = ProjectStatusCompleted
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}
