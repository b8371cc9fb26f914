package project

import (
	"context"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/project"
	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProjectService exposes read and completion operations for projects.
// Creation happens through quote conversion or direct staff entry.
type ProjectService struct {
	projectRepo project.ProjectRepository
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo project.ProjectRepository, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// Get retrieves a project by ID
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	return s.projectRepo.FindByID(ctx, id)
}

// List retrieves projects matching the filter
func (s *ProjectService) List(ctx context.Context, filter shared.Filter) ([]project.Project, int64, error) {
	return s.projectRepo.FindAll(ctx, filter)
}

// Create inserts a standalone project not backed by a quote
func (s *ProjectService) Create(ctx context.Context, clientID uuid.UUID, name string, items []project.ItemSnapshot) (*project.Project, error) {
	p, err := project.NewProject(clientID, name, nil, items)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Complete marks a project finished
func (s *ProjectService) Complete(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Complete(); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
