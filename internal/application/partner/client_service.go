package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/partner"
	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ClientDefaults carries the fields used when Resolve has to create a
// client that does not exist yet. An existing client is returned as-is
// and the defaults are ignored.
type ClientDefaults struct {
	Name string
	Type partner.ClientType
}

// ClientService resolves and manages clients. Resolve is the entry
// point of every public-facing intake flow.
type ClientService struct {
	clientRepo     partner.ClientRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{
		clientRepo:     clientRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Resolve finds the client for an email or creates one. Two concurrent
// calls with the same email cannot create two clients: the insert is
// guarded by the unique index on normalized email, and a duplicate
// conflict falls back to re-reading the row the winner created.
func (s *ClientService) Resolve(ctx context.Context, email string, defaults ClientDefaults) (*partner.Client, error) {
	normalized := partner.NormalizeEmail(email)

	client, err := s.clientRepo.FindByEmail(ctx, normalized)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	created, err := partner.NewClient(normalized, defaults.Name, defaults.Type)
	if err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, created); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost the race; the other writer's row is authoritative.
			return s.clientRepo.FindByEmail(ctx, normalized)
		}
		return nil, err
	}

	s.publishEvents(ctx, created)
	s.logger.Info("Client created",
		zap.String("client_id", created.ID.String()),
		zap.String("email", created.Email))

	return created, nil
}

// Get retrieves a client by ID
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	return s.clientRepo.FindByID(ctx, id)
}

// List retrieves clients matching the filter
func (s *ClientService) List(ctx context.Context, filter shared.Filter) ([]partner.Client, int64, error) {
	return s.clientRepo.FindAll(ctx, filter)
}

// Update changes a client's name and type
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, name string, clientType partner.ClientType) (*partner.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := client.Update(name, clientType); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteOutcome reports how Delete resolved
type DeleteOutcome string

const (
	DeleteOutcomeDeleted     DeleteOutcome = "deleted"
	DeleteOutcomeDeactivated DeleteOutcome = "deactivated"
)

// Delete removes a client if nothing references it, otherwise
// deactivates it. The outcome is reported explicitly so callers can
// tell the two apart.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) (DeleteOutcome, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	referenced, err := s.clientRepo.IsReferenced(ctx, id)
	if err != nil {
		return "", err
	}

	if referenced {
		client.Deactivate()
		client.AddDomainEvent(partner.NewClientDeactivatedEvent(client))
		if err := s.clientRepo.Save(ctx, client); err != nil {
			return "", err
		}
		s.publishEvents(ctx, client)
		return DeleteOutcomeDeactivated, nil
	}

	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return "", err
	}
	return DeleteOutcomeDeleted, nil
}

func (s *ClientService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.String("aggregate_id", aggregate.GetID().String()),
			zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
