package quote

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/printshop/backend/internal/application/partner"
	"github.com/printshop/backend/internal/domain/partner"
	"github.com/printshop/backend/internal/domain/project"
	"github.com/printshop/backend/internal/domain/quote"
	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const uploadURLTTL = 15 * time.Minute

// LifecycleService drives a quote from public submission through staff
// pricing and client accept/reject to conversion into a project.
type LifecycleService struct {
	quoteRepo      quote.QuoteRepository
	tokenRepo      quote.TokenRepository
	projectRepo    project.ProjectRepository
	clients        *partnerapp.ClientService
	storage        AssetStorage
	tx             shared.TxManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	tokenTTL       time.Duration
}

// LifecycleServiceConfig holds the dependencies of LifecycleService
type LifecycleServiceConfig struct {
	QuoteRepo      quote.QuoteRepository
	TokenRepo      quote.TokenRepository
	ProjectRepo    project.ProjectRepository
	Clients        *partnerapp.ClientService
	Storage        AssetStorage
	Tx             shared.TxManager
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
	TokenTTL       time.Duration
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(cfg LifecycleServiceConfig) *LifecycleService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = quote.DefaultTokenTTL
	}
	return &LifecycleService{
		quoteRepo:      cfg.QuoteRepo,
		tokenRepo:      cfg.TokenRepo,
		projectRepo:    cfg.ProjectRepo,
		clients:        cfg.Clients,
		storage:        cfg.Storage,
		tx:             cfg.Tx,
		eventPublisher: cfg.EventPublisher,
		logger:         logger,
		tokenTTL:       tokenTTL,
	}
}

// SubmitPublic handles a guest quote submission. The client is resolved
// by email, the quote is created in Pending, and up to five reference
// images get presigned upload slots. Asset rows are persisted before
// any upload is attempted; a failed or abandoned upload leaves the row
// flagged pending instead of vanishing.
func (s *LifecycleService) SubmitPublic(ctx context.Context, req SubmitQuoteRequest) (*SubmitQuoteResponse, error) {
	if len(req.Assets) > quote.MaxAssetsPerQuote {
		return nil, shared.NewValidationError(
			fmt.Sprintf("at most %d reference images are allowed", quote.MaxAssetsPerQuote))
	}

	client, err := s.clients.Resolve(ctx, req.Email, partnerapp.ClientDefaults{
		Name: req.Name,
		Type: partner.ClientType(req.ClientType),
	})
	if err != nil {
		return nil, err
	}

	items := make([]quote.QuoteItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, quote.QuoteItem{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
		})
	}

	q, err := quote.NewQuote(client.ID, req.Description, items)
	if err != nil {
		return nil, err
	}

	for _, a := range req.Assets {
		assetID := uuid.New()
		key := fmt.Sprintf("quotes/%s/%s%s", q.ID, assetID, path.Ext(a.FileName))
		asset, err := quote.NewQuoteAsset(q.ID, key, a.ContentType)
		if err != nil {
			return nil, err
		}
		asset.ID = assetID
		q.Assets = append(q.Assets, *asset)
	}

	if err := s.quoteRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, q)

	resp := &SubmitQuoteResponse{Quote: ToQuoteResponse(q)}
	for i := range q.Assets {
		asset := q.Assets[i]
		url, expiresAt, err := s.storage.GenerateUploadURL(ctx, asset.StorageKey, asset.ContentType, uploadURLTTL)
		if err != nil {
			s.logger.Warn("Failed to presign asset upload, asset stays pending",
				zap.String("quote_id", q.ID.String()),
				zap.String("storage_key", asset.StorageKey),
				zap.Error(err))
			continue
		}
		resp.AssetUploads = append(resp.AssetUploads, AssetUploadTarget{
			AssetID:   asset.ID,
			UploadURL: url,
			ExpiresAt: expiresAt,
		})
	}

	s.logger.Info("Quote submitted",
		zap.String("quote_id", q.ID.String()),
		zap.String("client_id", client.ID.String()),
		zap.Int("items", len(q.Items)),
		zap.Int("assets", len(q.Assets)))

	return resp, nil
}

// ConfirmAsset completes the upload saga for one reference image after
// the client has PUT the object. The object's presence is verified
// before the asset leaves the pending state.
func (s *LifecycleService) ConfirmAsset(ctx context.Context, quoteID, assetID uuid.UUID) error {
	q, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return err
	}
	for i := range q.Assets {
		if q.Assets[i].ID != assetID {
			continue
		}
		exists, err := s.storage.ObjectExists(ctx, q.Assets[i].StorageKey)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NewValidationError("asset object has not been uploaded")
		}
		q.Assets[i].MarkUploaded()
		return s.quoteRepo.SaveAsset(ctx, &q.Assets[i])
	}
	return shared.NewNotFoundError("quote asset")
}

// Get retrieves a quote by ID
func (s *LifecycleService) Get(ctx context.Context, id uuid.UUID) (*QuoteResponse, error) {
	q, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToQuoteResponse(q)
	return &resp, nil
}

// List retrieves quotes matching the filter
func (s *LifecycleService) List(ctx context.Context, filter shared.Filter) ([]QuoteResponse, int64, error) {
	quotes, total, err := s.quoteRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		responses = append(responses, ToQuoteResponse(&quotes[i]))
	}
	return responses, total, nil
}

// SetStatus performs a staff bookkeeping transition. Decision states
// are rejected by the aggregate; they require the token or conversion
// path.
func (s *LifecycleService) SetStatus(ctx context.Context, quoteID uuid.UUID, newStatus quote.QuoteStatus) (*QuoteResponse, error) {
	q, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if err := q.SetStatus(newStatus); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.Save(ctx, q); err != nil {
		return nil, err
	}
	resp := ToQuoteResponse(q)
	return &resp, nil
}

// Reply prices a quote and issues a fresh accept/reject token pair,
// superseding any earlier pair. The plaintext secrets exist only in the
// returned response; the store keeps their hashes.
func (s *LifecycleService) Reply(ctx context.Context, quoteID uuid.UUID, req ReplyRequest) (*ReplyResponse, error) {
	q, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if err := q.Reply(req.Amount, req.Message); err != nil {
		return nil, err
	}

	pair, err := quote.NewTokenPair(q.ID, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.quoteRepo.Save(txCtx, q); err != nil {
			return err
		}
		return s.tokenRepo.ReplacePair(txCtx, q.ID, pair)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, q)

	s.logger.Info("Quote replied",
		zap.String("quote_id", q.ID.String()),
		zap.String("amount", req.Amount.String()))

	return &ReplyResponse{
		Quote:        ToQuoteResponse(q),
		AcceptToken:  pair.AcceptSecret,
		RejectToken:  pair.RejectSecret,
		TokenExpires: pair.Accept.ExpiresAt,
	}, nil
}

// AcceptViaToken redeems an accept token
func (s *LifecycleService) AcceptViaToken(ctx context.Context, secret string) (*TokenActionResponse, error) {
	return s.resolveViaToken(ctx, secret, quote.TokenPurposeAccept)
}

// RejectViaToken redeems a reject token
func (s *LifecycleService) RejectViaToken(ctx context.Context, secret string) (*TokenActionResponse, error) {
	return s.resolveViaToken(ctx, secret, quote.TokenPurposeReject)
}

// resolveViaToken applies a token's outcome to its quote. The token is
// consumed with a compare-and-swap on its unused state and the quote
// status changes in the same transaction, so a double-click or replayed
// request can never apply the effect twice. Replaying a consumed token
// reports success only when the quote already carries that token's
// outcome.
func (s *LifecycleService) resolveViaToken(ctx context.Context, secret string, purpose quote.TokenPurpose) (*TokenActionResponse, error) {
	token, err := s.tokenRepo.FindBySecretHash(ctx, quote.HashTokenSecret(secret))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrTokenInvalid
		}
		return nil, err
	}
	if token.Purpose != purpose || token.Superseded {
		return nil, shared.ErrTokenInvalid
	}
	if token.IsExpired(time.Now()) {
		return nil, shared.ErrTokenExpired
	}

	q, err := s.quoteRepo.FindByID(ctx, token.QuoteID)
	if err != nil {
		return nil, err
	}
	outcome := token.Outcome()

	if token.IsUsed() {
		if q.Status == outcome {
			return &TokenActionResponse{QuoteID: q.ID, Status: q.Status, AlreadyResolved: true}, nil
		}
		return nil, shared.ErrTokenInvalid
	}

	if q.Status != quote.QuoteStatusQuoted {
		return nil, shared.NewInvalidStateError(
			fmt.Sprintf("quote is in state %s, not awaiting a decision", q.Status))
	}

	var lostRace bool
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		consumed, err := s.tokenRepo.Consume(txCtx, token.ID)
		if err != nil {
			return err
		}
		if !consumed {
			lostRace = true
			return nil
		}
		if purpose == quote.TokenPurposeAccept {
			if err := q.Approve(); err != nil {
				return err
			}
		} else {
			if err := q.Reject(); err != nil {
				return err
			}
		}
		// The accept and reject tokens are distinct rows, so both
		// consumes can succeed concurrently. The quote transition
		// itself is guarded on Quoted; losing it rolls the consume
		// back and the request resolves against the settled quote.
		applied, err := s.quoteRepo.ApplyDecision(txCtx, q.ID, outcome)
		if err != nil {
			return err
		}
		if !applied {
			lostRace = true
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
	if err != nil && !lostRace {
		return nil, err
	}

	if lostRace {
		current, err := s.quoteRepo.FindByID(ctx, token.QuoteID)
		if err != nil {
			return nil, err
		}
		if current.Status == outcome {
			return &TokenActionResponse{QuoteID: current.ID, Status: current.Status, AlreadyResolved: true}, nil
		}
		return nil, shared.ErrTokenInvalid
	}

	s.publishEvents(ctx, q)
	s.logger.Info("Quote resolved via token",
		zap.String("quote_id", q.ID.String()),
		zap.String("outcome", string(q.Status)))

	return &TokenActionResponse{QuoteID: q.ID, Status: q.Status}, nil
}

// ConvertToProject turns an approved quote into a project, snapshotting
// its line items. Conversion is idempotent: the unique quote reference
// on projects guarantees a single project per quote, and repeated calls
// return that project's id.
func (s *LifecycleService) ConvertToProject(ctx context.Context, quoteID uuid.UUID) (*ConvertResponse, error) {
	q, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if q.Status == quote.QuoteStatusConverted {
		existing, err := s.projectRepo.FindByQuoteID(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		return &ConvertResponse{QuoteID: q.ID, ProjectID: existing.ID, AlreadyConverted: true}, nil
	}
	if q.Status != quote.QuoteStatusApproved {
		return nil, shared.NewInvalidStateError(
			fmt.Sprintf("cannot convert quote in state %s", q.Status))
	}

	snapshots := make([]project.ItemSnapshot, 0, len(q.Items))
	for i := range q.Items {
		snapshots = append(snapshots, project.ItemSnapshot{
			ProductID:   q.Items[i].ProductID,
			Description: q.Items[i].Description,
			Quantity:    q.Items[i].Quantity,
		})
	}
	name := q.Description
	if len(name) > 200 {
		name = name[:200]
	}
	quoteRef := q.ID
	p, err := project.NewProject(q.ClientID, name, &quoteRef, snapshots)
	if err != nil {
		return nil, err
	}

	var created *project.Project
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		created, err = s.projectRepo.CreateFromQuote(txCtx, p)
		if err != nil {
			return err
		}
		if created.ID != p.ID {
			// Another conversion won the unique quote reference and
			// already marked the quote.
			return nil
		}
		if err := q.MarkConverted(created.ID); err != nil {
			return err
		}
		return s.quoteRepo.Save(txCtx, q)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, q)

	alreadyConverted := created.ID != p.ID
	if !alreadyConverted {
		s.logger.Info("Quote converted to project",
			zap.String("quote_id", q.ID.String()),
			zap.String("project_id", created.ID.String()))
	}

	return &ConvertResponse{QuoteID: q.ID, ProjectID: created.ID, AlreadyConverted: alreadyConverted}, nil
}

func (s *LifecycleService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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
