package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taxdocs/internal/domain"
	"taxdocs/internal/lifecycle"
	"taxdocs/internal/metrics"
	"taxdocs/internal/port"
	"taxdocs/internal/requirement"
	"taxdocs/internal/validator"
)

const publishTimeout = 5 * time.Second

// CreateDocumentInput is the DTO for registering a submitted document.
type CreateDocumentInput struct {
	Category     string
	MimeType     string
	Size         int64
	Fields       map[string]any
	ClarityScore *float64
}

// DocumentService defines the document requirements and lifecycle contract.
type DocumentService interface {
	Create(ctx context.Context, input *CreateDocumentInput) (*domain.DocumentRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.DocumentRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.DocumentRecord, int, error)
	Requirements(ctx context.Context, formType string, answers map[string]any) (*domain.RequirementSet, error)
	ConditionIssues(ctx context.Context, formType string) []string
	Validate(ctx context.Context, id uuid.UUID, categoryID string) (*domain.ValidationResult, error)
	Transition(ctx context.Context, id uuid.UUID, target domain.LifecycleState) (*domain.TransitionResult, error)
	Checklist(ctx context.Context, id uuid.UUID) (*domain.Checklist, error)
	Ready(ctx context.Context) error
}

type documentService struct {
	repo         port.DocumentRepository
	requirements *requirement.Resolver
	validator    *validator.DocumentValidator
	tracker      *lifecycle.Tracker
	runner       port.CheckRunner
	publisher    port.EventPublisher
	metrics      *metrics.Metrics
	log          *zap.Logger
	now          func() time.Time
}

// NewDocumentService creates a new DocumentService implementation.
// publisher and m may be nil.
func NewDocumentService(
	repo port.DocumentRepository,
	requirements *requirement.Resolver,
	v *validator.DocumentValidator,
	tracker *lifecycle.Tracker,
	runner port.CheckRunner,
	publisher port.EventPublisher,
	m *metrics.Metrics,
	log *zap.Logger,
) DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &documentService{
		repo:         repo,
		requirements: requirements,
		validator:    v,
		tracker:      tracker,
		runner:       runner,
		publisher:    publisher,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

func (s *documentService) Create(ctx context.Context, input *CreateDocumentInput) (*domain.DocumentRecord, error) {
	if input.Category == "" || input.Size < 0 {
		return nil, domain.ErrInvalidDocument
	}
	if _, err := s.validator.EffectiveRules(input.Category); err != nil {
		return nil, err
	}

	fields := input.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	rec := &domain.DocumentRecord{
		ID:           uuid.New(),
		Category:     input.Category,
		MimeType:     input.MimeType,
		Size:         input.Size,
		Fields:       fields,
		ClarityScore: input.ClarityScore,
		Status:       domain.StateUploaded,
		CheckHistory: map[string]domain.CheckEntry{},
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	s.publish(ctx, domain.Event{
		Type:       domain.EventDocumentCreated,
		DocumentID: rec.ID,
		Data:       map[string]any{"category": rec.Category},
	})
	return rec, nil
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*domain.DocumentRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *documentService) List(ctx context.Context, offset, limit int) ([]domain.DocumentRecord, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *documentService) Requirements(_ context.Context, formType string, answers map[string]any) (*domain.RequirementSet, error) {
	label := formType
	if !s.requirements.Known(formType) {
		label = metrics.UnknownLabel
	}
	set, err := s.requirements.Resolve(formType, answers)
	if err != nil {
		s.metrics.RecordRequirements(label, 0, 0, err)
		return nil, err
	}
	s.metrics.RecordRequirements(label, len(set.Required), len(set.Optional), nil)
	return set, nil
}

func (s *documentService) ConditionIssues(_ context.Context, formType string) []string {
	issues := s.requirements.ValidateConditions(formType)
	if issues == nil {
		return []string{}
	}
	return issues
}

// Validate re-reads the record and validates it against categoryID, or
// against the record's own category when categoryID is empty.
func (s *documentService) Validate(ctx context.Context, id uuid.UUID, categoryID string) (*domain.ValidationResult, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if categoryID == "" {
		categoryID = rec.Category
	}

	res := s.validator.Validate(ctx, rec, categoryID)
	label := categoryID
	if !s.validator.KnownCategory(categoryID) {
		label = metrics.UnknownLabel
	}
	s.metrics.RecordValidation(label, res.IsValid, res.QualityScore)
	if !res.IsValid {
		s.publish(ctx, domain.Event{
			Type:       domain.EventValidationFailed,
			DocumentID: rec.ID,
			Data: map[string]any{
				"category":      categoryID,
				"quality_score": res.QualityScore,
				"errors":        res.Errors,
			},
		})
	}
	return res, nil
}

// Transition re-reads the record and uses its stored status as the observed
// status. A *domain.ConflictError is returned as-is and not retried.
func (s *documentService) Transition(ctx context.Context, id uuid.UUID, target domain.LifecycleState) (*domain.TransitionResult, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := rec.Status

	res, err := s.tracker.Transition(ctx, rec, from, target, s.runner)
	s.metrics.RecordTransition(string(from), string(target), transitionOutcome(res, err))
	if err != nil {
		return res, err
	}
	if res.Success {
		s.publish(ctx, domain.Event{
			Type:       domain.EventDocumentTransitioned,
			DocumentID: rec.ID,
			Data:       map[string]any{"from": string(from), "to": string(target)},
		})
	}
	return res, nil
}

func (s *documentService) Checklist(ctx context.Context, id uuid.UUID) (*domain.Checklist, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return lifecycle.Checklist(rec), nil
}

func (s *documentService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// publish sends ev best-effort; failures are logged and never fail the request.
func (s *documentService) publish(ctx context.Context, ev domain.Event) {
	if s.publisher == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.now().UTC()
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pctx, ev); err != nil {
		s.log.Warn("publishing event failed",
			zap.String("type", ev.Type),
			zap.String("document_id", ev.DocumentID.String()),
			zap.Error(err),
		)
	}
}

func transitionOutcome(res *domain.TransitionResult, err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case err != nil:
		return "error"
	case res != nil && res.Success:
		return "success"
	default:
		return "checks_failed"
	}
}
