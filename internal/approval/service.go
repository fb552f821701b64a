package approval

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	approvalDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/approval"
	"github.com/frahmantamala/office-hr/internal/core/id"
)

type ListFilter struct {
	Status     string
	EntityType string
	Offset     int
	Limit      int
}

type RepositoryAPI interface {
	// Create fails with ErrApprovalExists when (company_id, entity_type,
	// entity_id) is taken.
	Create(ctx context.Context, approval *approvalDatamodel.Approval) error
	GetByID(ctx context.Context, companyID, id string) (*approvalDatamodel.Approval, error)
	GetByEntity(ctx context.Context, companyID, entityType, entityID string) (*approvalDatamodel.Approval, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*approvalDatamodel.Approval, int64, error)
	// DecideIfPending is a single conditional write on (id, company_id,
	// status=pending). It reports whether this call performed the transition.
	DecideIfPending(ctx context.Context, companyID, id, status, decidedBy, comment string, at time.Time) (bool, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action, entityType, entityID string, metadata map[string]any)
}

type Workflow struct {
	repo     RepositoryAPI
	handlers *Registry
	policy   *AccessPolicy
	audit    AuditRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewWorkflow(repo RepositoryAPI, handlers *Registry, policy *AccessPolicy, audit AuditRecorder, logger *slog.Logger) *Workflow {
	return &Workflow{
		repo:     repo,
		handlers: handlers,
		policy:   policy,
		audit:    audit,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create opens an approval on behalf of an API caller. Managed entity types
// are refused; their domain services call Open after creating the subject.
func (w *Workflow) Create(ctx context.Context, in NewApproval) (*Approval, error) {
	if err := validateNewApproval(&in); err != nil {
		return nil, err
	}
	if w.handlers.Managed(in.EntityType) {
		w.logger.WarnContext(ctx, "refusing to open approval for managed entity type",
			"company_id", in.CompanyID,
			"entity_type", in.EntityType,
			"requested_by", in.RequestedBy)
		return nil, ErrManagedEntity
	}
	return w.open(ctx, in)
}

// Open opens an approval for any entity type, managed ones included.
func (w *Workflow) Open(ctx context.Context, in NewApproval) (*Approval, error) {
	if err := validateNewApproval(&in); err != nil {
		return nil, err
	}
	return w.open(ctx, in)
}

func (w *Workflow) open(ctx context.Context, in NewApproval) (*Approval, error) {

	now := w.now()
	record := &Approval{
		ID:                id.New(id.PrefixApproval),
		CompanyID:         in.CompanyID,
		EntityType:        in.EntityType,
		EntityID:          in.EntityID,
		WorkflowKey:       in.WorkflowKey,
		CurrentStep:       in.CurrentStep,
		Status:            StatusPending,
		RequestedByUserID: in.RequestedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := w.repo.Create(ctx, ToDataModel(record)); err != nil {
		if errors.Is(err, ErrApprovalExists) {
			w.logger.WarnContext(ctx, "approval already exists",
				"company_id", in.CompanyID,
				"entity_type", in.EntityType,
				"entity_id", in.EntityID)
		} else {
			w.logger.ErrorContext(ctx, "failed to create approval", "error", err, "entity_type", in.EntityType)
		}
		return nil, err
	}

	w.audit.Record(ctx, "CREATE", "approval", record.ID, map[string]any{"company_id": record.CompanyID, "entity_type": record.EntityType})
	w.logger.InfoContext(ctx, "approval created",
		"approval_id", record.ID,
		"company_id", record.CompanyID,
		"entity_type", record.EntityType,
		"entity_id", record.EntityID)

	return record, nil
}

func (w *Workflow) Get(ctx context.Context, companyID, approvalID string) (*Approval, error) {
	dm, err := w.repo.GetByID(ctx, companyID, approvalID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(dm), nil
}

func (w *Workflow) List(ctx context.Context, companyID string, filter ListFilter) ([]*Approval, int64, error) {
	rows, total, err := w.repo.List(ctx, companyID, filter)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to list approvals", "error", err, "company_id", companyID)
		return nil, 0, err
	}
	out := make([]*Approval, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

// Decide authorizes actor for the approval's entity type and performs the
// pending -> outcome transition followed by the entity side effects.
func (w *Workflow) Decide(ctx context.Context, actor internal.Identity, approvalID string, outcome Status, comment string) (*Approval, error) {
	if !outcome.IsDecision() {
		return nil, ErrInvalidOutcome
	}
	current, err := w.Get(ctx, actor.CompanyID, approvalID)
	if err != nil {
		return nil, err
	}
	return w.decide(ctx, actor, current, outcome, comment)
}

// DecideEntity resolves the approval that gates a subject entity and decides it.
func (w *Workflow) DecideEntity(ctx context.Context, actor internal.Identity, entityType, entityID string, outcome Status, comment string) (*Approval, error) {
	if !outcome.IsDecision() {
		return nil, ErrInvalidOutcome
	}
	dm, err := w.repo.GetByEntity(ctx, actor.CompanyID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	return w.decide(ctx, actor, FromDataModel(dm), outcome, comment)
}

func (w *Workflow) decide(ctx context.Context, actor internal.Identity, current *Approval, outcome Status, comment string) (*Approval, error) {
	if err := w.policy.Authorize(actor, current.EntityType); err != nil {
		w.logger.WarnContext(ctx, "approval decision denied",
			"approval_id", current.ID,
			"entity_type", current.EntityType,
			"actor_id", actor.UserID,
			"actor_role", actor.Role)
		return nil, err
	}

	if !current.IsPending() {
		w.logger.WarnContext(ctx, "cannot decide approval in current status",
			"approval_id", current.ID,
			"current_status", current.Status)
		return nil, ErrAlreadyDecided
	}

	now := w.now()
	won, err := w.repo.DecideIfPending(ctx, current.CompanyID, current.ID, string(outcome), actor.UserID, comment, now)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to record approval decision", "error", err, "approval_id", current.ID)
		return nil, err
	}
	if !won {
		w.logger.WarnContext(ctx, "approval decided concurrently", "approval_id", current.ID)
		return nil, ErrAlreadyDecided
	}

	decided := *current
	decidedBy := actor.UserID
	decided.Status = outcome
	decided.DecidedByUserID = &decidedBy
	decided.DecisionComment = comment
	decided.UpdatedAt = now

	if err := w.dispatch(ctx, &decided); err != nil {
		w.audit.Record(ctx, "SIDE_EFFECT_FAILED", "approval", decided.ID, map[string]any{
			"status": string(outcome),
			"error":  err.Error(),
		})
		return nil, ErrSideEffectFailed.WithCause(err)
	}

	w.audit.Record(ctx, strings.ToUpper(string(outcome)), "approval", decided.ID, map[string]any{
		"status":      string(outcome),
		"entity_type": decided.EntityType,
		"entity_id":   decided.EntityID,
	})
	w.logger.InfoContext(ctx, "approval decided",
		"approval_id", decided.ID,
		"entity_type", decided.EntityType,
		"status", outcome,
		"actor_id", actor.UserID)

	return &decided, nil
}

// Replay re-runs the side effects of an already decided approval with its
// stored outcome. It is the recovery path after a SIDE_EFFECT_FAILED error.
func (w *Workflow) Replay(ctx context.Context, actor internal.Identity, approvalID string) (*Approval, error) {
	current, err := w.Get(ctx, actor.CompanyID, approvalID)
	if err != nil {
		return nil, err
	}
	if err := w.policy.Authorize(actor, current.EntityType); err != nil {
		return nil, err
	}
	if current.IsPending() {
		return nil, ErrStillPending
	}

	if err := w.dispatch(ctx, current); err != nil {
		return nil, ErrSideEffectFailed.WithCause(err)
	}

	w.audit.Record(ctx, "REPLAY", "approval", current.ID, map[string]any{"status": string(current.Status)})
	w.logger.InfoContext(ctx, "approval side effects replayed", "approval_id", current.ID, "actor_id", actor.UserID)
	return current, nil
}

func (w *Workflow) dispatch(ctx context.Context, a *Approval) error {
	handler, err := w.handlers.HandlerFor(a.EntityType)
	if err != nil {
		w.logger.ErrorContext(ctx, "no entity handler", "error", err, "approval_id", a.ID)
		return err
	}

	decidedBy := ""
	if a.DecidedByUserID != nil {
		decidedBy = *a.DecidedByUserID
	}
	err = handler.ApplyDecision(ctx, Decision{
		ApprovalID: a.ID,
		CompanyID:  a.CompanyID,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Outcome:    a.Status,
		Comment:    a.DecisionComment,
		DecidedBy:  decidedBy,
	})
	if err != nil {
		w.logger.ErrorContext(ctx, "entity handler failed",
			"error", err,
			"approval_id", a.ID,
			"entity_type", a.EntityType,
			"entity_id", a.EntityID)
	}
	return err
}

func validateNewApproval(in *NewApproval) error {
	in.EntityType = strings.TrimSpace(in.EntityType)
	in.EntityID = strings.TrimSpace(in.EntityID)
	in.WorkflowKey = strings.TrimSpace(in.WorkflowKey)

	if in.CompanyID == "" {
		return internal.ErrMissingIdentity
	}
	if l := len(in.EntityType); l < 2 || l > 50 {
		return internal.NewValidationFieldError("entity_type", "entity_type must be 2-50 characters", internal.ErrCodeValidationFailed)
	}
	if in.EntityID == "" {
		return internal.NewValidationFieldError("entity_id", "entity_id is required", internal.ErrCodeValidationFailed)
	}
	if l := len(in.WorkflowKey); l < 2 || l > 50 {
		return internal.NewValidationFieldError("workflow_key", "workflow_key must be 2-50 characters", internal.ErrCodeValidationFailed)
	}
	if in.CurrentStep <= 0 {
		in.CurrentStep = 1
	}
	return nil
}
