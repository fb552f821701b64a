package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	leaveDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/leave"
	"github.com/frahmantamala/office-hr/internal/core/events"
	"github.com/frahmantamala/office-hr/internal/core/id"
)

type ListFilter struct {
	Status string
	Offset int
	Limit  int
}

type RepositoryAPI interface {
	Create(ctx context.Context, l *leaveDatamodel.LeaveRequest) error
	GetByID(ctx context.Context, companyID, id string) (*leaveDatamodel.LeaveRequest, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*leaveDatamodel.LeaveRequest, int64, error)
	// SetDecision reports false when no leave matched (id, company_id).
	SetDecision(ctx context.Context, companyID, id, status, comment string, at time.Time) (bool, error)
	Delete(ctx context.Context, companyID, id string) error
}

// ApprovalGateway is the part of the approval workflow leaves depend on.
type ApprovalGateway interface {
	Open(ctx context.Context, in approval.NewApproval) (*approval.Approval, error)
	DecideEntity(ctx context.Context, actor internal.Identity, entityType, entityID string, outcome approval.Status, comment string) (*approval.Approval, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	approvals ApprovalGateway
	publisher Publisher
	audit     approval.AuditRecorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, approvals ApprovalGateway, publisher Publisher, audit approval.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		approvals: approvals,
		publisher: publisher,
		audit:     audit,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a pending leave request and opens its approval. If the
// approval cannot be opened the leave is removed again.
func (s *Service) Create(ctx context.Context, identity internal.Identity, dto CreateLeaveDTO) (*Leave, error) {
	dto.Normalize()
	if dto.EmployeeID == "" {
		dto.EmployeeID = identity.UserID
	}
	if err := dto.Validate(); err != nil {
		s.logger.WarnContext(ctx, "leave validation failed", "error", err, "user_id", identity.UserID)
		return nil, err
	}

	now := s.now()
	l := &Leave{
		ID:                id.New(id.PrefixLeave),
		CompanyID:         identity.CompanyID,
		EmployeeID:        dto.EmployeeID,
		EmployeeName:      dto.EmployeeName,
		LeaveType:         dto.LeaveType,
		StartDate:         dto.StartDate,
		EndDate:           dto.EndDate,
		Reason:            dto.Reason,
		Status:            StatusPending,
		RequestedByUserID: identity.UserID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, ToDataModel(l)); err != nil {
		s.logger.ErrorContext(ctx, "failed to create leave", "error", err, "user_id", identity.UserID)
		return nil, err
	}

	apv, err := s.approvals.Open(ctx, approval.NewApproval{
		CompanyID:   identity.CompanyID,
		EntityType:  approval.EntityLeave,
		EntityID:    l.ID,
		WorkflowKey: approval.WorkflowLeaveDefault,
		CurrentStep: 1,
		RequestedBy: identity.UserID,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to open leave approval, removing leave", "error", err, "leave_id", l.ID)
		if delErr := s.repo.Delete(ctx, identity.CompanyID, l.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned leave", "error", delErr, "leave_id", l.ID)
		}
		return nil, err
	}
	l.ApprovalID = apv.ID

	label := l.EmployeeName
	if label == "" {
		label = l.EmployeeID
	}
	if err := s.publisher.Publish(ctx, events.NewLeaveRequestedEvent(l.CompanyID, l.ID, label)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish leave requested event", "error", err, "leave_id", l.ID)
	}

	s.audit.Record(ctx, "CREATE", approval.EntityLeave, l.ID, map[string]any{"status": l.Status})
	s.logger.InfoContext(ctx, "leave requested",
		"leave_id", l.ID,
		"approval_id", apv.ID,
		"company_id", l.CompanyID,
		"leave_type", l.LeaveType)

	return l, nil
}

func (s *Service) Get(ctx context.Context, companyID, leaveID string) (*Leave, error) {
	dm, err := s.repo.GetByID(ctx, companyID, leaveID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(dm), nil
}

func (s *Service) List(ctx context.Context, companyID string, filter ListFilter) ([]*Leave, int64, error) {
	rows, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list leaves", "error", err, "company_id", companyID)
		return nil, 0, err
	}
	out := make([]*Leave, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

func (s *Service) Approve(ctx context.Context, actor internal.Identity, leaveID, comment string) (*Leave, error) {
	return s.decide(ctx, actor, leaveID, approval.StatusApproved, comment)
}

func (s *Service) Reject(ctx context.Context, actor internal.Identity, leaveID, comment string) (*Leave, error) {
	return s.decide(ctx, actor, leaveID, approval.StatusRejected, comment)
}

// decide goes through the approval workflow so that the at-most-once
// transition and the LeaveHandler side effects apply to this path too.
func (s *Service) decide(ctx context.Context, actor internal.Identity, leaveID string, outcome approval.Status, comment string) (*Leave, error) {
	if _, err := s.Get(ctx, actor.CompanyID, leaveID); err != nil {
		return nil, err
	}

	if _, err := s.approvals.DecideEntity(ctx, actor, approval.EntityLeave, leaveID, outcome, comment); err != nil {
		return nil, err
	}

	return s.Get(ctx, actor.CompanyID, leaveID)
}
