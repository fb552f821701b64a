package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	userDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/user"
	"github.com/frahmantamala/office-hr/internal/core/id"
	"github.com/frahmantamala/office-hr/internal/core/security"
	"github.com/frahmantamala/office-hr/internal/permission"
)

type ListFilter struct {
	Status  string
	RoleKey string
	Offset  int
	Limit   int
}

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	FullName         *string
	Email            *string
	Phone            *string
	RoleKey          *string
	Status           *string
	SignupApprovalID *string
	Secret           *security.HashedSecret
}

func (c Changes) empty() bool {
	return c.FullName == nil && c.Email == nil && c.Phone == nil &&
		c.RoleKey == nil && c.Status == nil && c.SignupApprovalID == nil && c.Secret == nil
}

type RepositoryAPI interface {
	// Create returns ErrEmailExists on a duplicate (company_id, email).
	Create(ctx context.Context, u *userDatamodel.User) error
	GetByID(ctx context.Context, companyID, id string) (*userDatamodel.User, error)
	FindByEmail(ctx context.Context, companyID, email string) (*userDatamodel.User, error)
	List(ctx context.Context, companyID string, filter ListFilter) ([]*userDatamodel.User, int64, error)
	// Update reports false when no user matched (id, company_id).
	Update(ctx context.Context, companyID, id string, changes Changes, at time.Time) (bool, error)
	Delete(ctx context.Context, companyID, id string) error
	ListActiveIDsByRole(ctx context.Context, companyID, role string, offset, limit int) ([]string, error)
}

type ApprovalOpener interface {
	Open(ctx context.Context, in approval.NewApproval) (*approval.Approval, error)
}

type RoleSet interface {
	Has(role string) bool
}

type Service struct {
	repo      RepositoryAPI
	approvals ApprovalOpener
	roles     RoleSet
	hasher    *security.Hasher
	audit     approval.AuditRecorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, approvals ApprovalOpener, roles RoleSet, hasher *security.Hasher, audit approval.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		approvals: approvals,
		roles:     roles,
		hasher:    hasher,
		audit:     audit,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) checkRole(role string) error {
	if !s.roles.Has(role) {
		return internal.NewValidationFieldError("role_key", "role_key is not a configured role", internal.ErrCodeInvalidRole)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actor internal.Identity, dto CreateUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkRole(dto.RoleKey); err != nil {
		return nil, err
	}

	now := s.now()
	dm := &userDatamodel.User{
		ID:        id.New(id.PrefixUser),
		CompanyID: actor.CompanyID,
		Email:     dto.Email,
		FullName:  dto.FullName,
		Phone:     dto.Phone,
		RoleKey:   dto.RoleKey,
		Status:    dto.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if dto.Pin != "" {
		hashed, err := s.hasher.HashSecret(dto.Pin)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash credential", err)
		}
		applySecret(dm, hashed)
	}

	if err := s.repo.Create(ctx, dm); err != nil {
		s.logger.WarnContext(ctx, "failed to create user", "error", err, "company_id", actor.CompanyID)
		return nil, err
	}

	s.audit.Record(ctx, "CREATE", "user", dm.ID, map[string]any{"email": dm.Email})
	return FromDataModel(dm), nil
}

func (s *Service) Get(ctx context.Context, companyID, userID string) (*User, error) {
	dm, err := s.repo.GetByID(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(dm), nil
}

func (s *Service) List(ctx context.Context, companyID string, filter ListFilter) ([]*User, int64, error) {
	rows, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*User, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

func (s *Service) Update(ctx context.Context, actor internal.Identity, userID string, dto UpdateUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.RoleKey != nil {
		if err := s.checkRole(*dto.RoleKey); err != nil {
			return nil, err
		}
	}

	changes := Changes{
		FullName: dto.FullName,
		Email:    dto.Email,
		Phone:    dto.Phone,
		RoleKey:  dto.RoleKey,
	}
	if dto.Pin != nil {
		hashed, err := s.hasher.HashSecret(*dto.Pin)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash credential", err)
		}
		changes.Secret = &hashed
	}
	if changes.empty() {
		return s.Get(ctx, actor.CompanyID, userID)
	}

	found, err := s.repo.Update(ctx, actor.CompanyID, userID, changes, s.now())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}

	updated, err := s.Get(ctx, actor.CompanyID, userID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "UPDATE", "user", userID, map[string]any{"email": updated.Email})
	return updated, nil
}

// SetStatus toggles an account between active and inactive.
func (s *Service) SetStatus(ctx context.Context, actor internal.Identity, userID, status string) (*User, error) {
	if status != StatusActive && status != StatusInactive {
		return nil, internal.NewValidationFieldError("status", "status must be active or inactive", internal.ErrCodeInvalidStatus)
	}

	found, err := s.repo.Update(ctx, actor.CompanyID, userID, Changes{Status: &status}, s.now())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}

	s.audit.Record(ctx, "UPDATE", "user_status", userID, map[string]any{"status": status})
	return s.Get(ctx, actor.CompanyID, userID)
}

// Signup registers a user awaiting SUPERUSER approval. The account has no
// credential and the least privileged role until the approval is decided.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (*SignupResponse, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	dm := &userDatamodel.User{
		ID:            id.New(id.PrefixUser),
		CompanyID:     dto.CompanyID,
		Email:         dto.Email,
		FullName:      dto.FullName,
		Phone:         dto.Phone,
		RoleKey:       permission.RoleEmployee,
		RoleRequested: dto.RoleRequested,
		Status:        StatusPendingApproval,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, dm); err != nil {
		return nil, err
	}

	apv, err := s.approvals.Open(ctx, approval.NewApproval{
		CompanyID:   dto.CompanyID,
		EntityType:  approval.EntityUserSignup,
		EntityID:    dm.ID,
		WorkflowKey: approval.WorkflowUserSignup,
		CurrentStep: 1,
		RequestedBy: dm.ID,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to open signup approval, removing user", "error", err, "user_id", dm.ID)
		if delErr := s.repo.Delete(ctx, dto.CompanyID, dm.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned signup", "error", delErr, "user_id", dm.ID)
		}
		return nil, err
	}

	s.audit.Record(ctx, "SIGNUP", "user", dm.ID, map[string]any{"company_id": dm.CompanyID, "role_requested": dm.RoleRequested})
	s.logger.InfoContext(ctx, "signup requested", "user_id", dm.ID, "company_id", dm.CompanyID, "approval_id", apv.ID)

	return &SignupResponse{User: FromDataModel(dm), ApprovalID: apv.ID}, nil
}

// ListActiveUserIDsByRole serves the notification fan-out.
func (s *Service) ListActiveUserIDsByRole(ctx context.Context, companyID, role string, offset, limit int) ([]string, error) {
	return s.repo.ListActiveIDsByRole(ctx, companyID, role, offset, limit)
}

func applySecret(dm *userDatamodel.User, hashed security.HashedSecret) {
	dm.SecretHash = hashed.Hash
	dm.SecretSalt = hashed.Salt
	dm.SecretIterations = hashed.Iterations
}

// StoredSecret returns the credential parameters kept on a user record.
func StoredSecret(dm *userDatamodel.User) security.HashedSecret {
	return security.HashedSecret{Hash: dm.SecretHash, Salt: dm.SecretSalt, Iterations: dm.SecretIterations}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
