package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/office-hr/internal/approval"
	userDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/user"
	"github.com/frahmantamala/office-hr/internal/core/security"
	"github.com/frahmantamala/office-hr/internal/notification"
	"github.com/frahmantamala/office-hr/internal/permission"
)

type Notifier interface {
	Create(ctx context.Context, in notification.NewNotification) (*notification.Notification, error)
	Delivered(ctx context.Context, companyID, userID, sourceKey string) (bool, error)
}

// SignupHandler applies decisions on user_signup approvals.
type SignupHandler struct {
	repo            RepositoryAPI
	notifier        Notifier
	hasher          *security.Hasher
	credentialBytes int
	logger          *slog.Logger
	now             func() time.Time
}

func NewSignupHandler(repo RepositoryAPI, notifier Notifier, hasher *security.Hasher, credentialBytes int, logger *slog.Logger) *SignupHandler {
	return &SignupHandler{
		repo:            repo,
		notifier:        notifier,
		hasher:          hasher,
		credentialBytes: credentialBytes,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (h *SignupHandler) ApplyDecision(ctx context.Context, d approval.Decision) error {
	dm, err := h.repo.GetByID(ctx, d.CompanyID, d.EntityID)
	if err != nil {
		if isNotFound(err) {
			return ErrSignupUserMissing.WithCause(fmt.Errorf("user %s not found in company %s", d.EntityID, d.CompanyID))
		}
		return err
	}

	replay, err := signupTarget(dm, d)
	if err != nil {
		h.logger.ErrorContext(ctx, "signup decision targets a user that is not awaiting approval",
			"error", err,
			"approval_id", d.ApprovalID,
			"user_id", d.EntityID,
			"user_status", dm.Status)
		return err
	}

	sourceKey := "approval:" + d.ApprovalID
	if d.Outcome == approval.StatusApproved {
		return h.activate(ctx, d, dm.RoleRequested, replay, sourceKey)
	}
	return h.reject(ctx, d, sourceKey)
}

// signupTarget accepts a user still awaiting approval, or one this same
// approval already moved on (a replay). Any other account is left alone.
func signupTarget(dm *userDatamodel.User, d approval.Decision) (replay bool, err error) {
	if dm.Status == StatusPendingApproval {
		return false, nil
	}
	settled := StatusRejected
	if d.Outcome == approval.StatusApproved {
		settled = StatusActive
	}
	if dm.Status == settled && dm.SignupApprovalID == d.ApprovalID {
		return true, nil
	}
	return false, ErrSignupUserMissing.WithCause(
		fmt.Errorf("user %s is %s and not awaiting approval %s", d.EntityID, dm.Status, d.ApprovalID))
}

// activate issues a new one-time PIN. On replay the PIN is only issued
// again when the previous one never reached the user.
func (h *SignupHandler) activate(ctx context.Context, d approval.Decision, roleRequested string, replay bool, sourceKey string) error {
	if replay {
		delivered, err := h.notifier.Delivered(ctx, d.CompanyID, d.EntityID, sourceKey)
		if err != nil {
			return err
		}
		if delivered {
			return nil
		}
	}

	role := roleRequested
	if role == "" {
		role = permission.RoleEmployee
	}

	credential, err := security.GenerateTemporaryCredential(h.credentialBytes)
	if err != nil {
		return err
	}
	hashed, err := h.hasher.HashSecret(credential)
	if err != nil {
		return err
	}

	status := StatusActive
	found, err := h.repo.Update(ctx, d.CompanyID, d.EntityID, Changes{
		Status:           &status,
		RoleKey:          &role,
		SignupApprovalID: &d.ApprovalID,
		Secret:           &hashed,
	}, h.now())
	if err != nil {
		return err
	}
	if !found {
		return ErrSignupUserMissing.WithCause(fmt.Errorf("user %s vanished during activation", d.EntityID))
	}

	if _, err := h.notifier.Create(ctx, notification.NewNotification{
		CompanyID: d.CompanyID,
		UserID:    d.EntityID,
		Title:     "Signup approved",
		Message:   "Your account has been approved. Your temporary PIN is " + credential,
		Type:      notification.TypeSuccess,
		SourceKey: sourceKey,
	}); err != nil {
		return fmt.Errorf("deliver signup credential: %w", err)
	}

	h.logger.InfoContext(ctx, "signup approved", "user_id", d.EntityID, "company_id", d.CompanyID, "role", role)
	return nil
}

func (h *SignupHandler) reject(ctx context.Context, d approval.Decision, sourceKey string) error {
	status := StatusRejected
	found, err := h.repo.Update(ctx, d.CompanyID, d.EntityID, Changes{
		Status:           &status,
		SignupApprovalID: &d.ApprovalID,
	}, h.now())
	if err != nil {
		return err
	}
	if !found {
		return ErrSignupUserMissing.WithCause(fmt.Errorf("user %s vanished during rejection", d.EntityID))
	}

	message := "Your signup request was rejected."
	if d.Comment != "" {
		message += " Reason: " + d.Comment
	}
	if _, err := h.notifier.Create(ctx, notification.NewNotification{
		CompanyID: d.CompanyID,
		UserID:    d.EntityID,
		Title:     "Signup rejected",
		Message:   message,
		Type:      notification.TypeWarn,
		SourceKey: sourceKey,
	}); err != nil {
		return fmt.Errorf("deliver signup rejection: %w", err)
	}

	h.logger.InfoContext(ctx, "signup rejected", "user_id", d.EntityID, "company_id", d.CompanyID)
	return nil
}
