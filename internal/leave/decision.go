package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	"github.com/frahmantamala/office-hr/internal/notification"
)

type Notifier interface {
	Create(ctx context.Context, in notification.NewNotification) (*notification.Notification, error)
}

// DecisionHandler applies approval decisions to leave requests.
type DecisionHandler struct {
	repo     RepositoryAPI
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewDecisionHandler(repo RepositoryAPI, notifier Notifier, logger *slog.Logger) *DecisionHandler {
	return &DecisionHandler{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ApplyDecision sets status and approver_comment on the leave and tells the
// requester. Re-running it rewrites the same values and the notification is
// keyed by approval id, so replays do not duplicate it.
func (h *DecisionHandler) ApplyDecision(ctx context.Context, d approval.Decision) error {
	status := string(d.Outcome)

	found, err := h.repo.SetDecision(ctx, d.CompanyID, d.EntityID, status, d.Comment, h.now())
	if err != nil {
		return err
	}
	if !found {
		return internal.NewInternalError("leave approval has no backing leave request",
			fmt.Errorf("leave %s not found in company %s", d.EntityID, d.CompanyID))
	}

	dm, err := h.repo.GetByID(ctx, d.CompanyID, d.EntityID)
	if err != nil {
		return err
	}

	if dm.RequestedByUserID == "" {
		return nil
	}

	notifType := notification.TypeSuccess
	if d.Outcome != approval.StatusApproved {
		notifType = notification.TypeWarn
	}
	_, err = h.notifier.Create(ctx, notification.NewNotification{
		CompanyID: d.CompanyID,
		UserID:    dm.RequestedByUserID,
		Title:     fmt.Sprintf("Leave %s", status),
		Message:   fmt.Sprintf("Your leave request was %s.", status),
		Type:      notifType,
		SourceKey: "approval:" + d.ApprovalID,
	})
	if err != nil {
		return fmt.Errorf("notify leave requester %s: %w", dm.RequestedByUserID, err)
	}

	h.logger.InfoContext(ctx, "leave decision applied", "leave_id", d.EntityID, "status", status)
	return nil
}
