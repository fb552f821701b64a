package notification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	notificationDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/notification"
	"github.com/frahmantamala/office-hr/internal/core/id"
)

type ListFilter struct {
	UnreadOnly bool
	Offset     int
	Limit      int
}

type RepositoryAPI interface {
	// Create returns ErrDuplicate when the recipient already holds a
	// notification with the same source key.
	Create(ctx context.Context, n *notificationDatamodel.Notification) error
	FindBySource(ctx context.Context, companyID, userID, sourceKey string) (*notificationDatamodel.Notification, error)
	List(ctx context.Context, companyID, userID string, filter ListFilter) ([]*notificationDatamodel.Notification, int64, error)
	MarkRead(ctx context.Context, companyID, userID, id string) (bool, error)
	MarkAllRead(ctx context.Context, companyID, userID string) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores one notification. A repeated SourceKey for the same
// recipient returns the notification delivered the first time.
func (s *Service) Create(ctx context.Context, in NewNotification) (*Notification, error) {
	if in.CompanyID == "" || in.UserID == "" {
		return nil, internal.NewValidationError("recipient is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
	}
	if in.Type == "" {
		in.Type = TypeInfo
	}

	dm := &notificationDatamodel.Notification{
		ID:        id.New(id.PrefixNotification),
		CompanyID: in.CompanyID,
		UserID:    in.UserID,
		Title:     in.Title,
		Message:   in.Message,
		Type:      in.Type,
		CreatedAt: s.now(),
	}
	if in.SourceKey != "" {
		key := in.SourceKey
		dm.SourceKey = &key
	}

	if err := s.repo.Create(ctx, dm); err != nil {
		if errors.Is(err, ErrDuplicate) {
			existing, findErr := s.repo.FindBySource(ctx, in.CompanyID, in.UserID, in.SourceKey)
			if findErr != nil {
				return nil, findErr
			}
			s.logger.DebugContext(ctx, "notification already delivered", "source_key", in.SourceKey, "user_id", in.UserID)
			return FromDataModel(existing), nil
		}
		s.logger.ErrorContext(ctx, "failed to create notification", "error", err, "user_id", in.UserID)
		return nil, err
	}

	s.logger.DebugContext(ctx, "notification created", "notification_id", dm.ID, "user_id", dm.UserID, "type", dm.Type)
	return FromDataModel(dm), nil
}

// Delivered reports whether the recipient already holds a notification for
// sourceKey.
func (s *Service) Delivered(ctx context.Context, companyID, userID, sourceKey string) (bool, error) {
	_, err := s.repo.FindBySource(ctx, companyID, userID, sourceKey)
	if errors.Is(err, ErrNotificationNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) List(ctx context.Context, identity internal.Identity, filter ListFilter) ([]*Notification, int64, error) {
	rows, total, err := s.repo.List(ctx, identity.CompanyID, identity.UserID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, total, nil
}

func (s *Service) MarkRead(ctx context.Context, identity internal.Identity, notificationID string) error {
	ok, err := s.repo.MarkRead(ctx, identity.CompanyID, identity.UserID, notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, identity internal.Identity) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, identity.CompanyID, identity.UserID)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "notifications marked read", "user_id", identity.UserID, "count", n)
	return n, nil
}
