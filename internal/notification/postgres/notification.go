package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	notificationDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/notification"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
	"github.com/frahmantamala/office-hr/internal/notification"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.RepositoryAPI {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notificationDatamodel.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		if sqlstore.IsDuplicateKey(err) {
			return notification.ErrDuplicate
		}
		return sqlstore.Wrap("notifications.insert", err)
	}
	return nil
}

func (r *NotificationRepository) FindBySource(ctx context.Context, companyID, userID, sourceKey string) (*notificationDatamodel.Notification, error) {
	var n notificationDatamodel.Notification
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ? AND source_key = ?", companyID, userID, sourceKey).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, sqlstore.Wrap("notifications.find", err)
	}
	return &n, nil
}

func (r *NotificationRepository) List(ctx context.Context, companyID, userID string, f notification.ListFilter) ([]*notificationDatamodel.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).
		Where("company_id = ? AND user_id = ?", companyID, userID)
	if f.UnreadOnly {
		q = q.Where("read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, sqlstore.Wrap("notifications.count", err)
	}

	var out []*notificationDatamodel.Notification
	if err := sqlstore.Paginate(q, f.Offset, f.Limit).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, sqlstore.Wrap("notifications.list", err)
	}
	return out, total, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, companyID, userID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).
		Where("id = ? AND company_id = ? AND user_id = ?", id, companyID, userID).
		Update("read", true)
	if res.Error != nil {
		return false, sqlstore.Wrap("notifications.mark_read", res.Error)
	}
	// RowsAffected is 0 for an already-read row on some dialects; fall back
	// to an existence check before reporting not found.
	if res.RowsAffected > 0 {
		return true, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).
		Where("id = ? AND company_id = ? AND user_id = ?", id, companyID, userID).
		Count(&count).Error
	if err != nil {
		return false, sqlstore.Wrap("notifications.mark_read", err)
	}
	return count == 1, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, companyID, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).
		Where("company_id = ? AND user_id = ? AND read = ?", companyID, userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, sqlstore.Wrap("notifications.mark_all_read", res.Error)
	}
	return res.RowsAffected, nil
}
