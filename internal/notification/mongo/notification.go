package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	notificationDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/notification"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
	"github.com/frahmantamala/office-hr/internal/notification"
)

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(client *mongodb.Client) notification.RepositoryAPI {
	return &NotificationRepository{col: client.Collection(mongodb.ColNotifications)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notificationDatamodel.Notification) error {
	if _, err := r.col.InsertOne(ctx, n); err != nil {
		if mongodb.IsDuplicateKey(err) {
			return notification.ErrDuplicate
		}
		return mongodb.Wrap("notifications.insert", err)
	}
	return nil
}

func (r *NotificationRepository) FindBySource(ctx context.Context, companyID, userID, sourceKey string) (*notificationDatamodel.Notification, error) {
	var n notificationDatamodel.Notification
	err := r.col.FindOne(ctx, bson.M{"company_id": companyID, "user_id": userID, "source_key": sourceKey}).Decode(&n)
	if err != nil {
		if mongodb.IsNoDocuments(err) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, mongodb.Wrap("notifications.find", err)
	}
	return &n, nil
}

func (r *NotificationRepository) List(ctx context.Context, companyID, userID string, f notification.ListFilter) ([]*notificationDatamodel.Notification, int64, error) {
	filter := bson.M{"company_id": companyID, "user_id": userID}
	if f.UnreadOnly {
		filter["read"] = false
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongodb.Wrap("notifications.count", err)
	}

	cur, err := r.col.Find(ctx, filter, mongodb.Page(f.Offset, f.Limit, "created_at"))
	if err != nil {
		return nil, 0, mongodb.Wrap("notifications.list", err)
	}
	var out []*notificationDatamodel.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mongodb.Wrap("notifications.decode", err)
	}
	return out, total, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, companyID, userID, id string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return false, mongodb.Wrap("notifications.mark_read", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, companyID, userID string) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"company_id": companyID, "user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, mongodb.Wrap("notifications.mark_all_read", err)
	}
	return res.ModifiedCount, nil
}
