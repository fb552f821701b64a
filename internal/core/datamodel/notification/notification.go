package notification

import "time"

// Notification.SourceKey deduplicates side effects that may be replayed; it
// is unique per recipient when set.
type Notification struct {
	ID        string    `gorm:"column:id;primaryKey" bson:"_id"`
	CompanyID string    `gorm:"column:company_id;not null;index:idx_notifications_inbox,priority:1;uniqueIndex:idx_notifications_source,priority:1" bson:"company_id"`
	UserID    string    `gorm:"column:user_id;not null;index:idx_notifications_inbox,priority:2;uniqueIndex:idx_notifications_source,priority:2" bson:"user_id"`
	Title     string    `gorm:"column:title;not null" bson:"title"`
	Message   string    `gorm:"column:message;not null" bson:"message"`
	Type      string    `gorm:"column:type;not null" bson:"type"`
	Read      bool      `gorm:"column:read;not null;default:false" bson:"read"`
	SourceKey *string   `gorm:"column:source_key;uniqueIndex:idx_notifications_source,priority:3" bson:"source_key,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" bson:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
