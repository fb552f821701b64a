package audit

import "time"

type Entry struct {
	ID          string         `gorm:"column:id;primaryKey" bson:"_id"`
	TS          time.Time      `gorm:"column:ts;not null;index" bson:"ts"`
	RequestID   string         `gorm:"column:request_id" bson:"request_id"`
	CompanyID   string         `gorm:"column:company_id;index" bson:"company_id"`
	ActorUserID string         `gorm:"column:actor_user_id" bson:"actor_user_id"`
	ActorRole   string         `gorm:"column:actor_role" bson:"actor_role"`
	Action      string         `gorm:"column:action;not null" bson:"action"`
	EntityType  string         `gorm:"column:entity_type;not null" bson:"entity_type"`
	EntityID    string         `gorm:"column:entity_id" bson:"entity_id"`
	Metadata    map[string]any `gorm:"column:metadata;serializer:json" bson:"metadata"`
}

func (Entry) TableName() string {
	return "audit_logs"
}
