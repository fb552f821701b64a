package session

import "time"

type Session struct {
	ID         string    `gorm:"column:id;primaryKey" bson:"_id"`
	TokenHash  string    `gorm:"column:token_hash;not null;uniqueIndex" bson:"token_hash"`
	CompanyID  string    `gorm:"column:company_id;not null;index" bson:"company_id"`
	UserID     string    `gorm:"column:user_id;not null" bson:"user_id"`
	RoleKey    string    `gorm:"column:role_key;not null" bson:"role_key"`
	ExpiresAt  time.Time `gorm:"column:expires_at;not null" bson:"expires_at"`
	UserAgent  string    `gorm:"column:user_agent" bson:"user_agent"`
	IP         string    `gorm:"column:ip" bson:"ip"`
	CreatedAt  time.Time `gorm:"column:created_at" bson:"created_at"`
	LastSeenAt time.Time `gorm:"column:last_seen_at" bson:"last_seen_at"`
}

func (Session) TableName() string {
	return "sessions"
}
