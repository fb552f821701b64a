package approval

import "time"

// Approval is the stored form shared by the Mongo and SQL repositories.
type Approval struct {
	ID                string    `gorm:"column:id;primaryKey" bson:"_id"`
	CompanyID         string    `gorm:"column:company_id;not null;uniqueIndex:idx_approvals_entity,priority:1;index" bson:"company_id"`
	EntityType        string    `gorm:"column:entity_type;not null;uniqueIndex:idx_approvals_entity,priority:2" bson:"entity_type"`
	EntityID          string    `gorm:"column:entity_id;not null;uniqueIndex:idx_approvals_entity,priority:3" bson:"entity_id"`
	WorkflowKey       string    `gorm:"column:workflow_key;not null" bson:"workflow_key"`
	CurrentStep       int       `gorm:"column:current_step;not null;default:1" bson:"current_step"`
	Status            string    `gorm:"column:status;not null;index" bson:"status"`
	RequestedByUserID string    `gorm:"column:requested_by_user_id" bson:"requested_by_user_id"`
	DecidedByUserID   *string   `gorm:"column:decided_by_user_id" bson:"decided_by_user_id"`
	DecisionComment   string    `gorm:"column:decision_comment" bson:"decision_comment"`
	CreatedAt         time.Time `gorm:"column:created_at" bson:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at" bson:"updated_at"`
}

func (Approval) TableName() string {
	return "approvals"
}
