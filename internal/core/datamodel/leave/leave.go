package leave

import "time"

type LeaveRequest struct {
	ID                string    `gorm:"column:id;primaryKey" bson:"_id"`
	CompanyID         string    `gorm:"column:company_id;not null;index" bson:"company_id"`
	EmployeeID        string    `gorm:"column:employee_id;not null" bson:"employee_id"`
	EmployeeName      string    `gorm:"column:employee_name" bson:"employee_name"`
	LeaveType         string    `gorm:"column:leave_type;not null" bson:"leave_type"`
	StartDate         string    `gorm:"column:start_date;not null" bson:"start_date"`
	EndDate           string    `gorm:"column:end_date;not null" bson:"end_date"`
	Reason            string    `gorm:"column:reason" bson:"reason"`
	Status            string    `gorm:"column:status;not null;index" bson:"status"`
	ApproverComment   string    `gorm:"column:approver_comment" bson:"approver_comment"`
	RequestedByUserID string    `gorm:"column:requested_by_user_id" bson:"requested_by_user_id"`
	CreatedAt         time.Time `gorm:"column:created_at" bson:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at" bson:"updated_at"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
