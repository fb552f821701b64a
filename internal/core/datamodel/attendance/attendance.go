package attendance

import "time"

// Record is one employee's attendance for one day; (company_id, date,
// employee_id) is unique.
type Record struct {
	ID           string    `gorm:"column:id;primaryKey" bson:"_id"`
	CompanyID    string    `gorm:"column:company_id;not null;uniqueIndex:idx_attendance_day,priority:1" bson:"company_id"`
	Date         string    `gorm:"column:date;not null;uniqueIndex:idx_attendance_day,priority:2" bson:"date"`
	EmployeeID   string    `gorm:"column:employee_id;not null;uniqueIndex:idx_attendance_day,priority:3" bson:"employee_id"`
	EmployeeName string    `gorm:"column:employee_name" bson:"employee_name,omitempty"`
	Department   string    `gorm:"column:department" bson:"department,omitempty"`
	Status       string    `gorm:"column:status;not null" bson:"status"`
	CheckIn      string    `gorm:"column:check_in" bson:"check_in,omitempty"`
	CheckOut     string    `gorm:"column:check_out" bson:"check_out,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" bson:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" bson:"updated_at"`
}

func (Record) TableName() string {
	return "attendance"
}
