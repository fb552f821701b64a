package employee

import "time"

// Employee is a personnel record. UserID links it to the login account; the
// employee code login resolves through that link.
type Employee struct {
	ID           string    `gorm:"column:id;primaryKey" bson:"_id"`
	CompanyID    string    `gorm:"column:company_id;not null;uniqueIndex:idx_employees_code,priority:1;index:idx_employees_name,priority:1" bson:"company_id"`
	EmployeeCode string    `gorm:"column:employee_code;not null;uniqueIndex:idx_employees_code,priority:2" bson:"employee_code"`
	FullName     string    `gorm:"column:full_name;not null;index:idx_employees_name,priority:2" bson:"full_name"`
	Email        string    `gorm:"column:email" bson:"email,omitempty"`
	Phone        string    `gorm:"column:phone" bson:"phone,omitempty"`
	DOB          string    `gorm:"column:dob" bson:"dob,omitempty"`
	Department   string    `gorm:"column:department" bson:"department,omitempty"`
	Designation  string    `gorm:"column:designation" bson:"designation,omitempty"`
	ManagerName  string    `gorm:"column:manager_name" bson:"manager_name,omitempty"`
	JoinDate     string    `gorm:"column:join_date" bson:"join_date,omitempty"`
	Status       string    `gorm:"column:status;not null" bson:"status"`
	UserID       string    `gorm:"column:user_id" bson:"user_id,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" bson:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" bson:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}
