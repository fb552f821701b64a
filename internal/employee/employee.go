package employee

import (
	"time"

	"github.com/frahmantamala/office-hr/internal"
	employeeDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/employee"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	ErrEmployeeNotFound   = internal.NewNotFoundError("Employee not found", internal.ErrCodeEmployeeNotFound)
	ErrEmployeeCodeExists = internal.NewConflictError("employee_code already exists", internal.ErrCodeEmployeeCodeExists).
				WithDetails(map[string]string{"field": "employee_code"})
)

type Employee struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	EmployeeCode string    `json:"employee_code"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	DOB          string    `json:"dob,omitempty"`
	Department   string    `json:"department,omitempty"`
	Designation  string    `json:"designation,omitempty"`
	ManagerName  string    `json:"manager_name,omitempty"`
	JoinDate     string    `json:"join_date,omitempty"`
	Status       string    `json:"status"`
	UserID       string    `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:           e.ID,
		CompanyID:    e.CompanyID,
		EmployeeCode: e.EmployeeCode,
		FullName:     e.FullName,
		Email:        e.Email,
		Phone:        e.Phone,
		DOB:          e.DOB,
		Department:   e.Department,
		Designation:  e.Designation,
		ManagerName:  e.ManagerName,
		JoinDate:     e.JoinDate,
		Status:       e.Status,
		UserID:       e.UserID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:           e.ID,
		CompanyID:    e.CompanyID,
		EmployeeCode: e.EmployeeCode,
		FullName:     e.FullName,
		Email:        e.Email,
		Phone:        e.Phone,
		DOB:          e.DOB,
		Department:   e.Department,
		Designation:  e.Designation,
		ManagerName:  e.ManagerName,
		JoinDate:     e.JoinDate,
		Status:       e.Status,
		UserID:       e.UserID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
