package employee

import (
	"strings"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/core/common/validation"
)

type CreateEmployeeDTO struct {
	EmployeeCode string `json:"employee_code"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	DOB          string `json:"dob"`
	Department   string `json:"department"`
	Designation  string `json:"designation"`
	ManagerName  string `json:"manager_name"`
	JoinDate     string `json:"join_date"`
	Status       string `json:"status"`
	UserID       string `json:"user_id"`
}

func (dto *CreateEmployeeDTO) Normalize() {
	dto.EmployeeCode = strings.TrimSpace(dto.EmployeeCode)
	dto.FullName = strings.TrimSpace(dto.FullName)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.Phone = strings.TrimSpace(dto.Phone)
	dto.DOB = strings.TrimSpace(dto.DOB)
	dto.Department = strings.TrimSpace(dto.Department)
	dto.Designation = strings.TrimSpace(dto.Designation)
	dto.ManagerName = strings.TrimSpace(dto.ManagerName)
	dto.JoinDate = strings.TrimSpace(dto.JoinDate)
	dto.Status = strings.ToLower(strings.TrimSpace(dto.Status))
	if dto.Status == "" {
		dto.Status = StatusActive
	}
	dto.UserID = strings.TrimSpace(dto.UserID)
}

func (dto CreateEmployeeDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("employee_code", dto.EmployeeCode).Required().MinLength(2).MaxLength(50)
	v.Field("full_name", dto.FullName).Required().MinLength(2).MaxLength(120)
	v.Field("email", dto.Email).Email()
	v.Field("phone", dto.Phone).MaxLength(32)
	v.Field("dob", dto.DOB).Date()
	v.Field("department", dto.Department).MaxLength(80)
	v.Field("designation", dto.Designation).MaxLength(80)
	v.Field("manager_name", dto.ManagerName).MaxLength(120)
	v.Field("join_date", dto.JoinDate).Date()
	v.Field("status", dto.Status).OneOf(internal.ErrCodeInvalidStatus, StatusActive, StatusInactive)
	v.Field("user_id", dto.UserID).MaxLength(64)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateEmployeeDTO only changes the fields that are present. An empty
// user_id unlinks the login account.
type UpdateEmployeeDTO struct {
	FullName    *string `json:"full_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	DOB         *string `json:"dob"`
	Department  *string `json:"department"`
	Designation *string `json:"designation"`
	ManagerName *string `json:"manager_name"`
	JoinDate    *string `json:"join_date"`
	Status      *string `json:"status"`
	UserID      *string `json:"user_id"`
}

func (dto *UpdateEmployeeDTO) Normalize() {
	trim := func(p *string, fn func(string) string) {
		if p != nil {
			*p = fn(strings.TrimSpace(*p))
		}
	}
	same := func(s string) string { return s }
	trim(dto.FullName, same)
	trim(dto.Email, strings.ToLower)
	trim(dto.Phone, same)
	trim(dto.DOB, same)
	trim(dto.Department, same)
	trim(dto.Designation, same)
	trim(dto.ManagerName, same)
	trim(dto.JoinDate, same)
	trim(dto.Status, strings.ToLower)
	trim(dto.UserID, same)
}

func (dto UpdateEmployeeDTO) Validate() error {
	v := validation.NewValidator()
	if dto.FullName != nil {
		v.Field("full_name", *dto.FullName).Required().MinLength(2).MaxLength(120)
	}
	if dto.Email != nil {
		v.Field("email", *dto.Email).Email()
	}
	if dto.Phone != nil {
		v.Field("phone", *dto.Phone).MaxLength(32)
	}
	if dto.DOB != nil {
		v.Field("dob", *dto.DOB).Date()
	}
	if dto.Department != nil {
		v.Field("department", *dto.Department).MaxLength(80)
	}
	if dto.Designation != nil {
		v.Field("designation", *dto.Designation).MaxLength(80)
	}
	if dto.ManagerName != nil {
		v.Field("manager_name", *dto.ManagerName).MaxLength(120)
	}
	if dto.JoinDate != nil {
		v.Field("join_date", *dto.JoinDate).Date()
	}
	if dto.Status != nil {
		v.Field("status", *dto.Status).Required().OneOf(internal.ErrCodeInvalidStatus, StatusActive, StatusInactive)
	}
	if dto.UserID != nil {
		v.Field("user_id", *dto.UserID).MaxLength(64)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
	Total     int64       `json:"total"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}
