package attendance

import (
	"strings"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/core/common/validation"
)

const clockLayout = "15:04"

type UpsertAttendanceDTO struct {
	Date         string `json:"date"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Department   string `json:"department"`
	Status       string `json:"status"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
}

func (dto *UpsertAttendanceDTO) Normalize() {
	dto.Date = strings.TrimSpace(dto.Date)
	dto.EmployeeID = strings.TrimSpace(dto.EmployeeID)
	dto.EmployeeName = strings.TrimSpace(dto.EmployeeName)
	dto.Department = strings.TrimSpace(dto.Department)
	dto.Status = strings.ToLower(strings.TrimSpace(dto.Status))
	dto.CheckIn = strings.TrimSpace(dto.CheckIn)
	dto.CheckOut = strings.TrimSpace(dto.CheckOut)
}

func (dto UpsertAttendanceDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("date", dto.Date).Required().Date()
	v.Field("employee_id", dto.EmployeeID).Required().MaxLength(64)
	v.Field("employee_name", dto.EmployeeName).MaxLength(120)
	v.Field("department", dto.Department).MaxLength(80)
	v.Field("status", dto.Status).Required().OneOf(internal.ErrCodeInvalidStatus, Statuses...)
	v.Field("check_in", dto.CheckIn).Custom(clock("check_in"))
	v.Field("check_out", dto.CheckOut).Custom(clock("check_out")).Custom(func(interface{}) *internal.AppError {
		in, errIn := time.Parse(clockLayout, dto.CheckIn)
		out, errOut := time.Parse(clockLayout, dto.CheckOut)
		if errIn != nil || errOut != nil || !out.Before(in) {
			return nil
		}
		return internal.NewValidationFieldError("check_out", "check_out must not be before check_in", internal.ErrCodeValidationFailed)
	})
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func clock(field string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := time.Parse(clockLayout, s); err != nil {
			return internal.NewValidationFieldError(field, field+" must be a time in HH:MM format", internal.ErrCodeValidationFailed)
		}
		return nil
	}
}

type AttendanceResponse struct {
	Records []*Record `json:"records"`
	Total   int64     `json:"total"`
	Limit   int       `json:"limit"`
	Offset  int       `json:"offset"`
}
