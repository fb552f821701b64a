package leave

import (
	"strings"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/core/common/validation"
)

type CreateLeaveDTO struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	LeaveType    string `json:"leave_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Reason       string `json:"reason"`
}

func (dto *CreateLeaveDTO) Normalize() {
	dto.EmployeeID = strings.TrimSpace(dto.EmployeeID)
	dto.EmployeeName = strings.TrimSpace(dto.EmployeeName)
	dto.LeaveType = strings.ToLower(strings.TrimSpace(dto.LeaveType))
	dto.StartDate = strings.TrimSpace(dto.StartDate)
	dto.EndDate = strings.TrimSpace(dto.EndDate)
	dto.Reason = strings.TrimSpace(dto.Reason)
}

func (dto CreateLeaveDTO) Validate() error {
	if err := validation.ValidateDateRange(dto.StartDate, dto.EndDate); err != nil {
		return err
	}

	v := validation.NewValidator()
	v.Field("leave_type", dto.LeaveType).Required().OneOf(internal.ErrCodeValidationFailed, LeaveTypes...)
	v.Field("employee_name", dto.EmployeeName).MaxLength(120)
	v.Field("reason", dto.Reason).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type DecisionDTO struct {
	Comment string `json:"comment"`
}

type LeavesResponse struct {
	Leaves []*Leave `json:"leaves"`
	Total  int64    `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}
