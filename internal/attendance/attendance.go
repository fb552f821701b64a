package attendance

import (
	"time"

	attendanceDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/attendance"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusHalfDay = "half_day"
	StatusOnLeave = "on_leave"
	StatusRemote  = "remote"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusHalfDay, StatusOnLeave, StatusRemote}

type Record struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	Date         string    `json:"date"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name,omitempty"`
	Department   string    `json:"department,omitempty"`
	Status       string    `json:"status"`
	CheckIn      string    `json:"check_in,omitempty"`
	CheckOut     string    `json:"check_out,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToDataModel(r *Record) *attendanceDatamodel.Record {
	return &attendanceDatamodel.Record{
		ID:           r.ID,
		CompanyID:    r.CompanyID,
		Date:         r.Date,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Department:   r.Department,
		Status:       r.Status,
		CheckIn:      r.CheckIn,
		CheckOut:     r.CheckOut,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func FromDataModel(r *attendanceDatamodel.Record) *Record {
	return &Record{
		ID:           r.ID,
		CompanyID:    r.CompanyID,
		Date:         r.Date,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Department:   r.Department,
		Status:       r.Status,
		CheckIn:      r.CheckIn,
		CheckOut:     r.CheckOut,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
