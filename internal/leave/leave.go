package leave

import (
	"time"

	"github.com/frahmantamala/office-hr/internal"
	leaveDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/leave"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var LeaveTypes = []string{"annual", "sick", "unpaid", "maternity", "paternity", "other"}

var ErrLeaveNotFound = internal.NewNotFoundError("Leave request not found", internal.ErrCodeLeaveNotFound)

type Leave struct {
	ID                string    `json:"id"`
	CompanyID         string    `json:"company_id"`
	EmployeeID        string    `json:"employee_id"`
	EmployeeName      string    `json:"employee_name,omitempty"`
	LeaveType         string    `json:"leave_type"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	Reason            string    `json:"reason,omitempty"`
	Status            string    `json:"status"`
	ApproverComment   string    `json:"approver_comment,omitempty"`
	RequestedByUserID string    `json:"requested_by_user_id"`
	ApprovalID        string    `json:"approval_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func ToDataModel(l *Leave) *leaveDatamodel.LeaveRequest {
	return &leaveDatamodel.LeaveRequest{
		ID:                l.ID,
		CompanyID:         l.CompanyID,
		EmployeeID:        l.EmployeeID,
		EmployeeName:      l.EmployeeName,
		LeaveType:         l.LeaveType,
		StartDate:         l.StartDate,
		EndDate:           l.EndDate,
		Reason:            l.Reason,
		Status:            l.Status,
		ApproverComment:   l.ApproverComment,
		RequestedByUserID: l.RequestedByUserID,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

func FromDataModel(l *leaveDatamodel.LeaveRequest) *Leave {
	return &Leave{
		ID:                l.ID,
		CompanyID:         l.CompanyID,
		EmployeeID:        l.EmployeeID,
		EmployeeName:      l.EmployeeName,
		LeaveType:         l.LeaveType,
		StartDate:         l.StartDate,
		EndDate:           l.EndDate,
		Reason:            l.Reason,
		Status:            l.Status,
		ApproverComment:   l.ApproverComment,
		RequestedByUserID: l.RequestedByUserID,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}
