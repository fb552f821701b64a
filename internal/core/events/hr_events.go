package events

import (
	"time"

	"github.com/frahmantamala/office-hr/internal/core/id"
)

const (
	EventLeaveRequested  = "leave.requested"
	EventApprovalDecided = "approval.decided"
	EventAuditRecorded   = "audit.recorded"
)

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        id.New(id.PrefixEvent),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type LeaveRequestedEvent struct {
	BaseEvent
	CompanyID     string
	LeaveID       string
	EmployeeLabel string
}

func NewLeaveRequestedEvent(companyID, leaveID, employeeLabel string) *LeaveRequestedEvent {
	return &LeaveRequestedEvent{
		BaseEvent: newEvent(EventLeaveRequested, map[string]interface{}{
			"company_id": companyID,
			"leave_id":   leaveID,
		}),
		CompanyID:     companyID,
		LeaveID:       leaveID,
		EmployeeLabel: employeeLabel,
	}
}

// ApprovalDecidedEvent carries a decision to whoever owns an entity type that
// has no dedicated handler.
type ApprovalDecidedEvent struct {
	BaseEvent
	CompanyID  string
	ApprovalID string
	EntityType string
	EntityID   string
	Outcome    string
	Comment    string
}

func NewApprovalDecidedEvent(companyID, approvalID, entityType, entityID, outcome, comment string) *ApprovalDecidedEvent {
	return &ApprovalDecidedEvent{
		BaseEvent: newEvent(EventApprovalDecided, map[string]interface{}{
			"company_id":  companyID,
			"approval_id": approvalID,
			"entity_type": entityType,
			"entity_id":   entityID,
			"outcome":     outcome,
		}),
		CompanyID:  companyID,
		ApprovalID: approvalID,
		EntityType: entityType,
		EntityID:   entityID,
		Outcome:    outcome,
		Comment:    comment,
	}
}

type AuditRecordedEvent struct {
	BaseEvent
	Record interface{}
}

func NewAuditRecordedEvent(record interface{}) *AuditRecordedEvent {
	return &AuditRecordedEvent{
		BaseEvent: newEvent(EventAuditRecorded, nil),
		Record:    record,
	}
}
