package approval

import (
	"net/http"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	approvalDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/approval"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsDecision reports whether s is a terminal outcome a caller may request.
func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

const (
	EntityLeave      = "leave"
	EntityUserSignup = "user_signup"
	EntityExpense    = "expense"

	WorkflowLeaveDefault = "leave_default"
	WorkflowUserSignup   = "user_signup"
)

var (
	ErrApprovalNotFound = internal.NewNotFoundError("Approval not found", internal.ErrCodeApprovalNotFound)
	ErrApprovalExists   = internal.NewConflictError("An approval already exists for this entity", internal.ErrCodeApprovalExists)
	ErrAlreadyDecided   = internal.NewConflictError("Approval has already been decided", internal.ErrCodeApprovalAlreadyDecided)
	ErrStillPending     = internal.NewConflictError("Approval has not been decided yet", internal.ErrCodeApprovalStillPending)
	ErrInvalidOutcome   = internal.NewValidationError("Outcome must be approved or rejected", internal.ErrCodeInvalidOutcome)
	ErrManagedEntity    = internal.NewValidationFieldError("entity_type", "Approvals for this entity type are opened through its own endpoint", internal.ErrCodeManagedEntityType)
	ErrSideEffectFailed = &internal.AppError{
		Type:       internal.ErrorTypeInternal,
		Code:       internal.ErrCodeSideEffectFailed,
		Message:    "Approval was decided but its side effects did not complete; replay it",
		StatusCode: http.StatusInternalServerError,
	}
)

type Approval struct {
	ID                string    `json:"id"`
	CompanyID         string    `json:"company_id"`
	EntityType        string    `json:"entity_type"`
	EntityID          string    `json:"entity_id"`
	WorkflowKey       string    `json:"workflow_key"`
	CurrentStep       int       `json:"current_step"`
	Status            Status    `json:"status"`
	RequestedByUserID string    `json:"requested_by_user_id"`
	DecidedByUserID   *string   `json:"decided_by_user_id"`
	DecisionComment   string    `json:"decision_comment"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (a *Approval) IsPending() bool {
	return a.Status == StatusPending
}

// NewApproval is the input for opening an approval on a subject entity.
type NewApproval struct {
	CompanyID   string
	EntityType  string
	EntityID    string
	WorkflowKey string
	CurrentStep int
	RequestedBy string
}

// Decision is what an EntityHandler receives.
type Decision struct {
	ApprovalID string
	CompanyID  string
	EntityType string
	EntityID   string
	Outcome    Status
	Comment    string
	DecidedBy  string
}

func ToDataModel(a *Approval) *approvalDatamodel.Approval {
	return &approvalDatamodel.Approval{
		ID:                a.ID,
		CompanyID:         a.CompanyID,
		EntityType:        a.EntityType,
		EntityID:          a.EntityID,
		WorkflowKey:       a.WorkflowKey,
		CurrentStep:       a.CurrentStep,
		Status:            string(a.Status),
		RequestedByUserID: a.RequestedByUserID,
		DecidedByUserID:   a.DecidedByUserID,
		DecisionComment:   a.DecisionComment,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func FromDataModel(a *approvalDatamodel.Approval) *Approval {
	return &Approval{
		ID:                a.ID,
		CompanyID:         a.CompanyID,
		EntityType:        a.EntityType,
		EntityID:          a.EntityID,
		WorkflowKey:       a.WorkflowKey,
		CurrentStep:       a.CurrentStep,
		Status:            Status(a.Status),
		RequestedByUserID: a.RequestedByUserID,
		DecidedByUserID:   a.DecidedByUserID,
		DecisionComment:   a.DecisionComment,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
