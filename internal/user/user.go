package user

import (
	"net/http"
	"time"

	"github.com/frahmantamala/office-hr/internal"
	userDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/user"
	"github.com/frahmantamala/office-hr/internal/permission"
)

const (
	StatusActive          = "active"
	StatusInactive        = "inactive"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusRejected        = "REJECTED"
)

// SignupRoles are the roles a self-registering user may ask for.
var SignupRoles = []string{permission.RoleHR, permission.RoleMD, permission.RoleEmployee, permission.RoleFinance}

var (
	ErrUserNotFound = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
	ErrEmailExists  = internal.NewConflictError("User email already exists", internal.ErrCodeEmailExists).
			WithDetails(map[string]string{"field": "email"})
	ErrSignupUserMissing = &internal.AppError{
		Type:       internal.ErrorTypeInternal,
		Code:       internal.ErrCodeSignupUserMissing,
		Message:    "Signup approval has no backing user",
		StatusCode: http.StatusInternalServerError,
	}
)

// User is the public view of an account. Credential fields stay in the
// datamodel and are never copied here.
type User struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone,omitempty"`
	RoleKey       string    `json:"role_key"`
	RoleRequested string    `json:"role_requested,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:            u.ID,
		CompanyID:     u.CompanyID,
		Email:         u.Email,
		FullName:      u.FullName,
		Phone:         u.Phone,
		RoleKey:       u.RoleKey,
		RoleRequested: u.RoleRequested,
		Status:        u.Status,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
