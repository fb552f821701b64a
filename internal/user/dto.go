package user

import (
	"strings"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/core/common/validation"
)

const minPinLength = 6

type CreateUserDTO struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	RoleKey  string `json:"role_key"`
	Status   string `json:"status"`
	Pin      string `json:"pin"`
}

func (dto *CreateUserDTO) Normalize() {
	dto.FullName = strings.TrimSpace(dto.FullName)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.Phone = strings.TrimSpace(dto.Phone)
	dto.RoleKey = strings.ToUpper(strings.TrimSpace(dto.RoleKey))
	dto.Status = strings.TrimSpace(dto.Status)
	if dto.Status == "" {
		dto.Status = StatusActive
	}
}

// Validate checks the payload; roles are checked against the configured
// matrix by the service.
func (dto CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("full_name", dto.FullName).Required().MinLength(2).MaxLength(120)
	v.Field("email", dto.Email).Required().Email()
	v.Field("role_key", dto.RoleKey).Required().MinLength(2).MaxLength(50)
	v.Field("status", dto.Status).OneOf(internal.ErrCodeInvalidStatus, StatusActive, StatusInactive)
	v.Field("pin", dto.Pin).MinLength(minPinLength).MaxLength(128)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateUserDTO only changes the fields that are present.
type UpdateUserDTO struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	RoleKey  *string `json:"role_key"`
	Pin      *string `json:"pin"`
}

func (dto *UpdateUserDTO) Normalize() {
	trim := func(p *string, fn func(string) string) {
		if p != nil {
			*p = fn(strings.TrimSpace(*p))
		}
	}
	same := func(s string) string { return s }
	trim(dto.FullName, same)
	trim(dto.Email, strings.ToLower)
	trim(dto.Phone, same)
	trim(dto.RoleKey, strings.ToUpper)
}

func (dto UpdateUserDTO) Validate() error {
	v := validation.NewValidator()
	if dto.FullName != nil {
		v.Field("full_name", *dto.FullName).Required().MinLength(2).MaxLength(120)
	}
	if dto.Email != nil {
		v.Field("email", *dto.Email).Required().Email()
	}
	if dto.RoleKey != nil {
		v.Field("role_key", *dto.RoleKey).Required().MinLength(2).MaxLength(50)
	}
	if dto.Pin != nil {
		v.Field("pin", *dto.Pin).Required().MinLength(minPinLength).MaxLength(128)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type StatusDTO struct {
	Status string `json:"status"`
}

type SignupDTO struct {
	CompanyID     string `json:"company_id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	RoleRequested string `json:"role_requested"`
}

func (dto *SignupDTO) Normalize() {
	dto.CompanyID = strings.TrimSpace(dto.CompanyID)
	dto.FullName = strings.TrimSpace(dto.FullName)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.Phone = strings.TrimSpace(dto.Phone)
	dto.RoleRequested = strings.ToUpper(strings.TrimSpace(dto.RoleRequested))
}

func (dto SignupDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("company_id", dto.CompanyID).Required().MaxLength(64)
	v.Field("full_name", dto.FullName).Required().MinLength(2).MaxLength(120)
	v.Field("email", dto.Email).Required().Email()
	v.Field("phone", dto.Phone).MaxLength(32)
	v.Field("role_requested", dto.RoleRequested).Required().OneOf(internal.ErrCodeInvalidRole, SignupRoles...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// SignupResponse carries no credential. The credential only travels in the
// approval notification.
type SignupResponse struct {
	User       *User  `json:"user"`
	ApprovalID string `json:"approval_id"`
}

type UsersResponse struct {
	Users  []*User `json:"users"`
	Total  int64   `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
