package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnavailable  ErrorType = "SERVICE_UNAVAILABLE"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidOutcome   ErrorCode = "INVALID_OUTCOME"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"

	ErrCodeApprovalNotFound       ErrorCode = "APPROVAL_NOT_FOUND"
	ErrCodeApprovalExists         ErrorCode = "APPROVAL_EXISTS"
	ErrCodeApprovalAlreadyDecided ErrorCode = "APPROVAL_ALREADY_DECIDED"
	ErrCodeApprovalStillPending   ErrorCode = "APPROVAL_STILL_PENDING"
	ErrCodeManagedEntityType      ErrorCode = "MANAGED_ENTITY_TYPE"
	ErrCodeSideEffectFailed       ErrorCode = "SIDE_EFFECT_FAILED"
	ErrCodeLeaveNotFound          ErrorCode = "LEAVE_NOT_FOUND"
	ErrCodeUserNotFound           ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailExists            ErrorCode = "EMAIL_EXISTS"
	ErrCodeSignupUserMissing      ErrorCode = "SIGNUP_USER_MISSING"
	ErrCodeEmployeeNotFound       ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeEmployeeCodeExists     ErrorCode = "EMPLOYEE_CODE_EXISTS"
	ErrCodeVaultItemNotFound      ErrorCode = "VAULT_ITEM_NOT_FOUND"
	ErrCodeVaultAccessDenied      ErrorCode = "VAULT_ACCESS_DENIED"
	ErrCodeCompanyNotFound        ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeCompanyNameExists      ErrorCode = "COMPANY_NAME_EXISTS"
	ErrCodeNotificationNotFound   ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeNotificationDuplicate  ErrorCode = "NOTIFICATION_DUPLICATE"
	ErrCodePermissionDenied       ErrorCode = "PERMISSION_DENIED"
	ErrCodeRoleRequired           ErrorCode = "ROLE_REQUIRED"
	ErrCodeMissingIdentity        ErrorCode = "MISSING_IDENTITY"
	ErrCodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken           ErrorCode = "INVALID_TOKEN"
	ErrCodeSessionExpired         ErrorCode = "SESSION_EXPIRED"
	ErrCodeDatabaseDown           ErrorCode = "DATABASE_DOWN"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Type and Code so that a sentinel compares equal to a copy
// carrying a cause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy; sentinels are shared and must not be mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewDatabaseDownError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Code:       ErrCodeDatabaseDown,
		Message:    "Storage is unavailable",
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

var (
	ErrMissingIdentity    = NewUnauthorizedError("Authentication required", ErrCodeMissingIdentity)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid credentials", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrSessionExpired     = NewUnauthorizedError("Session has expired", ErrCodeSessionExpired)
	ErrPermissionDenied   = NewForbiddenError("You do not have permission to perform this action", ErrCodePermissionDenied)
	ErrRoleRequired       = NewForbiddenError("Your role cannot perform this action", ErrCodeRoleRequired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// AsAppError converts any error into an AppError; context deadline errors
// become DatabaseDown since every blocking call in this service is a store call.
func AsAppError(err error) *AppError {
	if appErr, ok := IsAppError(err); ok {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewDatabaseDownError(err)
	}
	return NewInternalError("Internal server error", err)
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
