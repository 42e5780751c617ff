package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidTime      ErrorCode = "INVALID_TIME"
	ErrCodeInvalidRange     ErrorCode = "INVALID_RANGE"
	ErrCodeRemarksRequired  ErrorCode = "REMARKS_REQUIRED"
	ErrCodeInvalidAction    ErrorCode = "INVALID_ACTION"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
	ErrCodeWeakPassword       ErrorCode = "WEAK_PASSWORD"

	ErrCodeEmployeeNotFound      ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeEmployeeNotPending    ErrorCode = "EMPLOYEE_NOT_PENDING"
	ErrCodeEmployeeNotApproved   ErrorCode = "EMPLOYEE_NOT_APPROVED"
	ErrCodeInvalidManager        ErrorCode = "INVALID_MANAGER"
	ErrCodeDepartmentNotFound    ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodePositionNotFound      ErrorCode = "POSITION_NOT_FOUND"
	ErrCodeRoleNotFound          ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeOrganizationInUse     ErrorCode = "ORGANIZATION_IN_USE"
	ErrCodeDuplicateName         ErrorCode = "DUPLICATE_NAME"
	ErrCodePositionDepartment    ErrorCode = "POSITION_DEPARTMENT_MISMATCH"
	ErrCodeLeaveTypeNotFound     ErrorCode = "LEAVE_TYPE_NOT_FOUND"
	ErrCodeLeaveTypeInactive     ErrorCode = "LEAVE_TYPE_INACTIVE"
	ErrCodeLeaveTypeGender       ErrorCode = "LEAVE_TYPE_GENDER_RESTRICTED"
	ErrCodeDuplicateLeaveType    ErrorCode = "DUPLICATE_LEAVE_TYPE"
	ErrCodeLeaveNotFound         ErrorCode = "LEAVE_NOT_FOUND"
	ErrCodeLeaveOverlap          ErrorCode = "LEAVE_OVERLAP"
	ErrCodeInvalidLeaveStatus    ErrorCode = "INVALID_LEAVE_STATUS"
	ErrCodeLeaveAlreadyStarted   ErrorCode = "LEAVE_ALREADY_STARTED"
	ErrCodeZeroLeaveHours        ErrorCode = "ZERO_LEAVE_HOURS"
	ErrCodeInsufficientBalance   ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeBalanceNotFound       ErrorCode = "LEAVE_BALANCE_NOT_FOUND"
	ErrCodeNotLeaveReviewer      ErrorCode = "NOT_LEAVE_REVIEWER"
	ErrCodeUnauthorizedAccess    ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeAlreadyPunchedIn      ErrorCode = "ALREADY_PUNCHED_IN"
	ErrCodeAlreadyPunchedOut     ErrorCode = "ALREADY_PUNCHED_OUT"
	ErrCodeNotPunchedIn          ErrorCode = "NOT_PUNCHED_IN"
	ErrCodeCorrectionNotFound    ErrorCode = "PUNCH_CORRECTION_NOT_FOUND"
	ErrCodeCorrectionNotPending  ErrorCode = "PUNCH_CORRECTION_NOT_PENDING"
	ErrCodeDuplicateCorrection   ErrorCode = "DUPLICATE_PUNCH_CORRECTION"
	ErrCodeNotificationQueueFull ErrorCode = "NOTIFICATION_QUEUE_FULL"
	ErrCodeNotificationClosed    ErrorCode = "NOTIFICATION_DISPATCHER_CLOSED"
	ErrCodeUserNotFound          ErrorCode = "USER_NOT_FOUND"
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

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so that copies produced by WithCause still compare
// equal to the package-level sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

// WithCause returns a copy carrying cause; sentinels are never mutated.
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
		Code:       "INTERNAL_ERROR",
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

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrUnauthorizedAccess = NewForbiddenError("You are not allowed to access this resource", ErrCodeUnauthorizedAccess)
	ErrRemarksRequired    = NewValidationError("remarks are required when rejecting", ErrCodeRemarksRequired)
	ErrInvalidAction      = NewValidationError("action must be either 'approve' or 'reject'", ErrCodeInvalidAction)
)

// IsAppError unwraps err until it finds an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
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
