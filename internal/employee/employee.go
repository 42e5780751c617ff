package employee

import (
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusInactive = "inactive"

	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Employee is the employment record joined with its user account and
// organization names.
type Employee struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	EmployeeCode   string     `json:"employee_code"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Gender         string     `json:"gender"`
	DepartmentID   *int64     `json:"department_id,omitempty"`
	DepartmentName *string    `json:"department_name,omitempty"`
	PositionID     *int64     `json:"position_id,omitempty"`
	PositionName   *string    `json:"position_name,omitempty"`
	ManagerID      *int64     `json:"manager_id,omitempty"`
	ManagerName    *string    `json:"manager_name,omitempty"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	ReviewedBy     *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewRemarks  string     `json:"review_remarks,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (e *Employee) IsPending() bool {
	return e.Status == StatusPending
}

func (e *Employee) IsApproved() bool {
	return e.Status == StatusApproved
}

// Contact is the minimum needed to notify someone about a record.
type Contact struct {
	EmployeeID int64  `json:"employee_id"`
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ManagerID  *int64 `json:"manager_id,omitempty"`
}

// Assignment is the resolved organization placement written by UpdateAssignment.
type Assignment struct {
	DepartmentID *int64
	PositionID   *int64
	ManagerID    *int64
	Role         string
}

// Review is the outcome written by UpdateReview.
type Review struct {
	Status     string
	ReviewerID int64
	Remarks    string
	StartDate  *time.Time
	ReviewedAt time.Time
}

type ListFilter struct {
	Status       string
	DepartmentID int64
	ManagerID    int64
	Limit        int
	Offset       int
}

var (
	ErrEmployeeNotFound    = internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	ErrEmployeeNotPending  = internal.NewConflictError("employee is not awaiting review", internal.ErrCodeEmployeeNotPending)
	ErrEmployeeNotApproved = internal.NewConflictError("employee is not approved", internal.ErrCodeEmployeeNotApproved)
	ErrInvalidManager      = internal.NewValidationError("manager must be another approved employee outside the employee's reporting line", internal.ErrCodeInvalidManager)
	ErrRoleNotFound        = internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	ErrPositionDepartment  = internal.NewValidationError("position does not belong to the department", internal.ErrCodePositionDepartment)
	ErrUnauthorizedAccess  = internal.ErrUnauthorizedAccess
)
