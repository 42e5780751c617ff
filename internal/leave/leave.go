package leave

import (
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
)

// Final statuses.
const (
	StatusPending         = "pending"
	StatusManagerApproved = "manager_approved"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusCanceled        = "canceled"
)

// Stage decisions kept in manager_status and hr_status.
const (
	DecisionPending  = "pending"
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"

	StageManager = "manager"
	StageHR      = "hr"
)

type Leave struct {
	ID                int64      `json:"id"`
	EmployeeID        int64      `json:"employee_id"`
	EmployeeName      string     `json:"employee_name,omitempty"`
	OwnerManagerID    *int64     `json:"-"`
	OwnerGender       string     `json:"-"`
	LeaveTypeID       int64      `json:"leave_type_id"`
	LeaveTypeName     string     `json:"leave_type_name,omitempty"`
	StartAt           time.Time  `json:"start_at"`
	EndAt             time.Time  `json:"end_at"`
	Hours             float64    `json:"hours"`
	Reason            string     `json:"reason"`
	AttachmentName    *string    `json:"attachment_name,omitempty"`
	ManagerStatus     string     `json:"manager_status"`
	ManagerID         *int64     `json:"manager_id,omitempty"`
	ManagerRemarks    string     `json:"manager_remarks,omitempty"`
	ManagerReviewedAt *time.Time `json:"manager_reviewed_at,omitempty"`
	HRStatus          string     `json:"hr_status"`
	HRReviewerID      *int64     `json:"hr_reviewer_id,omitempty"`
	HRRemarks         string     `json:"hr_remarks,omitempty"`
	HRReviewedAt      *time.Time `json:"hr_reviewed_at,omitempty"`
	Status            string     `json:"status"`
	CanceledAt        *time.Time `json:"canceled_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DeriveStatus combines both review stages into the final status.
// Cancellation wins, then any rejection, then the furthest approval.
func DeriveStatus(managerStatus, hrStatus string, canceled bool) string {
	switch {
	case canceled:
		return StatusCanceled
	case managerStatus == DecisionRejected || hrStatus == DecisionRejected:
		return StatusRejected
	case hrStatus == DecisionApproved:
		return StatusApproved
	case managerStatus == DecisionApproved:
		return StatusManagerApproved
	default:
		return StatusPending
	}
}

func (l *Leave) refreshStatus() {
	l.Status = DeriveStatus(l.ManagerStatus, l.HRStatus, l.CanceledAt != nil)
	l.UpdatedAt = time.Now()
}

func (l *Leave) CanManagerReview() bool {
	return l.Status == StatusPending
}

func (l *Leave) CanHRReview() bool {
	return l.Status == StatusManagerApproved
}

func (l *Leave) CanBeCanceled(now time.Time) bool {
	switch l.Status {
	case StatusPending, StatusManagerApproved, StatusApproved:
		return now.Before(l.StartAt)
	}
	return false
}

// Blocks reports whether the leave still occupies its time range for overlap checks.
func (l *Leave) Blocks() bool {
	return l.Status != StatusRejected && l.Status != StatusCanceled
}

func (l *Leave) ManagerDecide(reviewerID int64, decision, remarks string, at time.Time) {
	l.ManagerStatus = decision
	l.ManagerID = &reviewerID
	l.ManagerRemarks = remarks
	l.ManagerReviewedAt = &at
	l.refreshStatus()
}

func (l *Leave) HRDecide(reviewerID int64, decision, remarks string, at time.Time) {
	l.HRStatus = decision
	l.HRReviewerID = &reviewerID
	l.HRRemarks = remarks
	l.HRReviewedAt = &at
	l.refreshStatus()
}

func (l *Leave) Cancel(at time.Time) {
	l.CanceledAt = &at
	l.refreshStatus()
}

var (
	ErrLeaveNotFound       = internal.NewNotFoundError("leave not found", internal.ErrCodeLeaveNotFound)
	ErrLeaveOverlap        = internal.NewConflictError("leave overlaps an existing leave request", internal.ErrCodeLeaveOverlap)
	ErrInvalidLeaveStatus  = internal.NewConflictError("leave is not in a state that allows this action", internal.ErrCodeInvalidLeaveStatus)
	ErrLeaveAlreadyStarted = internal.NewConflictError("leave has already started", internal.ErrCodeLeaveAlreadyStarted)
	ErrZeroLeaveHours      = internal.NewValidationError("requested range contains no working hours", internal.ErrCodeZeroLeaveHours)
	ErrInsufficientBalance = leavebalance.ErrInsufficientBalance
	ErrNotLeaveReviewer    = internal.NewForbiddenError("only the employee's manager can review this leave", internal.ErrCodeNotLeaveReviewer)
	ErrUnauthorizedAccess  = internal.ErrUnauthorizedAccess
)

func ToDataModel(l *Leave) *leaveDatamodel.Leave {
	return &leaveDatamodel.Leave{
		ID:                l.ID,
		EmployeeID:        l.EmployeeID,
		LeaveTypeID:       l.LeaveTypeID,
		StartAt:           l.StartAt.UTC(),
		EndAt:             l.EndAt.UTC(),
		Hours:             l.Hours,
		Reason:            l.Reason,
		AttachmentName:    l.AttachmentName,
		ManagerStatus:     l.ManagerStatus,
		ManagerID:         l.ManagerID,
		ManagerRemarks:    l.ManagerRemarks,
		ManagerReviewedAt: l.ManagerReviewedAt,
		HRStatus:          l.HRStatus,
		HRReviewerID:      l.HRReviewerID,
		HRRemarks:         l.HRRemarks,
		HRReviewedAt:      l.HRReviewedAt,
		Status:            l.Status,
		CanceledAt:        l.CanceledAt,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

func FromDataModel(l *leaveDatamodel.Leave) *Leave {
	return &Leave{
		ID:                l.ID,
		EmployeeID:        l.EmployeeID,
		LeaveTypeID:       l.LeaveTypeID,
		StartAt:           l.StartAt,
		EndAt:             l.EndAt,
		Hours:             l.Hours,
		Reason:            l.Reason,
		AttachmentName:    l.AttachmentName,
		ManagerStatus:     l.ManagerStatus,
		ManagerID:         l.ManagerID,
		ManagerRemarks:    l.ManagerRemarks,
		ManagerReviewedAt: l.ManagerReviewedAt,
		HRStatus:          l.HRStatus,
		HRReviewerID:      l.HRReviewerID,
		HRRemarks:         l.HRRemarks,
		HRReviewedAt:      l.HRReviewedAt,
		Status:            l.Status,
		CanceledAt:        l.CanceledAt,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}
