package events

import (
	"context"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/google/uuid"
)

const (
	EventTypeEmployeeRegistered      = "employee.registered"
	EventTypeEmployeeReviewed        = "employee.reviewed"
	EventTypeLeaveSubmitted          = "leave.submitted"
	EventTypeLeaveReviewed           = "leave.reviewed"
	EventTypeLeaveCanceled           = "leave.canceled"
	EventTypeLeaveCorrected          = "leave.corrected"
	EventTypePunchCorrectionReviewed = "punch_correction.reviewed"
	EventTypePasswordReset           = "auth.password_reset"
	EventTypeLeaveBalancesReset      = "leave_balance.reset"
)

func newBase(ctx context.Context, eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		TraceID:   internal.TraceIDFromContext(ctx),
		Data:      data,
	}
}

type EmployeeRegisteredEvent struct {
	BaseEvent
	EmployeeID int64  `json:"employee_id"`
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

func NewEmployeeRegisteredEvent(ctx context.Context, employeeID, userID int64, email, name string) *EmployeeRegisteredEvent {
	return &EmployeeRegisteredEvent{
		BaseEvent: newBase(ctx, EventTypeEmployeeRegistered, map[string]interface{}{
			"employee_id": employeeID,
			"user_id":     userID,
			"email":       email,
		}),
		EmployeeID: employeeID,
		UserID:     userID,
		Email:      email,
		Name:       name,
	}
}

type EmployeeReviewedEvent struct {
	BaseEvent
	EmployeeID int64  `json:"employee_id"`
	ReviewerID int64  `json:"reviewer_id"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks"`
}

func NewEmployeeReviewedEvent(ctx context.Context, employeeID, reviewerID int64, status, remarks string) *EmployeeReviewedEvent {
	return &EmployeeReviewedEvent{
		BaseEvent: newBase(ctx, EventTypeEmployeeReviewed, map[string]interface{}{
			"employee_id": employeeID,
			"reviewer_id": reviewerID,
			"status":      status,
		}),
		EmployeeID: employeeID,
		ReviewerID: reviewerID,
		Status:     status,
		Remarks:    remarks,
	}
}

type LeaveSubmittedEvent struct {
	BaseEvent
	LeaveID    int64     `json:"leave_id"`
	EmployeeID int64     `json:"employee_id"`
	ManagerID  *int64    `json:"manager_id,omitempty"`
	Status     string    `json:"status"`
	Hours      float64   `json:"hours"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
}

func NewLeaveSubmittedEvent(ctx context.Context, leaveID, employeeID int64, managerID *int64, status string, hours float64, startAt, endAt time.Time) *LeaveSubmittedEvent {
	return &LeaveSubmittedEvent{
		BaseEvent: newBase(ctx, EventTypeLeaveSubmitted, map[string]interface{}{
			"leave_id":    leaveID,
			"employee_id": employeeID,
			"status":      status,
			"hours":       hours,
		}),
		LeaveID:    leaveID,
		EmployeeID: employeeID,
		ManagerID:  managerID,
		Status:     status,
		Hours:      hours,
		StartAt:    startAt,
		EndAt:      endAt,
	}
}

// LeaveReviewedEvent is emitted by both approval stages; Stage is "manager" or "hr".
type LeaveReviewedEvent struct {
	BaseEvent
	LeaveID    int64  `json:"leave_id"`
	EmployeeID int64  `json:"employee_id"`
	ReviewerID int64  `json:"reviewer_id"`
	Stage      string `json:"stage"`
	Decision   string `json:"decision"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks"`
}

func NewLeaveReviewedEvent(ctx context.Context, leaveID, employeeID, reviewerID int64, stage, decision, status, remarks string) *LeaveReviewedEvent {
	return &LeaveReviewedEvent{
		BaseEvent: newBase(ctx, EventTypeLeaveReviewed, map[string]interface{}{
			"leave_id":    leaveID,
			"employee_id": employeeID,
			"stage":       stage,
			"decision":    decision,
			"status":      status,
		}),
		LeaveID:    leaveID,
		EmployeeID: employeeID,
		ReviewerID: reviewerID,
		Stage:      stage,
		Decision:   decision,
		Status:     status,
		Remarks:    remarks,
	}
}

type LeaveCanceledEvent struct {
	BaseEvent
	LeaveID       int64   `json:"leave_id"`
	EmployeeID    int64   `json:"employee_id"`
	CreditedHours float64 `json:"credited_hours"`
}

func NewLeaveCanceledEvent(ctx context.Context, leaveID, employeeID int64, creditedHours float64) *LeaveCanceledEvent {
	return &LeaveCanceledEvent{
		BaseEvent: newBase(ctx, EventTypeLeaveCanceled, map[string]interface{}{
			"leave_id":       leaveID,
			"employee_id":    employeeID,
			"credited_hours": creditedHours,
		}),
		LeaveID:       leaveID,
		EmployeeID:    employeeID,
		CreditedHours: creditedHours,
	}
}

type LeaveCorrectedEvent struct {
	BaseEvent
	LeaveID    int64   `json:"leave_id"`
	EmployeeID int64   `json:"employee_id"`
	ActorID    int64   `json:"actor_id"`
	OldHours   float64 `json:"old_hours"`
	NewHours   float64 `json:"new_hours"`
}

func NewLeaveCorrectedEvent(ctx context.Context, leaveID, employeeID, actorID int64, oldHours, newHours float64) *LeaveCorrectedEvent {
	return &LeaveCorrectedEvent{
		BaseEvent: newBase(ctx, EventTypeLeaveCorrected, map[string]interface{}{
			"leave_id":    leaveID,
			"employee_id": employeeID,
			"old_hours":   oldHours,
			"new_hours":   newHours,
		}),
		LeaveID:    leaveID,
		EmployeeID: employeeID,
		ActorID:    actorID,
		OldHours:   oldHours,
		NewHours:   newHours,
	}
}

type PunchCorrectionReviewedEvent struct {
	BaseEvent
	CorrectionID int64     `json:"correction_id"`
	EmployeeID   int64     `json:"employee_id"`
	WorkDate     time.Time `json:"work_date"`
	PunchType    string    `json:"punch_type"`
	Status       string    `json:"status"`
	Remarks      string    `json:"remarks"`
}

func NewPunchCorrectionReviewedEvent(ctx context.Context, correctionID, employeeID int64, workDate time.Time, punchType, status, remarks string) *PunchCorrectionReviewedEvent {
	return &PunchCorrectionReviewedEvent{
		BaseEvent: newBase(ctx, EventTypePunchCorrectionReviewed, map[string]interface{}{
			"correction_id": correctionID,
			"employee_id":   employeeID,
			"work_date":     workDate.Format("2006-01-02"),
			"punch_type":    punchType,
			"status":        status,
		}),
		CorrectionID: correctionID,
		EmployeeID:   employeeID,
		WorkDate:     workDate,
		PunchType:    punchType,
		Status:       status,
		Remarks:      remarks,
	}
}

// PasswordResetEvent carries the temporary password outside Data so it never reaches logs.
type PasswordResetEvent struct {
	BaseEvent
	UserID            int64  `json:"user_id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	TemporaryPassword string `json:"-"`
}

func NewPasswordResetEvent(ctx context.Context, userID int64, email, name, temporaryPassword string) *PasswordResetEvent {
	return &PasswordResetEvent{
		BaseEvent: newBase(ctx, EventTypePasswordReset, map[string]interface{}{
			"user_id": userID,
		}),
		UserID:            userID,
		Email:             email,
		Name:              name,
		TemporaryPassword: temporaryPassword,
	}
}

type LeaveBalancesResetEvent struct {
	BaseEvent
	Year     int `json:"year"`
	Balances int `json:"balances"`
}

func NewLeaveBalancesResetEvent(ctx context.Context, year, balances int) *LeaveBalancesResetEvent {
	return &LeaveBalancesResetEvent{
		BaseEvent: newBase(ctx, EventTypeLeaveBalancesReset, map[string]interface{}{
			"year":     year,
			"balances": balances,
		}),
		Year:     year,
		Balances: balances,
	}
}
