package leavebalance

import (
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
)

// Ledger reasons.
const (
	ReasonInitial        = "initial"
	ReasonLeaveApproved  = "leave_approved"
	ReasonLeaveCanceled  = "leave_canceled"
	ReasonLeaveCorrected = "leave_corrected"
	ReasonAdjustment     = "adjustment"
	ReasonAnnualReset    = "annual_reset"
)

type Balance struct {
	ID             int64     `json:"id"`
	EmployeeID     int64     `json:"employee_id"`
	LeaveTypeID    int64     `json:"leave_type_id"`
	LeaveTypeCode  string    `json:"leave_type_code,omitempty"`
	LeaveTypeName  string    `json:"leave_type_name,omitempty"`
	RemainingHours float64   `json:"remaining_hours"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type LedgerEntry struct {
	ID           int64     `json:"id"`
	LeaveTypeID  int64     `json:"leave_type_id"`
	DeltaHours   float64   `json:"delta_hours"`
	BalanceAfter float64   `json:"balance_after"`
	Reason       string    `json:"reason"`
	LeaveID      *int64    `json:"leave_id,omitempty"`
	ActorID      *int64    `json:"actor_id,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Movement describes a debit or credit caused by a leave request.
type Movement struct {
	EmployeeID  int64
	LeaveTypeID int64
	Hours       float64
	LeaveID     int64
	ActorID     int64
	Reason      string
	Note        string
}

// EmployeeRef is the part of an employee the reset job needs.
type EmployeeRef struct {
	ID     int64
	Gender string
}

var (
	ErrBalanceNotFound     = internal.NewNotFoundError("leave balance not found", internal.ErrCodeBalanceNotFound)
	ErrInsufficientBalance = internal.NewConflictError("insufficient leave balance", internal.ErrCodeInsufficientBalance)
)

func FromDataModel(b *leaveDatamodel.LeaveBalance) *Balance {
	return &Balance{
		ID:             b.ID,
		EmployeeID:     b.EmployeeID,
		LeaveTypeID:    b.LeaveTypeID,
		RemainingHours: b.RemainingHours,
		UpdatedAt:      b.UpdatedAt,
	}
}

func ledgerFromDataModel(t *leaveDatamodel.LeaveBalanceTransaction) LedgerEntry {
	return LedgerEntry{
		ID:           t.ID,
		LeaveTypeID:  t.LeaveTypeID,
		DeltaHours:   t.DeltaHours,
		BalanceAfter: t.BalanceAfter,
		Reason:       t.Reason,
		LeaveID:      t.LeaveID,
		ActorID:      t.ActorID,
		Note:         t.Note,
		CreatedAt:    t.CreatedAt,
	}
}
