package attendance

import (
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	attendanceDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/attendance"
	"gorm.io/datatypes"
)

const (
	PunchIn  = "in"
	PunchOut = "out"
)

// Punch sources.
const (
	SourceClock      = "clock"
	SourceCorrection = "correction"
)

const (
	CorrectionPending  = "pending"
	CorrectionApproved = "approved"
	CorrectionRejected = "rejected"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

const dateLayout = "2006-01-02"

type Punch struct {
	ID           int64     `json:"id"`
	EmployeeID   int64     `json:"employee_id"`
	WorkDate     string    `json:"work_date"`
	Type         string    `json:"type"`
	PunchedAt    time.Time `json:"punched_at"`
	Source       string    `json:"source"`
	CorrectionID *int64    `json:"correction_id,omitempty"`
}

// DailyRecord pairs one day's punches for an employee.
type DailyRecord struct {
	WorkDate    string     `json:"work_date"`
	PunchIn     *time.Time `json:"punch_in,omitempty"`
	PunchOut    *time.Time `json:"punch_out,omitempty"`
	Late        bool       `json:"late"`
	WorkedHours float64    `json:"worked_hours"`
}

type Correction struct {
	ID            int64      `json:"id"`
	EmployeeID    int64      `json:"employee_id"`
	EmployeeName  string     `json:"employee_name,omitempty"`
	ManagerID     *int64     `json:"-"`
	WorkDate      string     `json:"work_date"`
	Type          string     `json:"type"`
	PunchedAt     time.Time  `json:"punched_at"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status"`
	ReviewerID    *int64     `json:"reviewer_id,omitempty"`
	ReviewRemarks string     `json:"review_remarks,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PunchRow is one punch joined with its employee, as read by the report queries.
type PunchRow struct {
	EmployeeID     int64     `db:"employee_id"`
	EmployeeCode   string    `db:"employee_code"`
	EmployeeName   string    `db:"employee_name"`
	DepartmentName *string   `db:"department_name"`
	WorkDate       time.Time `db:"work_date"`
	PunchType      string    `db:"punch_type"`
	PunchedAt      time.Time `db:"punched_at"`
}

type DailyReportRow struct {
	EmployeeID     int64  `json:"employee_id"`
	EmployeeCode   string `json:"employee_code"`
	EmployeeName   string `json:"employee_name"`
	DepartmentName string `json:"department_name,omitempty"`
	DailyRecord
}

type MonthlySummary struct {
	EmployeeID       int64   `json:"employee_id"`
	EmployeeCode     string  `json:"employee_code"`
	EmployeeName     string  `json:"employee_name"`
	DepartmentName   string  `json:"department_name,omitempty"`
	DaysPresent      int     `json:"days_present"`
	LateDays         int     `json:"late_days"`
	MissingPunchOuts int     `json:"missing_punch_outs"`
	WorkedHours      float64 `json:"worked_hours"`
}

var (
	ErrAlreadyPunchedIn     = internal.NewConflictError("already punched in today", internal.ErrCodeAlreadyPunchedIn)
	ErrAlreadyPunchedOut    = internal.NewConflictError("already punched out today", internal.ErrCodeAlreadyPunchedOut)
	ErrNotPunchedIn         = internal.NewConflictError("punch in before punching out", internal.ErrCodeNotPunchedIn)
	ErrCorrectionNotFound   = internal.NewNotFoundError("punch correction not found", internal.ErrCodeCorrectionNotFound)
	ErrCorrectionNotPending = internal.NewConflictError("punch correction was already reviewed", internal.ErrCodeCorrectionNotPending)
	ErrDuplicateCorrection  = internal.NewConflictError("a pending correction already exists for this day and punch type", internal.ErrCodeDuplicateCorrection)
	ErrPunchOrder           = internal.NewValidationError("punch out must be later than punch in", internal.ErrCodeInvalidTime)
	ErrUnauthorizedAccess   = internal.ErrUnauthorizedAccess
)

// WorkDate returns the calendar day of t in loc as a UTC midnight.
func WorkDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func punchFromDataModel(p *attendanceDatamodel.Punch) *Punch {
	return &Punch{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		WorkDate:     time.Time(p.WorkDate).Format(dateLayout),
		Type:         p.PunchType,
		PunchedAt:    p.PunchedAt,
		Source:       p.Source,
		CorrectionID: p.CorrectionID,
	}
}

func correctionFromDataModel(c *attendanceDatamodel.PunchCorrection) *Correction {
	return &Correction{
		ID:            c.ID,
		EmployeeID:    c.EmployeeID,
		WorkDate:      time.Time(c.WorkDate).Format(dateLayout),
		Type:          c.PunchType,
		PunchedAt:     c.PunchedAt,
		Reason:        c.Reason,
		Status:        c.Status,
		ReviewerID:    c.ReviewerID,
		ReviewRemarks: c.ReviewRemarks,
		ReviewedAt:    c.ReviewedAt,
		CreatedAt:     c.CreatedAt,
	}
}

func date(t time.Time) datatypes.Date {
	return datatypes.Date(t)
}
