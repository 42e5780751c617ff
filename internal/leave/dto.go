package leave

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

// SubmitDTO carries dates as YYYY-MM-DD and times as HH:MM in the company timezone.
type SubmitDTO struct {
	LeaveTypeID    int64   `json:"leave_type_id"`
	StartDate      string  `json:"start_date"`
	StartTime      string  `json:"start_time"`
	EndDate        string  `json:"end_date"`
	EndTime        string  `json:"end_time"`
	Reason         string  `json:"reason"`
	AttachmentName *string `json:"attachment_name,omitempty"`
}

// Range parses and validates the requested interval.
func (d *SubmitDTO) Range(loc *time.Location) (time.Time, time.Time, *internal.AppError) {
	d.Reason = strings.TrimSpace(d.Reason)
	v := validation.NewValidator()
	v.Field("leave_type_id", d.LeaveTypeID).Required()
	v.Field("start_date", d.StartDate).Required()
	v.Field("start_time", d.StartTime).Required()
	v.Field("end_date", d.EndDate).Required()
	v.Field("end_time", d.EndTime).Required()
	v.Field("reason", d.Reason).Required().MaxLength(1000)
	if d.AttachmentName != nil {
		v.Field("attachment_name", *d.AttachmentName).MaxLength(255)
	}
	if err := v.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return parseRange(d.StartDate, d.StartTime, d.EndDate, d.EndTime, loc)
}

func parseRange(startDate, startTime, endDate, endTime string, loc *time.Location) (time.Time, time.Time, *internal.AppError) {
	start, err := validation.ParseDateTime("start", startDate, startTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := validation.ParseDateTime("end", endDate, endTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	v := validation.NewValidator()
	v.Field("end", end).After(start, "start")
	if err := v.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

type ReviewDTO struct {
	Action  string `json:"action"`
	Remarks string `json:"remarks"`
}

func (d *ReviewDTO) Validate() *internal.AppError {
	d.Action = strings.ToLower(strings.TrimSpace(d.Action))
	d.Remarks = strings.TrimSpace(d.Remarks)
	if d.Action != ActionApprove && d.Action != ActionReject {
		return internal.ErrInvalidAction
	}
	if d.Action == ActionReject && d.Remarks == "" {
		return internal.ErrRemarksRequired
	}
	v := validation.NewValidator()
	v.Field("remarks", d.Remarks).MaxLength(1000)
	return v.Validate()
}

func (d *ReviewDTO) decision() string {
	if d.Action == ActionApprove {
		return DecisionApproved
	}
	return DecisionRejected
}

// CorrectDTO rewrites an approved leave. LeaveTypeID 0 keeps the current type.
type CorrectDTO struct {
	LeaveTypeID int64  `json:"leave_type_id,omitempty"`
	StartDate   string `json:"start_date"`
	StartTime   string `json:"start_time"`
	EndDate     string `json:"end_date"`
	EndTime     string `json:"end_time"`
	Note        string `json:"note"`
}

func (d *CorrectDTO) Range(loc *time.Location) (time.Time, time.Time, *internal.AppError) {
	d.Note = strings.TrimSpace(d.Note)
	v := validation.NewValidator()
	v.Field("start_date", d.StartDate).Required()
	v.Field("start_time", d.StartTime).Required()
	v.Field("end_date", d.EndDate).Required()
	v.Field("end_time", d.EndTime).Required()
	v.Field("note", d.Note).Required().MaxLength(500)
	if err := v.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return parseRange(d.StartDate, d.StartTime, d.EndDate, d.EndTime, loc)
}

type ListFilter struct {
	EmployeeID int64
	ManagerID  int64
	Status     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type LeavesResponse struct {
	Leaves []*Leave `json:"leaves"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}
