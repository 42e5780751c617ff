package attendance

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

type CorrectionDTO struct {
	Type        string `json:"type"`
	WorkDate    string `json:"work_date"`
	PunchedTime string `json:"punched_time"`
	Reason      string `json:"reason"`
}

// PunchedAt validates the request and returns the corrected punch time in loc.
func (d *CorrectionDTO) PunchedAt(loc *time.Location, now time.Time) (time.Time, *internal.AppError) {
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	d.Reason = strings.TrimSpace(d.Reason)

	v := validation.NewValidator()
	v.Field("type", d.Type).Required().OneOf(PunchIn, PunchOut)
	v.Field("work_date", d.WorkDate).Required()
	v.Field("punched_time", d.PunchedTime).Required()
	v.Field("reason", d.Reason).Required().MaxLength(500)
	if err := v.Validate(); err != nil {
		return time.Time{}, err
	}

	at, err := validation.ParseDateTime("punched_time", d.WorkDate, d.PunchedTime, loc)
	if err != nil {
		return time.Time{}, err
	}
	v = validation.NewValidator()
	v.Field("punched_time", at).NotAfter(now)
	if err := v.Validate(); err != nil {
		return time.Time{}, err
	}
	return at, nil
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
	return nil
}

type CorrectionFilter struct {
	EmployeeID int64
	Status     string
	Limit      int
	Offset     int
}

// Period is an inclusive range of work dates, both UTC midnights.
type Period struct {
	From time.Time
	To   time.Time
}

// ParsePeriod reads from/to as YYYY-MM-DD. Missing bounds default to the
// current month in loc.
func ParsePeriod(from, to string, loc *time.Location, now time.Time) (Period, *internal.AppError) {
	today := WorkDate(now, loc)
	p := Period{
		From: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:   today,
	}
	if from != "" {
		t, err := validation.ParseDate("from", from, time.UTC)
		if err != nil {
			return p, err
		}
		p.From = t
	}
	if to != "" {
		t, err := validation.ParseDate("to", to, time.UTC)
		if err != nil {
			return p, err
		}
		p.To = t
	}
	if p.To.Before(p.From) {
		return p, internal.NewValidationFieldError("to", "to must not be before from", internal.ErrCodeInvalidRange)
	}
	return p, nil
}

// ParseMonth reads YYYY-MM and returns the whole month as a Period.
func ParseMonth(month string, loc *time.Location, now time.Time) (Period, *internal.AppError) {
	var start time.Time
	if month == "" {
		today := WorkDate(now, loc)
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		t, err := time.Parse("2006-01", month)
		if err != nil {
			return Period{}, internal.NewValidationFieldError("month", "month must be in YYYY-MM format", internal.ErrCodeInvalidDate)
		}
		start = t
	}
	return Period{From: start, To: start.AddDate(0, 1, -1)}, nil
}

type CorrectionsResponse struct {
	Corrections []*Correction `json:"corrections"`
	Limit       int           `json:"limit"`
	Offset      int           `json:"offset"`
}

type DailyRecordsResponse struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Records []DailyRecord `json:"records"`
}

type DailyReportResponse struct {
	From string           `json:"from"`
	To   string           `json:"to"`
	Rows []DailyReportRow `json:"rows"`
}

type MonthlySummaryResponse struct {
	Month     string           `json:"month"`
	Summaries []MonthlySummary `json:"summaries"`
}
