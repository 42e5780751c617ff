package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
)

// Policy holds the working-day rules punches are judged against.
type Policy struct {
	Location   *time.Location
	WorkStart  time.Duration
	LunchStart time.Duration
	LunchEnd   time.Duration
	Grace      time.Duration
}

func NewPolicy(cfg internal.AttendanceConfig) (Policy, error) {
	p := Policy{Location: cfg.Location(), Grace: time.Duration(cfg.GraceMinutes) * time.Minute}
	var err error
	if p.WorkStart, err = internal.ParseClock(cfg.WorkStart); err != nil {
		return Policy{}, fmt.Errorf("work_start: %w", err)
	}
	if cfg.LunchStart != "" && cfg.LunchEnd != "" {
		if p.LunchStart, err = internal.ParseClock(cfg.LunchStart); err != nil {
			return Policy{}, fmt.Errorf("lunch_start: %w", err)
		}
		if p.LunchEnd, err = internal.ParseClock(cfg.LunchEnd); err != nil {
			return Policy{}, fmt.Errorf("lunch_end: %w", err)
		}
	}
	return p, nil
}

func (p Policy) midnight(t time.Time) time.Time {
	y, m, d := t.In(p.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.Location)
}

// IsLate reports whether a punch-in falls after work start plus the grace period.
func (p Policy) IsLate(in time.Time) bool {
	return in.After(p.midnight(in).Add(p.WorkStart + p.Grace))
}

// WorkedHours is the time between the punches minus the lunch break,
// rounded to two decimals.
func (p Policy) WorkedHours(in, out time.Time) float64 {
	if !out.After(in) {
		return 0
	}
	worked := out.Sub(in)
	if p.LunchEnd > p.LunchStart {
		day := p.midnight(in)
		ls, le := day.Add(p.LunchStart), day.Add(p.LunchEnd)
		start, end := in, out
		if ls.After(start) {
			start = ls
		}
		if le.Before(end) {
			end = le
		}
		if end.After(start) {
			worked -= end.Sub(start)
		}
	}
	return math.Round(worked.Hours()*100) / 100
}

// Record builds a DailyRecord from the punches of one day.
func (p Policy) Record(workDate time.Time, in, out *time.Time) DailyRecord {
	r := DailyRecord{WorkDate: workDate.Format(dateLayout), PunchIn: in, PunchOut: out}
	if in != nil {
		r.Late = p.IsLate(*in)
	}
	if in != nil && out != nil {
		r.WorkedHours = p.WorkedHours(*in, *out)
	}
	return r
}
