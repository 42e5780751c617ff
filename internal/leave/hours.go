package leave

import (
	"math"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
)

// WorkSchedule is the working day leave hours are measured against.
// Offsets are from local midnight in Location.
type WorkSchedule struct {
	Location   *time.Location
	WorkStart  time.Duration
	WorkEnd    time.Duration
	LunchStart time.Duration
	LunchEnd   time.Duration
}

// NewWorkSchedule builds a schedule from validated attendance config.
func NewWorkSchedule(cfg internal.AttendanceConfig) (WorkSchedule, error) {
	s := WorkSchedule{Location: cfg.Location()}
	var err error
	if s.WorkStart, err = internal.ParseClock(cfg.WorkStart); err != nil {
		return s, err
	}
	if s.WorkEnd, err = internal.ParseClock(cfg.WorkEnd); err != nil {
		return s, err
	}
	if cfg.LunchStart != "" {
		if s.LunchStart, err = internal.ParseClock(cfg.LunchStart); err != nil {
			return s, err
		}
		if s.LunchEnd, err = internal.ParseClock(cfg.LunchEnd); err != nil {
			return s, err
		}
	}
	return s, nil
}

// DefaultWorkSchedule is 09:00-18:00 with a 12:00-13:00 lunch break.
func DefaultWorkSchedule(loc *time.Location) WorkSchedule {
	if loc == nil {
		loc = time.UTC
	}
	return WorkSchedule{
		Location:   loc,
		WorkStart:  9 * time.Hour,
		WorkEnd:    18 * time.Hour,
		LunchStart: 12 * time.Hour,
		LunchEnd:   13 * time.Hour,
	}
}

// DailyHours is the length of a full working day.
func (s WorkSchedule) DailyHours() float64 {
	return (s.WorkEnd - s.WorkStart - (s.LunchEnd - s.LunchStart)).Hours()
}

// Hours returns the working time between start and end, counting Monday to
// Friday only and excluding lunch, rounded up to the next half hour.
func (s WorkSchedule) Hours(start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	start, end = start.In(loc), end.In(loc)

	var worked time.Duration
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	for !day.After(last) {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			worked += overlap(start, end, day.Add(s.WorkStart), day.Add(s.WorkEnd))
			if s.LunchEnd > s.LunchStart {
				worked -= overlap(start, end, day.Add(s.LunchStart), day.Add(s.LunchEnd))
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	if worked <= 0 {
		return 0
	}
	return math.Ceil(worked.Minutes()/30) / 2
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	lo := aStart
	if bStart.After(lo) {
		lo = bStart
	}
	hi := aEnd
	if bEnd.Before(hi) {
		hi = bEnd
	}
	if !hi.After(lo) {
		return 0
	}
	return hi.Sub(lo)
}
