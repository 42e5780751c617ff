package attendance

import (
	"context"
	"sort"
	"time"
)

type dayKey struct {
	employeeID int64
	workDate   time.Time
}

type employeeInfo struct {
	code, name, department string
}

// collect pairs report punches by employee and day.
func collect(rows []PunchRow) (map[dayKey][2]*time.Time, map[int64]employeeInfo) {
	days := map[dayKey][2]*time.Time{}
	people := map[int64]employeeInfo{}
	for _, r := range rows {
		k := dayKey{employeeID: r.EmployeeID, workDate: r.WorkDate.UTC()}
		pair := days[k]
		at := r.PunchedAt
		if r.PunchType == PunchIn {
			pair[0] = &at
		} else {
			pair[1] = &at
		}
		days[k] = pair

		info := employeeInfo{code: r.EmployeeCode, name: r.EmployeeName}
		if r.DepartmentName != nil {
			info.department = *r.DepartmentName
		}
		people[r.EmployeeID] = info
	}
	return days, people
}

// DailyReport lists one row per employee and day with punches in the period,
// ordered by date then employee name.
func (s *Service) DailyReport(ctx context.Context, period Period, departmentID int64) ([]DailyReportRow, error) {
	rows, err := s.reports.Punches(ctx, period, departmentID)
	if err != nil {
		s.logger.Error("daily attendance report failed", "error", err, "department_id", departmentID)
		return nil, err
	}
	days, people := collect(rows)

	out := make([]DailyReportRow, 0, len(days))
	for k, pair := range days {
		info := people[k.employeeID]
		out = append(out, DailyReportRow{
			EmployeeID:     k.employeeID,
			EmployeeCode:   info.code,
			EmployeeName:   info.name,
			DepartmentName: info.department,
			DailyRecord:    s.policy.Record(k.workDate, pair[0], pair[1]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WorkDate != out[j].WorkDate {
			return out[i].WorkDate < out[j].WorkDate
		}
		if out[i].EmployeeName != out[j].EmployeeName {
			return out[i].EmployeeName < out[j].EmployeeName
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

// MonthlySummary aggregates the period per employee. A day counts as present
// when it has a punch-in; a punch-in without punch-out is a missing punch-out.
func (s *Service) MonthlySummary(ctx context.Context, period Period, departmentID int64) ([]MonthlySummary, error) {
	rows, err := s.reports.Punches(ctx, period, departmentID)
	if err != nil {
		s.logger.Error("monthly attendance summary failed", "error", err, "department_id", departmentID)
		return nil, err
	}
	days, people := collect(rows)

	byEmployee := map[int64]*MonthlySummary{}
	for k, pair := range days {
		sum, ok := byEmployee[k.employeeID]
		if !ok {
			info := people[k.employeeID]
			sum = &MonthlySummary{
				EmployeeID:     k.employeeID,
				EmployeeCode:   info.code,
				EmployeeName:   info.name,
				DepartmentName: info.department,
			}
			byEmployee[k.employeeID] = sum
		}
		rec := s.policy.Record(k.workDate, pair[0], pair[1])
		if rec.PunchIn == nil {
			continue
		}
		sum.DaysPresent++
		if rec.Late {
			sum.LateDays++
		}
		if rec.PunchOut == nil {
			sum.MissingPunchOuts++
		}
		sum.WorkedHours += rec.WorkedHours
	}

	out := make([]MonthlySummary, 0, len(byEmployee))
	for _, sum := range byEmployee {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeName != out[j].EmployeeName {
			return out[i].EmployeeName < out[j].EmployeeName
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}
