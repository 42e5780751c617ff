package postgres

import (
	"context"

	"github.com/frahmantamala/hr-attendance/internal/attendance"
	"github.com/jmoiron/sqlx"
)

const punchesQuery = `SELECT p.employee_id, e.employee_code, u.name AS employee_name,
	d.name AS department_name, p.work_date, p.punch_type, p.punched_at
FROM attendance_punches p
JOIN employees e ON e.id = p.employee_id
JOIN users u ON u.id = e.user_id
LEFT JOIN departments d ON d.id = e.department_id
WHERE p.work_date >= ? AND p.work_date <= ?`

// ReportRepository runs the cross-employee attendance queries over sqlx.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Punches(ctx context.Context, period attendance.Period, departmentID int64) ([]attendance.PunchRow, error) {
	query := punchesQuery
	args := []interface{}{period.From, period.To}
	if departmentID > 0 {
		query += " AND e.department_id = ?"
		args = append(args, departmentID)
	}
	query += " ORDER BY p.work_date, u.name, p.punch_type"

	var rows []attendance.PunchRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}
