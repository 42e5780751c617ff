package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/attendance"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	attendanceDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/attendance"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) GetPunch(ctx context.Context, employeeID int64, workDate time.Time, punchType string) (*attendanceDatamodel.Punch, error) {
	var p attendanceDatamodel.Punch
	err := database.Conn(ctx, r.db).
		Where("employee_id = ? AND work_date = ? AND punch_type = ?", employeeID, datatypes.Date(workDate), punchType).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *AttendanceRepository) CreatePunch(ctx context.Context, p *attendanceDatamodel.Punch) error {
	return database.Conn(ctx, r.db).Create(p).Error
}

func (r *AttendanceRepository) SavePunch(ctx context.Context, p *attendanceDatamodel.Punch) error {
	return database.Conn(ctx, r.db).Save(p).Error
}

func (r *AttendanceRepository) ListPunches(ctx context.Context, employeeID int64, from, to time.Time) ([]*attendanceDatamodel.Punch, error) {
	var punches []*attendanceDatamodel.Punch
	err := database.Conn(ctx, r.db).
		Where("employee_id = ? AND work_date >= ? AND work_date <= ?", employeeID, datatypes.Date(from), datatypes.Date(to)).
		Order("work_date ASC, punch_type ASC").
		Find(&punches).Error
	return punches, err
}

func (r *AttendanceRepository) CreateCorrection(ctx context.Context, c *attendanceDatamodel.PunchCorrection) error {
	return database.Conn(ctx, r.db).Create(c).Error
}

type correctionRow struct {
	attendanceDatamodel.PunchCorrection
	EmployeeName string `gorm:"column:employee_name"`
	ManagerID    *int64 `gorm:"column:owner_manager_id"`
}

func (row correctionRow) toDomain() *attendance.Correction {
	c := &attendance.Correction{
		ID:            row.ID,
		EmployeeID:    row.EmployeeID,
		EmployeeName:  row.EmployeeName,
		ManagerID:     row.ManagerID,
		WorkDate:      time.Time(row.WorkDate).Format("2006-01-02"),
		Type:          row.PunchType,
		PunchedAt:     row.PunchedAt,
		Reason:        row.Reason,
		Status:        row.Status,
		ReviewerID:    row.ReviewerID,
		ReviewRemarks: row.ReviewRemarks,
		ReviewedAt:    row.ReviewedAt,
		CreatedAt:     row.CreatedAt,
	}
	return c
}

func (r *AttendanceRepository) corrections(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db).
		Table("punch_corrections c").
		Select(`c.id, c.employee_id, c.work_date, c.punch_type, c.punched_at, c.reason, c.status,
			c.reviewer_id, c.review_remarks, c.reviewed_at, c.created_at, c.updated_at,
			u.name AS employee_name, e.manager_id AS owner_manager_id`).
		Joins("JOIN employees e ON e.id = c.employee_id").
		Joins("JOIN users u ON u.id = e.user_id")
}

func (r *AttendanceRepository) GetCorrection(ctx context.Context, id int64) (*attendance.Correction, error) {
	var rows []correctionRow
	if err := r.corrections(ctx).Where("c.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

func (r *AttendanceRepository) GetCorrectionForUpdate(ctx context.Context, id int64) (*attendanceDatamodel.PunchCorrection, error) {
	var c attendanceDatamodel.PunchCorrection
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *AttendanceRepository) UpdateCorrection(ctx context.Context, c *attendanceDatamodel.PunchCorrection) error {
	return database.Conn(ctx, r.db).Save(c).Error
}

func (r *AttendanceRepository) HasPendingCorrection(ctx context.Context, employeeID int64, workDate time.Time, punchType string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&attendanceDatamodel.PunchCorrection{}).
		Where("employee_id = ? AND work_date = ? AND punch_type = ? AND status = ?",
			employeeID, datatypes.Date(workDate), punchType, attendance.CorrectionPending).
		Count(&count).Error
	return count > 0, err
}

func (r *AttendanceRepository) ListCorrections(ctx context.Context, filter attendance.CorrectionFilter) ([]*attendance.Correction, error) {
	q := r.corrections(ctx).Order("c.created_at DESC, c.id DESC")
	if filter.EmployeeID > 0 {
		q = q.Where("c.employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		q = q.Where("c.status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var rows []correctionRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*attendance.Correction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
