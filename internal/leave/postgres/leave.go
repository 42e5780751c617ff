package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-attendance/internal/leave"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const leaveColumns = `l.id, l.employee_id, l.leave_type_id, l.start_at, l.end_at, l.hours, l.reason,
	l.attachment_name, l.manager_status, l.manager_id, l.manager_remarks, l.manager_reviewed_at,
	l.hr_status, l.hr_reviewer_id, l.hr_remarks, l.hr_reviewed_at, l.status, l.canceled_at,
	l.created_at, l.updated_at,
	u.name AS employee_name, u.gender AS owner_gender, e.manager_id AS owner_manager_id,
	t.name AS leave_type_name`

const leaveJoins = `JOIN employees e ON e.id = l.employee_id
	JOIN users u ON u.id = e.user_id
	JOIN leave_types t ON t.id = l.leave_type_id`

type leaveRow struct {
	leaveDatamodel.Leave
	EmployeeName   string `gorm:"column:employee_name"`
	OwnerGender    string `gorm:"column:owner_gender"`
	OwnerManagerID *int64 `gorm:"column:owner_manager_id"`
	LeaveTypeName  string `gorm:"column:leave_type_name"`
}

func (r leaveRow) toDomain() *leave.Leave {
	l := leave.FromDataModel(&r.Leave)
	l.EmployeeName = r.EmployeeName
	l.OwnerGender = r.OwnerGender
	l.OwnerManagerID = r.OwnerManagerID
	l.LeaveTypeName = r.LeaveTypeName
	return l
}

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) base(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db).Table("leaves l").Select(leaveColumns).Joins(leaveJoins)
}

func (r *LeaveRepository) Create(ctx context.Context, l *leaveDatamodel.Leave) error {
	return database.Conn(ctx, r.db).Create(l).Error
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leave.Leave, error) {
	var rows []leaveRow
	if err := r.base(ctx).Where("l.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

func (r *LeaveRepository) GetForUpdate(ctx context.Context, id int64) (*leaveDatamodel.Leave, error) {
	var l leaveDatamodel.Leave
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *LeaveRepository) Update(ctx context.Context, l *leaveDatamodel.Leave) error {
	return database.Conn(ctx, r.db).Save(l).Error
}

func (r *LeaveRepository) Overlaps(ctx context.Context, employeeID int64, start, end time.Time, excludeID int64) (bool, error) {
	q := database.Conn(ctx, r.db).Model(&leaveDatamodel.Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status NOT IN ?", []string{leave.StatusRejected, leave.StatusCanceled}).
		Where("start_at < ? AND end_at > ?", end.UTC(), start.UTC())
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *LeaveRepository) List(ctx context.Context, filter leave.ListFilter) ([]*leave.Leave, error) {
	q := r.base(ctx).Order("l.start_at DESC, l.id DESC")
	if filter.EmployeeID > 0 {
		q = q.Where("l.employee_id = ?", filter.EmployeeID)
	}
	if filter.ManagerID > 0 {
		q = q.Where("e.manager_id = ?", filter.ManagerID)
	}
	if filter.Status != "" {
		q = q.Where("l.status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("l.end_at > ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("l.start_at < ?", filter.To.UTC())
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var rows []leaveRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*leave.Leave, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
