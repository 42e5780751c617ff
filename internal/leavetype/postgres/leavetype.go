package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/hr-attendance/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-attendance/internal/leavetype"
	"gorm.io/gorm"
)

type LeaveTypeRepository struct {
	db *gorm.DB
}

func NewLeaveTypeRepository(db *gorm.DB) leavetype.RepositoryAPI {
	return &LeaveTypeRepository{db: db}
}

func (r *LeaveTypeRepository) GetAll(ctx context.Context, activeOnly bool) ([]*leaveDatamodel.LeaveType, error) {
	var types []*leaveDatamodel.LeaveType
	q := database.Conn(ctx, r.db).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&types).Error
	return types, err
}

func (r *LeaveTypeRepository) GetByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *LeaveTypeRepository) GetByCode(ctx context.Context, code string) (*leaveDatamodel.LeaveType, error) {
	return r.first(ctx, "code = ?", code)
}

func (r *LeaveTypeRepository) first(ctx context.Context, query string, arg interface{}) (*leaveDatamodel.LeaveType, error) {
	var t leaveDatamodel.LeaveType
	err := database.Conn(ctx, r.db).Where(query, arg).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *LeaveTypeRepository) Create(ctx context.Context, t *leaveDatamodel.LeaveType) error {
	return database.Conn(ctx, r.db).Create(t).Error
}

func (r *LeaveTypeRepository) Update(ctx context.Context, t *leaveDatamodel.LeaveType) error {
	return database.Conn(ctx, r.db).Save(t).Error
}
