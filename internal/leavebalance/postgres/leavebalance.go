package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) leavebalance.RepositoryAPI {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]*leavebalance.Balance, error) {
	var balances []*leavebalance.Balance
	err := database.Conn(ctx, r.db).
		Table("leave_balances b").
		Select(`b.id, b.employee_id, b.leave_type_id, t.code AS leave_type_code, t.name AS leave_type_name,
			b.remaining_hours, b.updated_at`).
		Joins("JOIN leave_types t ON t.id = b.leave_type_id").
		Where("b.employee_id = ?", employeeID).
		Order("t.name ASC").
		Scan(&balances).Error
	return balances, err
}

// Get locks the balance row for the rest of the transaction on postgres.
func (r *BalanceRepository) Get(ctx context.Context, employeeID, leaveTypeID int64) (*leaveDatamodel.LeaveBalance, error) {
	var b leaveDatamodel.LeaveBalance
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND leave_type_id = ?", employeeID, leaveTypeID).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BalanceRepository) Create(ctx context.Context, b *leaveDatamodel.LeaveBalance) error {
	return database.Conn(ctx, r.db).Create(b).Error
}

func (r *BalanceRepository) Decrement(ctx context.Context, balanceID int64, hours float64) (bool, error) {
	res := database.Conn(ctx, r.db).Model(&leaveDatamodel.LeaveBalance{}).
		Where("id = ? AND remaining_hours >= ?", balanceID, hours).
		Updates(map[string]interface{}{
			"remaining_hours": gorm.Expr("remaining_hours - ?", hours),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *BalanceRepository) Increment(ctx context.Context, balanceID int64, hours float64) error {
	return database.Conn(ctx, r.db).Model(&leaveDatamodel.LeaveBalance{}).
		Where("id = ?", balanceID).
		Updates(map[string]interface{}{
			"remaining_hours": gorm.Expr("remaining_hours + ?", hours),
			"updated_at":      time.Now(),
		}).Error
}

func (r *BalanceRepository) SetRemaining(ctx context.Context, balanceID int64, hours float64) error {
	return database.Conn(ctx, r.db).Model(&leaveDatamodel.LeaveBalance{}).
		Where("id = ?", balanceID).
		Updates(map[string]interface{}{
			"remaining_hours": hours,
			"updated_at":      time.Now(),
		}).Error
}

func (r *BalanceRepository) AppendLedger(ctx context.Context, t *leaveDatamodel.LeaveBalanceTransaction) error {
	return database.Conn(ctx, r.db).Create(t).Error
}

func (r *BalanceRepository) Ledger(ctx context.Context, employeeID, leaveTypeID int64, limit int) ([]*leaveDatamodel.LeaveBalanceTransaction, error) {
	var rows []*leaveDatamodel.LeaveBalanceTransaction
	q := database.Conn(ctx, r.db).
		Where("employee_id = ? AND leave_type_id = ?", employeeID, leaveTypeID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *BalanceRepository) ApprovedEmployees(ctx context.Context) ([]leavebalance.EmployeeRef, error) {
	var refs []leavebalance.EmployeeRef
	err := database.Conn(ctx, r.db).
		Table("employees e").
		Select("e.id, u.gender").
		Joins("JOIN users u ON u.id = e.user_id").
		Where("e.status = ?", "approved").
		Order("e.id ASC").
		Scan(&refs).Error
	return refs, err
}
