package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
	userDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-attendance/internal/employee"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const employeeColumns = `e.id, e.user_id, e.employee_code, e.department_id, e.position_id, e.manager_id,
	e.role, e.status, e.start_date, e.reviewed_by, e.reviewed_at, e.review_remarks, e.created_at, e.updated_at,
	u.email, u.name, u.gender,
	d.name AS department_name, p.name AS position_name, mu.name AS manager_name`

const employeeJoins = `JOIN users u ON u.id = e.user_id
	LEFT JOIN departments d ON d.id = e.department_id
	LEFT JOIN positions p ON p.id = e.position_id
	LEFT JOIN employees m ON m.id = e.manager_id
	LEFT JOIN users mu ON mu.id = m.user_id`

type employeeRow struct {
	ID             int64      `gorm:"column:id"`
	UserID         int64      `gorm:"column:user_id"`
	EmployeeCode   string     `gorm:"column:employee_code"`
	DepartmentID   *int64     `gorm:"column:department_id"`
	PositionID     *int64     `gorm:"column:position_id"`
	ManagerID      *int64     `gorm:"column:manager_id"`
	Role           string     `gorm:"column:role"`
	Status         string     `gorm:"column:status"`
	StartDate      *time.Time `gorm:"column:start_date"`
	ReviewedBy     *int64     `gorm:"column:reviewed_by"`
	ReviewedAt     *time.Time `gorm:"column:reviewed_at"`
	ReviewRemarks  string     `gorm:"column:review_remarks"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	Email          string     `gorm:"column:email"`
	Name           string     `gorm:"column:name"`
	Gender         string     `gorm:"column:gender"`
	DepartmentName *string    `gorm:"column:department_name"`
	PositionName   *string    `gorm:"column:position_name"`
	ManagerName    *string    `gorm:"column:manager_name"`
}

func (r employeeRow) toDomain() *employee.Employee {
	return &employee.Employee{
		ID:             r.ID,
		UserID:         r.UserID,
		EmployeeCode:   r.EmployeeCode,
		Email:          r.Email,
		Name:           r.Name,
		Gender:         r.Gender,
		DepartmentID:   r.DepartmentID,
		DepartmentName: r.DepartmentName,
		PositionID:     r.PositionID,
		PositionName:   r.PositionName,
		ManagerID:      r.ManagerID,
		ManagerName:    r.ManagerName,
		Role:           r.Role,
		Status:         r.Status,
		StartDate:      r.StartDate,
		ReviewedBy:     r.ReviewedBy,
		ReviewedAt:     r.ReviewedAt,
		ReviewRemarks:  r.ReviewRemarks,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) base(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db).Table("employees e").Select(employeeColumns).Joins(employeeJoins)
}

func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, error) {
	q := r.base(ctx).Order("e.id ASC")
	if filter.Status != "" {
		q = q.Where("e.status = ?", filter.Status)
	}
	if filter.DepartmentID > 0 {
		q = q.Where("e.department_id = ?", filter.DepartmentID)
	}
	if filter.ManagerID > 0 {
		q = q.Where("e.manager_id = ?", filter.ManagerID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var rows []employeeRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*employee.Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// GetByID returns nil, nil when the employee does not exist.
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	var rows []employeeRow
	if err := r.base(ctx).Where("e.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

// UpdateReview only touches pending rows, so two concurrent reviews cannot both win.
func (r *EmployeeRepository) UpdateReview(ctx context.Context, id int64, review employee.Review) error {
	updates := map[string]interface{}{
		"status":         review.Status,
		"reviewed_at":    review.ReviewedAt,
		"review_remarks": review.Remarks,
		"updated_at":     time.Now(),
	}
	if review.ReviewerID != 0 {
		updates["reviewed_by"] = review.ReviewerID
	}
	if review.StartDate != nil {
		updates["start_date"] = datatypes.Date(*review.StartDate)
	}
	res := database.Conn(ctx, r.db).Model(&employeeDatamodel.Employee{}).
		Where("id = ? AND status = ?", id, employee.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return employee.ErrEmployeeNotPending
	}
	return nil
}

func (r *EmployeeRepository) UpdateAssignment(ctx context.Context, id int64, a employee.Assignment) error {
	return database.Conn(ctx, r.db).Model(&employeeDatamodel.Employee{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"department_id": a.DepartmentID,
			"position_id":   a.PositionID,
			"manager_id":    a.ManagerID,
			"role":          a.Role,
			"updated_at":    time.Now(),
		}).Error
}

// Deactivate marks the employee inactive and disables its login.
func (r *EmployeeRepository) Deactivate(ctx context.Context, id int64) error {
	conn := database.Conn(ctx, r.db)
	var e employeeDatamodel.Employee
	if err := conn.Where("id = ?", id).First(&e).Error; err != nil {
		return err
	}
	now := time.Now()
	res := conn.Model(&employeeDatamodel.Employee{}).
		Where("id = ? AND status = ?", id, employee.StatusApproved).
		Updates(map[string]interface{}{"status": employee.StatusInactive, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return employee.ErrEmployeeNotApproved
	}
	return conn.Model(&userDatamodel.User{}).
		Where("id = ?", e.UserID).
		Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error
}

func (r *EmployeeRepository) RoleExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&userDatamodel.Role{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *EmployeeRepository) ContactsWithPermission(ctx context.Context, permission string) ([]employee.Contact, error) {
	var contacts []employee.Contact
	err := database.Conn(ctx, r.db).Raw(`SELECT DISTINCT e.id AS employee_id, u.id AS user_id, u.name, u.email, e.manager_id
		FROM employees e
		JOIN users u ON u.id = e.user_id
		JOIN roles r ON r.name = e.role
		JOIN role_permissions rp ON rp.role_id = r.id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE e.status = ? AND u.is_active = ? AND p.name IN (?, ?)
		ORDER BY e.id`, employee.StatusApproved, true, permission, auth.PermAdmin).
		Scan(&contacts).Error
	return contacts, err
}
