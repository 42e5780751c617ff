package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
	userDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	return r.credentials(ctx, `SELECT id, email, password_hash, is_active FROM users WHERE email = ?`, email)
}

func (r *Repository) GetCredentialsByID(ctx context.Context, userID int64) (*auth.Credentials, error) {
	return r.credentials(ctx, `SELECT id, email, password_hash, is_active FROM users WHERE id = ?`, userID)
}

func (r *Repository) credentials(ctx context.Context, query string, arg interface{}) (*auth.Credentials, error) {
	var c auth.Credentials
	row := database.Conn(ctx, r.db).Raw(query, arg).Row()
	if err := row.Scan(&c.UserID, &c.Email, &c.PasswordHash, &c.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetUserWithPermissions loads an active user, its employee record and the role's permissions.
// Permissions are only granted while the employee is approved.
func (r *Repository) GetUserWithPermissions(ctx context.Context, userID int64) (*auth.User, error) {
	var (
		u          auth.User
		employeeID sql.NullInt64
		role       sql.NullString
		status     sql.NullString
		managerID  sql.NullInt64
	)

	query := `SELECT u.id, u.email, u.name, u.gender, e.id, e.role, e.status, e.manager_id
	          FROM users u
	          LEFT JOIN employees e ON e.user_id = u.id
	          WHERE u.id = ? AND u.is_active = ?`

	conn := database.Conn(ctx, r.db)
	row := conn.Raw(query, userID, true).Row()
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Gender, &employeeID, &role, &status, &managerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	u.EmployeeID = employeeID.Int64
	u.Role = role.String
	u.EmployeeStatus = status.String
	if managerID.Valid {
		m := managerID.Int64
		u.ManagerID = &m
	}
	u.Permissions = []string{}

	if u.EmployeeStatus != "approved" || u.Role == "" {
		return &u, nil
	}

	permQuery := `SELECT p.name
	             FROM permissions p
	             JOIN role_permissions rp ON p.id = rp.permission_id
	             JOIN roles r ON r.id = rp.role_id
	             WHERE r.name = ?
	             ORDER BY p.name`

	rows, err := conn.Raw(permQuery, u.Role).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var permName string
		if err := rows.Scan(&permName); err != nil {
			return nil, err
		}
		u.Permissions = append(u.Permissions, permName)
	}
	return &u, rows.Err()
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&userDatamodel.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// CreateRegistration inserts the user and its pending employee in one transaction.
func (r *Repository) CreateRegistration(ctx context.Context, reg auth.NewRegistration) (int64, int64, error) {
	var userID, employeeID int64
	err := database.NewTransactor(r.db).WithinTransaction(ctx, func(txCtx context.Context) error {
		tx := database.Conn(txCtx, r.db)
		now := time.Now()
		u := &userDatamodel.User{
			Email:        reg.Email,
			Name:         reg.Name,
			Gender:       reg.Gender,
			PasswordHash: reg.PasswordHash,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return auth.ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}

		e := &employeeDatamodel.Employee{
			UserID:       u.ID,
			EmployeeCode: fmt.Sprintf("EMP%06d", u.ID),
			Role:         auth.RoleEmployee,
			Status:       "pending",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(e).Error; err != nil {
			return fmt.Errorf("create employee: %w", err)
		}
		userID, employeeID = u.ID, e.ID
		return nil
	})
	return userID, employeeID, err
}

func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res := database.Conn(ctx, r.db).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
