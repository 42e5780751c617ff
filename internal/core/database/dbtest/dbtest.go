// Package dbtest opens throwaway sqlite databases carrying the full schema
// for repository tests.
package dbtest

import (
	"time"

	attendanceDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/attendance"
	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
	organizationDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/user"
	"github.com/jmoiron/sqlx"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an in-memory database with every table migrated. A single
// connection is kept so all statements see the same memory database.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&userDatamodel.User{},
		&userDatamodel.Role{},
		&userDatamodel.Permission{},
		&userDatamodel.RolePermission{},
		&organizationDatamodel.Department{},
		&organizationDatamodel.Position{},
		&employeeDatamodel.Employee{},
		&leaveDatamodel.LeaveType{},
		&leaveDatamodel.LeaveBalance{},
		&leaveDatamodel.LeaveBalanceTransaction{},
		&leaveDatamodel.Leave{},
		&attendanceDatamodel.Punch{},
		&attendanceDatamodel.PunchCorrection{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SQLX wraps the gorm connection pool for report repositories.
func SQLX(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}

// EmployeeFixture describes a user plus employee row to insert.
type EmployeeFixture struct {
	Email        string
	Name         string
	Gender       string
	Role         string
	Status       string
	ManagerID    *int64
	DepartmentID *int64
	PositionID   *int64
}

// CreateEmployee inserts a user and its employee record and returns both ids.
func CreateEmployee(db *gorm.DB, f EmployeeFixture) (userID, employeeID int64, err error) {
	if f.Gender == "" {
		f.Gender = "male"
	}
	if f.Role == "" {
		f.Role = "employee"
	}
	if f.Status == "" {
		f.Status = "approved"
	}
	if f.Name == "" {
		f.Name = f.Email
	}
	now := time.Now()
	u := &userDatamodel.User{
		Email:        f.Email,
		Name:         f.Name,
		Gender:       f.Gender,
		PasswordHash: "x",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(u).Error; err != nil {
		return 0, 0, err
	}
	e := &employeeDatamodel.Employee{
		UserID:       u.ID,
		EmployeeCode: "T" + f.Email,
		DepartmentID: f.DepartmentID,
		PositionID:   f.PositionID,
		ManagerID:    f.ManagerID,
		Role:         f.Role,
		Status:       f.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if f.Status == "approved" {
		d := datatypes.Date(time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
		e.StartDate = &d
	}
	if err := db.Create(e).Error; err != nil {
		return 0, 0, err
	}
	return u.ID, e.ID, nil
}

// GrantRole creates role and links it to the given permission names.
func GrantRole(db *gorm.DB, role string, permissions ...string) error {
	r := &userDatamodel.Role{Name: role, CreatedAt: time.Now()}
	if err := db.Where("name = ?", role).FirstOrCreate(r).Error; err != nil {
		return err
	}
	for _, name := range permissions {
		p := &userDatamodel.Permission{Name: name, CreatedAt: time.Now()}
		if err := db.Where("name = ?", name).FirstOrCreate(p).Error; err != nil {
			return err
		}
		rp := &userDatamodel.RolePermission{RoleID: r.ID, PermissionID: p.ID, CreatedAt: time.Now()}
		if err := db.Create(rp).Error; err != nil {
			return err
		}
	}
	return nil
}
