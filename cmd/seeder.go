package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
	organizationDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed roles, permissions, leave types and the first accounts",
	Long:  `Idempotently inserts reference data plus an admin and an HR account. Existing rows are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := setup()
		if err != nil {
			return err
		}
		app, err := newApp(cfg, lg)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		accounts, err := seedReferenceData(ctx, app.DB, seedPassword, cfg.Security.BCryptCost)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			n, err := app.Balances.Initialize(ctx, a.employeeID, a.gender)
			if err != nil {
				return fmt.Errorf("initialize balances for %s: %w", a.email, err)
			}
			lg.Info("seeded account", "email", a.email, "role", a.role, "balances_opened", n)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "ChangeMe123!", "password for the seeded admin and HR accounts")
}

var rolePermissions = map[string][]string{
	auth.RoleEmployee: {},
	auth.RoleManager:  {auth.PermLeavesReviewManager},
	auth.RoleHR: {
		auth.PermEmployeesView,
		auth.PermEmployeesReview,
		auth.PermEmployeesAssign,
		auth.PermOrganizationManage,
		auth.PermLeaveTypesManage,
		auth.PermLeavesReviewHR,
		auth.PermLeavesViewAll,
		auth.PermLeavesCorrect,
		auth.PermLeaveBalancesManage,
		auth.PermPunchCorrectionReview,
		auth.PermAttendanceReports,
	},
	auth.RoleAdmin: {auth.PermAdmin},
}

var permissionDescriptions = map[string]string{
	auth.PermEmployeesView:         "View any employee record",
	auth.PermEmployeesReview:       "Approve or reject registrations",
	auth.PermEmployeesAssign:       "Assign department, position, manager and role",
	auth.PermOrganizationManage:    "Manage departments and positions",
	auth.PermLeaveTypesManage:      "Manage the leave type catalog",
	auth.PermLeavesReviewManager:   "Review subordinates' leave requests",
	auth.PermLeavesReviewHR:        "Give final approval on leave requests",
	auth.PermLeavesViewAll:         "View every leave request",
	auth.PermLeavesCorrect:         "Correct approved leave requests",
	auth.PermLeaveBalancesManage:   "Adjust leave balances",
	auth.PermPunchCorrectionReview: "Review punch correction requests",
	auth.PermAttendanceReports:     "View and export attendance reports",
	auth.PermAdmin:                 "Full administrator",
}

type seededAccount struct {
	email      string
	role       string
	gender     string
	employeeID int64
}

func seedReferenceData(ctx context.Context, db *gorm.DB, password string, cost int) ([]seededAccount, error) {
	var accounts []seededAccount
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		for name, desc := range permissionDescriptions {
			p := userDatamodel.Permission{Name: name, Description: desc, CreatedAt: now}
			if err := tx.Where("name = ?", name).FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", name, err)
			}
		}
		for role, perms := range rolePermissions {
			r := userDatamodel.Role{Name: role, CreatedAt: now}
			if err := tx.Where("name = ?", role).FirstOrCreate(&r).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", role, err)
			}
			for _, name := range perms {
				var p userDatamodel.Permission
				if err := tx.Where("name = ?", name).First(&p).Error; err != nil {
					return fmt.Errorf("lookup permission %s: %w", name, err)
				}
				rp := userDatamodel.RolePermission{RoleID: r.ID, PermissionID: p.ID, CreatedAt: now}
				if err := tx.Where("role_id = ? AND permission_id = ?", r.ID, p.ID).FirstOrCreate(&rp).Error; err != nil {
					return fmt.Errorf("grant %s to %s: %w", name, role, err)
				}
			}
		}

		female := "female"
		leaveTypes := []leaveDatamodel.LeaveType{
			{Code: "ANNUAL", Name: "Annual Leave", Description: "Paid yearly leave", DefaultHours: 96},
			{Code: "SICK", Name: "Sick Leave", Description: "Leave with a medical note", DefaultHours: 96},
			{Code: "MATERNITY", Name: "Maternity Leave", Description: "Birth and recovery", DefaultHours: 720, GenderLimit: &female},
			{Code: "UNPAID", Name: "Unpaid Leave", Description: "Leave without pay", DefaultHours: 240},
		}
		for _, lt := range leaveTypes {
			lt.IsActive, lt.CreatedAt, lt.UpdatedAt = true, now, now
			if err := tx.Where("code = ?", lt.Code).FirstOrCreate(&lt).Error; err != nil {
				return fmt.Errorf("seed leave type %s: %w", lt.Code, err)
			}
		}

		departments := map[string][]string{
			"Human Resources": {"HR Generalist", "Recruiter"},
			"Engineering":     {"Software Engineer", "Engineering Manager"},
			"Finance":         {"Accountant"},
		}
		deptIDs := map[string]int64{}
		for name, positions := range departments {
			d := organizationDatamodel.Department{Name: name, CreatedAt: now, UpdatedAt: now}
			if err := tx.Where("name = ?", name).FirstOrCreate(&d).Error; err != nil {
				return fmt.Errorf("seed department %s: %w", name, err)
			}
			deptIDs[name] = d.ID
			for _, pos := range positions {
				p := organizationDatamodel.Position{DepartmentID: d.ID, Name: pos, CreatedAt: now, UpdatedAt: now}
				if err := tx.Where("department_id = ? AND name = ?", d.ID, pos).FirstOrCreate(&p).Error; err != nil {
					return fmt.Errorf("seed position %s: %w", pos, err)
				}
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		hrDept := deptIDs["Human Resources"]
		start := datatypes.Date(time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))

		for _, a := range []struct {
			email, name, gender, role, code string
		}{
			{"admin@hr-attendance.local", "Administrator", "male", auth.RoleAdmin, "ADM-0001"},
			{"hr@hr-attendance.local", "HR Officer", "female", auth.RoleHR, "HR-0001"},
		} {
			u := userDatamodel.User{
				Email: a.email, Name: a.name, Gender: a.gender, PasswordHash: string(hash),
				IsActive: true, CreatedAt: now, UpdatedAt: now,
			}
			if err := tx.Where("email = ?", a.email).FirstOrCreate(&u).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", a.email, err)
			}
			e := employeeDatamodel.Employee{
				UserID: u.ID, EmployeeCode: a.code, DepartmentID: &hrDept, Role: a.role,
				Status: "approved", StartDate: &start, CreatedAt: now, UpdatedAt: now,
			}
			if err := tx.Where("user_id = ?", u.ID).FirstOrCreate(&e).Error; err != nil {
				return fmt.Errorf("seed employee %s: %w", a.email, err)
			}
			accounts = append(accounts, seededAccount{email: a.email, role: a.role, gender: u.Gender, employeeID: e.ID})
		}
		return nil
	})
	return accounts, err
}
