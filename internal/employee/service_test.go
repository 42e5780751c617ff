package employee_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	"github.com/frahmantamala/hr-attendance/internal/core/database/dbtest"
	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
	userDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/employee"
	employeePostgres "github.com/frahmantamala/hr-attendance/internal/employee/postgres"
	"github.com/frahmantamala/hr-attendance/internal/organization"
	organizationPostgres "github.com/frahmantamala/hr-attendance/internal/organization/postgres"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type fakeBalances struct {
	calls      []int64
	shouldFail bool
}

func (f *fakeBalances) Initialize(_ context.Context, employeeID int64, _ string) (int, error) {
	if f.shouldFail {
		return 0, errors.New("balance init failed")
	}
	f.calls = append(f.calls, employeeID)
	return 2, nil
}

var _ = Describe("Employee Service", func() {
	var (
		db       *gorm.DB
		org      *organization.Service
		balances *fakeBalances
		recorder *events.Recorder
		service  *employee.Service
		ctx      context.Context
		hr       *auth.User
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		Expect(dbtest.GrantRole(db, auth.RoleEmployee)).To(Succeed())
		Expect(dbtest.GrantRole(db, auth.RoleManager, auth.PermLeavesReviewManager)).To(Succeed())
		Expect(dbtest.GrantRole(db, auth.RoleHR, auth.PermLeavesReviewHR, auth.PermEmployeesView)).To(Succeed())

		org = organization.NewService(organizationPostgres.NewOrganizationRepository(db), logger.Discard())
		balances = &fakeBalances{}
		recorder = events.NewRecorder()
		service = employee.NewService(
			employeePostgres.NewEmployeeRepository(db),
			org,
			balances,
			database.NewTransactor(db),
			recorder,
			nil,
			logger.Discard(),
		)
		ctx = context.Background()
		hr = &auth.User{ID: 900, EmployeeID: 900, Permissions: []string{auth.PermEmployeesReview, auth.PermEmployeesView}}
	})

	Describe("Review", func() {
		var pendingID int64

		BeforeEach(func() {
			var err error
			_, pendingID, err = dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "new@example.com", Status: employee.StatusPending, Gender: "female"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("approves a pending employee, sets the start date and opens balances", func() {
			e, err := service.Review(ctx, hr, pendingID, employee.ReviewDTO{Action: "approve", StartDate: "2025-03-01"})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(employee.StatusApproved))
			Expect(e.StartDate).NotTo(BeNil())
			Expect(e.StartDate.Format("2006-01-02")).To(Equal("2025-03-01"))
			Expect(*e.ReviewedBy).To(Equal(hr.EmployeeID))
			Expect(balances.calls).To(ConsistOf(pendingID))
			Expect(recorder.Types()).To(ConsistOf(events.EventTypeEmployeeReviewed))
		})

		It("records the reviewer's employee id when user and employee ids differ", func() {
			orphan := &userDatamodel.User{Email: "orphan@example.com", Name: "Orphan", Gender: "male", PasswordHash: "x", IsActive: true}
			Expect(db.Create(orphan).Error).To(Succeed())
			reviewerUserID, reviewerEmpID, err := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "reviewer@example.com", Role: auth.RoleHR})
			Expect(err).NotTo(HaveOccurred())
			Expect(reviewerUserID).NotTo(Equal(reviewerEmpID))

			reviewer := &auth.User{ID: reviewerUserID, EmployeeID: reviewerEmpID, Permissions: []string{auth.PermEmployeesReview}}
			e, err := service.Review(ctx, reviewer, pendingID, employee.ReviewDTO{Action: "approve"})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.ReviewedBy).NotTo(BeNil())
			Expect(*e.ReviewedBy).To(Equal(reviewerEmpID))

			var row employeeDatamodel.Employee
			Expect(db.First(&row, pendingID).Error).To(Succeed())
			Expect(*row.ReviewedBy).To(Equal(reviewerEmpID))
		})

		It("defaults the start date to today", func() {
			e, err := service.Review(ctx, hr, pendingID, employee.ReviewDTO{Action: "approve"})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.StartDate).NotTo(BeNil())
		})

		It("requires remarks to reject", func() {
			_, err := service.Review(ctx, hr, pendingID, employee.ReviewDTO{Action: "reject"})
			Expect(err).To(MatchError(internal.ErrRemarksRequired))
		})

		It("rejects with remarks without touching balances", func() {
			e, err := service.Review(ctx, hr, pendingID, employee.ReviewDTO{Action: "reject", Remarks: "duplicate account"})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(employee.StatusRejected))
			Expect(e.ReviewRemarks).To(Equal("duplicate account"))
			Expect(balances.calls).To(BeEmpty())
		})

		It("only reviews pending employees", func() {
			_, err := service.Review(ctx, hr, pendingID, employee.ReviewDTO{Action: "approve"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Review(ctx, hr, pendingID, employee.ReviewDTO{Action: "reject", Remarks: "late"})
			Expect(err).To(MatchError(employee.ErrEmployeeNotPending))
		})

		It("rolls back the approval when balances cannot be opened", func() {
			balances.shouldFail = true
			_, err := service.Review(ctx, hr, pendingID, employee.ReviewDTO{Action: "approve"})
			Expect(err).To(HaveOccurred())

			e, err := service.Get(ctx, hr, pendingID)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(employee.StatusPending))
			Expect(recorder.Events()).To(BeEmpty())
		})

		It("rejects unknown actions", func() {
			_, err := service.Review(ctx, hr, pendingID, employee.ReviewDTO{Action: "maybe"})
			Expect(err).To(MatchError(internal.ErrInvalidAction))
		})

		It("returns not found for unknown employees", func() {
			_, err := service.Review(ctx, hr, 4242, employee.ReviewDTO{Action: "approve"})
			Expect(err).To(MatchError(employee.ErrEmployeeNotFound))
		})
	})

	Describe("Assign", func() {
		var (
			dept, other *organization.Department
			pos         *organization.Position
			bossID      int64
			staffID     int64
		)

		BeforeEach(func() {
			var err error
			dept, err = org.CreateDepartment(ctx, organization.DepartmentDTO{Name: "Engineering"})
			Expect(err).NotTo(HaveOccurred())
			other, err = org.CreateDepartment(ctx, organization.DepartmentDTO{Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())
			pos, err = org.CreatePosition(ctx, organization.PositionDTO{DepartmentID: dept.ID, Name: "Engineer"})
			Expect(err).NotTo(HaveOccurred())

			_, bossID, err = dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "boss@example.com", Role: auth.RoleManager})
			Expect(err).NotTo(HaveOccurred())
			_, staffID, err = dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "staff@example.com", ManagerID: &bossID})
			Expect(err).NotTo(HaveOccurred())
		})

		It("assigns department, position, manager and role", func() {
			role := auth.RoleManager
			e, err := service.Assign(ctx, hr, staffID, employee.AssignmentDTO{
				DepartmentID: &dept.ID,
				PositionID:   &pos.ID,
				ManagerID:    &bossID,
				Role:         &role,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*e.DepartmentID).To(Equal(dept.ID))
			Expect(*e.PositionName).To(Equal("Engineer"))
			Expect(*e.ManagerName).To(Equal("boss@example.com"))
			Expect(e.Role).To(Equal(auth.RoleManager))
		})

		It("refuses a position from another department", func() {
			_, err := service.Assign(ctx, hr, staffID, employee.AssignmentDTO{DepartmentID: &other.ID, PositionID: &pos.ID})
			Expect(err).To(MatchError(employee.ErrPositionDepartment))
		})

		It("refuses self management", func() {
			_, err := service.Assign(ctx, hr, staffID, employee.AssignmentDTO{ManagerID: &staffID})
			Expect(err).To(MatchError(employee.ErrInvalidManager))
		})

		It("refuses reporting cycles", func() {
			_, err := service.Assign(ctx, hr, bossID, employee.AssignmentDTO{ManagerID: &staffID})
			Expect(err).To(MatchError(employee.ErrInvalidManager))
		})

		It("refuses unapproved managers", func() {
			_, pendingID, err := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "p@example.com", Status: employee.StatusPending})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Assign(ctx, hr, staffID, employee.AssignmentDTO{ManagerID: &pendingID})
			Expect(err).To(MatchError(employee.ErrInvalidManager))
		})

		It("clears the manager with zero", func() {
			zero := int64(0)
			e, err := service.Assign(ctx, hr, staffID, employee.AssignmentDTO{ManagerID: &zero})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.ManagerID).To(BeNil())
		})

		It("refuses unknown roles", func() {
			role := "wizard"
			_, err := service.Assign(ctx, hr, staffID, employee.AssignmentDTO{Role: &role})
			Expect(err).To(MatchError(employee.ErrRoleNotFound))
		})
	})

	Describe("Get", func() {
		It("lets managers see their reports but not strangers", func() {
			_, bossID, _ := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "boss@example.com"})
			_, staffID, _ := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "staff@example.com", ManagerID: &bossID})
			_, strangerID, _ := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "x@example.com"})

			_, err := service.Get(ctx, &auth.User{ID: 1, EmployeeID: bossID}, staffID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Get(ctx, &auth.User{ID: 2, EmployeeID: strangerID}, staffID)
			Expect(err).To(MatchError(employee.ErrUnauthorizedAccess))
		})
	})

	Describe("Deactivate", func() {
		It("marks the employee inactive and disables login", func() {
			userID, id, err := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "leaver@example.com"})
			Expect(err).NotTo(HaveOccurred())

			e, err := service.Deactivate(ctx, hr, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(employee.StatusInactive))

			var active bool
			Expect(db.Raw("SELECT is_active FROM users WHERE id = ?", userID).Row().Scan(&active)).To(Succeed())
			Expect(active).To(BeFalse())

			_, err = service.Deactivate(ctx, hr, id)
			Expect(err).To(MatchError(employee.ErrEmployeeNotApproved))
		})
	})

	Describe("ContactsWithPermission", func() {
		It("finds approved holders of a permission", func() {
			_, hrID, _ := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "hr@example.com", Role: auth.RoleHR})
			_, _, _ = dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "e@example.com"})

			contacts, err := service.ContactsWithPermission(ctx, auth.PermLeavesReviewHR)
			Expect(err).NotTo(HaveOccurred())
			Expect(contacts).To(HaveLen(1))
			Expect(contacts[0].EmployeeID).To(Equal(hrID))
			Expect(contacts[0].Email).To(Equal("hr@example.com"))
		})
	})
})
