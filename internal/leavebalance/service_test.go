package leavebalance_test

import (
	"context"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	"github.com/frahmantamala/hr-attendance/internal/core/database/dbtest"
	userDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
	balancePostgres "github.com/frahmantamala/hr-attendance/internal/leavebalance/postgres"
	"github.com/frahmantamala/hr-attendance/internal/leavetype"
	leaveTypePostgres "github.com/frahmantamala/hr-attendance/internal/leavetype/postgres"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Leave Balance Service", func() {
	var (
		db        *gorm.DB
		types     *leavetype.Service
		service   *leavebalance.Service
		recorder  *events.Recorder
		ctx       context.Context
		annual    *leavetype.LeaveType
		maternity *leavetype.LeaveType
		empID     int64
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()

		types = leavetype.NewService(leaveTypePostgres.NewLeaveTypeRepository(db), logger.Discard())
		recorder = events.NewRecorder()
		service = leavebalance.NewService(
			balancePostgres.NewBalanceRepository(db),
			types,
			database.NewTransactor(db),
			recorder,
			logger.Discard(),
		)

		annual, err = types.Create(ctx, leavetype.LeaveTypeDTO{Name: "Annual", Code: "ANNUAL", DefaultHours: 96})
		Expect(err).NotTo(HaveOccurred())
		female := "female"
		maternity, err = types.Create(ctx, leavetype.LeaveTypeDTO{Name: "Maternity", Code: "MAT", DefaultHours: 720, GenderLimit: &female})
		Expect(err).NotTo(HaveOccurred())

		_, empID, err = dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "e@example.com", Gender: "male"})
		Expect(err).NotTo(HaveOccurred())
	})

	remaining := func(typeID int64) float64 {
		h, err := service.Remaining(ctx, empID, typeID)
		Expect(err).NotTo(HaveOccurred())
		Expect(h).NotTo(BeNil())
		return *h
	}

	Describe("Initialize", func() {
		It("opens balances only for applicable types and is idempotent", func() {
			n, err := service.Initialize(ctx, empID, "male")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
			Expect(remaining(annual.ID)).To(Equal(96.0))

			h, err := service.Remaining(ctx, empID, maternity.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(h).To(BeNil())

			n, err = service.Initialize(ctx, empID, "male")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())

			ledger, err := service.Ledger(ctx, empID, annual.ID, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(ledger).To(HaveLen(1))
			Expect(ledger[0].Reason).To(Equal(leavebalance.ReasonInitial))
		})
	})

	Describe("Debit and Credit", func() {
		BeforeEach(func() {
			_, err := service.Initialize(ctx, empID, "male")
			Expect(err).NotTo(HaveOccurred())
		})

		It("debits and writes the ledger", func() {
			err := service.Debit(ctx, leavebalance.Movement{EmployeeID: empID, LeaveTypeID: annual.ID, Hours: 16, LeaveID: 7, ActorID: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining(annual.ID)).To(Equal(80.0))

			ledger, _ := service.Ledger(ctx, empID, annual.ID, 10)
			Expect(ledger[0].DeltaHours).To(Equal(-16.0))
			Expect(ledger[0].BalanceAfter).To(Equal(80.0))
			Expect(*ledger[0].LeaveID).To(Equal(int64(7)))
			Expect(ledger[0].Reason).To(Equal(leavebalance.ReasonLeaveApproved))
		})

		It("never goes negative", func() {
			err := service.Debit(ctx, leavebalance.Movement{EmployeeID: empID, LeaveTypeID: annual.ID, Hours: 96.5})
			Expect(err).To(MatchError(leavebalance.ErrInsufficientBalance))
			Expect(remaining(annual.ID)).To(Equal(96.0))
		})

		It("allows debiting the exact remainder", func() {
			Expect(service.Debit(ctx, leavebalance.Movement{EmployeeID: empID, LeaveTypeID: annual.ID, Hours: 96})).To(Succeed())
			Expect(remaining(annual.ID)).To(BeZero())
		})

		It("credits hours back", func() {
			Expect(service.Debit(ctx, leavebalance.Movement{EmployeeID: empID, LeaveTypeID: annual.ID, Hours: 8})).To(Succeed())
			Expect(service.Credit(ctx, leavebalance.Movement{EmployeeID: empID, LeaveTypeID: annual.ID, Hours: 8})).To(Succeed())
			Expect(remaining(annual.ID)).To(Equal(96.0))

			ledger, _ := service.Ledger(ctx, empID, annual.ID, 10)
			Expect(ledger).To(HaveLen(3))
			Expect(ledger[0].Reason).To(Equal(leavebalance.ReasonLeaveCanceled))
		})

		It("skips types the employee holds no balance for", func() {
			Expect(service.Debit(ctx, leavebalance.Movement{EmployeeID: empID, LeaveTypeID: maternity.ID, Hours: 8})).To(Succeed())
		})
	})

	Describe("Adjust", func() {
		It("sets the remaining hours and records the delta", func() {
			_, _ = service.Initialize(ctx, empID, "male")
			orphan := &userDatamodel.User{Email: "orphan@example.com", Name: "Orphan", Gender: "male", PasswordHash: "x", IsActive: true}
			Expect(db.Create(orphan).Error).To(Succeed())
			hrUserID, hrEmpID, err := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "hr@example.com", Role: auth.RoleHR})
			Expect(err).NotTo(HaveOccurred())
			Expect(hrUserID).NotTo(Equal(hrEmpID))
			hr := &auth.User{ID: hrUserID, EmployeeID: hrEmpID}

			b, err := service.Adjust(ctx, hr, empID, annual.ID, leavebalance.AdjustDTO{RemainingHours: 100, Note: "carry over"})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.RemainingHours).To(Equal(100.0))

			ledger, _ := service.Ledger(ctx, empID, annual.ID, 1)
			Expect(ledger[0].DeltaHours).To(Equal(4.0))
			Expect(*ledger[0].ActorID).To(Equal(hrEmpID))
		})

		It("rejects negative values and missing balances", func() {
			hr := &auth.User{ID: 50}
			_, err := service.Adjust(ctx, hr, empID, annual.ID, leavebalance.AdjustDTO{RemainingHours: -1, Note: "x"})
			Expect(err).To(HaveOccurred())

			_, err = service.Adjust(ctx, hr, empID, annual.ID, leavebalance.AdjustDTO{RemainingHours: 1, Note: "x"})
			Expect(err).To(MatchError(leavebalance.ErrBalanceNotFound))
		})
	})

	Describe("ResetAnnual", func() {
		It("restores default hours and opens missing balances", func() {
			_, _ = service.Initialize(ctx, empID, "male")
			Expect(service.Debit(ctx, leavebalance.Movement{EmployeeID: empID, LeaveTypeID: annual.ID, Hours: 40})).To(Succeed())

			_, femaleID, err := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "f@example.com", Gender: "female"})
			Expect(err).NotTo(HaveOccurred())
			_, _, err = dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: "p@example.com", Status: "pending"})
			Expect(err).NotTo(HaveOccurred())

			n, err := service.ResetAnnual(ctx, 2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(3))
			Expect(remaining(annual.ID)).To(Equal(96.0))

			h, err := service.Remaining(ctx, femaleID, maternity.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*h).To(Equal(720.0))

			ledger, _ := service.Ledger(ctx, empID, annual.ID, 1)
			Expect(ledger[0].Reason).To(Equal(leavebalance.ReasonAnnualReset))
			Expect(ledger[0].DeltaHours).To(Equal(40.0))
			Expect(recorder.Types()).To(ContainElement(events.EventTypeLeaveBalancesReset))
		})
	})

	Describe("ListForEmployee", func() {
		It("includes leave type names", func() {
			_, _ = service.Initialize(ctx, empID, "male")
			balances, err := service.ListForEmployee(ctx, empID)
			Expect(err).NotTo(HaveOccurred())
			Expect(balances).To(HaveLen(1))
			Expect(balances[0].LeaveTypeCode).To(Equal("ANNUAL"))
			Expect(balances[0].LeaveTypeName).To(Equal("Annual"))
		})
	})
})
