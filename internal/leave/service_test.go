package leave_test

import (
	"context"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	"github.com/frahmantamala/hr-attendance/internal/core/database/dbtest"
	userDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/leave"
	leavePostgres "github.com/frahmantamala/hr-attendance/internal/leave/postgres"
	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
	leavebalancePostgres "github.com/frahmantamala/hr-attendance/internal/leavebalance/postgres"
	"github.com/frahmantamala/hr-attendance/internal/leavetype"
	leavetypePostgres "github.com/frahmantamala/hr-attendance/internal/leavetype/postgres"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func day(date, clock string) leave.SubmitDTO {
	return leave.SubmitDTO{StartDate: date, StartTime: clock, EndDate: date, EndTime: "18:00", Reason: "family matters"}
}

var _ = Describe("Leave Service", func() {
	var (
		db       *gorm.DB
		ctx      context.Context
		loc      *time.Location
		now      time.Time
		recorder *events.Recorder
		types    *leavetype.Service
		balances *leavebalance.Service
		service  *leave.Service

		annual    *leavetype.LeaveType
		maternity *leavetype.LeaveType

		manager  *auth.User
		staff    *auth.User
		loner    *auth.User
		outsider *auth.User
		hr       *auth.User
	)

	newEmployee := func(email, gender string, managerID *int64) *auth.User {
		userID, employeeID, err := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: email, Gender: gender, ManagerID: managerID})
		Expect(err).NotTo(HaveOccurred())
		_, err = balances.Initialize(ctx, employeeID, gender)
		Expect(err).NotTo(HaveOccurred())
		return &auth.User{
			ID:             userID,
			EmployeeID:     employeeID,
			Email:          email,
			Gender:         gender,
			EmployeeStatus: "approved",
			ManagerID:      managerID,
		}
	}

	remaining := func(u *auth.User, typeID int64) float64 {
		h, err := balances.Remaining(ctx, u.EmployeeID, typeID)
		Expect(err).NotTo(HaveOccurred())
		Expect(h).NotTo(BeNil())
		return *h
	}

	submit := func(u *auth.User, dto leave.SubmitDTO) *leave.Leave {
		if dto.LeaveTypeID == 0 {
			dto.LeaveTypeID = annual.ID
		}
		l, err := service.Submit(ctx, u, dto)
		Expect(err).NotTo(HaveOccurred())
		return l
	}

	approveByManager := func(l *leave.Leave) *leave.Leave {
		out, err := service.ManagerReview(ctx, manager, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
		Expect(err).NotTo(HaveOccurred())
		return out
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
		loc, err = time.LoadLocation("Asia/Jakarta")
		Expect(err).NotTo(HaveOccurred())
		// Saturday before the week the tests book
		now = time.Date(2025, 3, 1, 10, 0, 0, 0, loc)
		recorder = events.NewRecorder()

		transactor := database.NewTransactor(db)
		types = leavetype.NewService(leavetypePostgres.NewLeaveTypeRepository(db), logger.Discard())
		balances = leavebalance.NewService(leavebalancePostgres.NewBalanceRepository(db), types, transactor, recorder, logger.Discard())
		service = leave.NewService(
			leavePostgres.NewLeaveRepository(db),
			types,
			balances,
			transactor,
			recorder,
			leave.DefaultWorkSchedule(loc),
			logger.Discard(),
		).WithClock(func() time.Time { return now })

		annual, err = types.Create(ctx, leavetype.LeaveTypeDTO{Name: "Annual", Code: "annual", DefaultHours: 16})
		Expect(err).NotTo(HaveOccurred())
		female := auth.GenderFemale
		maternity, err = types.Create(ctx, leavetype.LeaveTypeDTO{Name: "Maternity", Code: "mat", DefaultHours: 720, GenderLimit: &female})
		Expect(err).NotTo(HaveOccurred())

		manager = newEmployee("boss@example.com", auth.GenderFemale, nil)
		manager.Permissions = []string{auth.PermLeavesReviewManager}
		staff = newEmployee("staff@example.com", auth.GenderMale, &manager.EmployeeID)
		loner = newEmployee("loner@example.com", auth.GenderMale, nil)
		outsider = newEmployee("outsider@example.com", auth.GenderMale, nil)
		hr = newEmployee("hr@example.com", auth.GenderFemale, nil)
		hr.Permissions = []string{auth.PermLeavesReviewHR, auth.PermLeavesViewAll, auth.PermLeavesCorrect}
	})

	Describe("Submit", func() {
		It("creates a pending request with computed hours", func() {
			l := submit(staff, day("2025-03-03", "09:00"))
			Expect(l.ID).To(BeNumerically(">", 0))
			Expect(l.Status).To(Equal(leave.StatusPending))
			Expect(l.ManagerStatus).To(Equal(leave.DecisionPending))
			Expect(l.HRStatus).To(Equal(leave.DecisionPending))
			Expect(l.Hours).To(Equal(8.0))
			Expect(l.EmployeeName).To(Equal("staff@example.com"))
			Expect(l.LeaveTypeName).To(Equal("Annual"))
			Expect(recorder.Types()).To(ContainElement(events.EventTypeLeaveSubmitted))
		})

		It("counts partial days and rounds up to the half hour", func() {
			dto := day("2025-03-03", "14:10")
			l := submit(staff, dto)
			Expect(l.Hours).To(Equal(4.0))
		})

		It("skips the manager stage for employees without a manager", func() {
			l := submit(loner, day("2025-03-03", "09:00"))
			Expect(l.ManagerStatus).To(Equal(leave.DecisionApproved))
			Expect(l.Status).To(Equal(leave.StatusManagerApproved))
		})

		It("does not touch the balance", func() {
			submit(staff, day("2025-03-03", "09:00"))
			Expect(remaining(staff, annual.ID)).To(Equal(16.0))
		})

		It("refuses overlapping requests", func() {
			submit(staff, day("2025-03-03", "09:00"))

			dto := day("2025-03-03", "15:00")
			dto.LeaveTypeID = annual.ID
			_, err := service.Submit(ctx, staff, dto)
			Expect(err).To(MatchError(leave.ErrLeaveOverlap))
		})

		It("ignores rejected requests when checking overlap", func() {
			l := submit(staff, day("2025-03-03", "09:00"))
			_, err := service.ManagerReview(ctx, manager, l.ID, leave.ReviewDTO{Action: leave.ActionReject, Remarks: "busy week"})
			Expect(err).NotTo(HaveOccurred())

			submit(staff, day("2025-03-03", "09:00"))
		})

		It("refuses a request the balance cannot cover", func() {
			dto := leave.SubmitDTO{
				LeaveTypeID: annual.ID,
				StartDate:   "2025-03-03", StartTime: "09:00",
				EndDate: "2025-03-05", EndTime: "18:00",
				Reason: "trip",
			}
			_, err := service.Submit(ctx, staff, dto)
			Expect(err).To(MatchError(leave.ErrInsufficientBalance))
		})

		It("refuses ranges without working hours", func() {
			dto := leave.SubmitDTO{
				LeaveTypeID: annual.ID,
				StartDate:   "2025-03-08", StartTime: "09:00",
				EndDate: "2025-03-09", EndTime: "18:00",
				Reason: "weekend",
			}
			_, err := service.Submit(ctx, staff, dto)
			Expect(err).To(MatchError(leave.ErrZeroLeaveHours))
		})

		It("refuses an end before the start", func() {
			dto := leave.SubmitDTO{
				LeaveTypeID: annual.ID,
				StartDate:   "2025-03-03", StartTime: "15:00",
				EndDate: "2025-03-03", EndTime: "10:00",
				Reason: "oops",
			}
			_, err := service.Submit(ctx, staff, dto)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("checks the leave type against the employee's gender", func() {
			dto := day("2025-03-03", "09:00")
			dto.LeaveTypeID = maternity.ID
			_, err := service.Submit(ctx, staff, dto)
			Expect(err).To(MatchError(leavetype.ErrGenderRestricted))
		})

		It("refuses employees that are not approved", func() {
			pending := *staff
			pending.EmployeeStatus = "pending"
			_, err := service.Submit(ctx, &pending, day("2025-03-03", "09:00"))
			Expect(err).To(MatchError(leave.ErrUnauthorizedAccess))
		})
	})

	Describe("ManagerReview", func() {
		var l *leave.Leave

		BeforeEach(func() {
			l = submit(staff, day("2025-03-03", "09:00"))
		})

		It("lets the direct manager approve", func() {
			out := approveByManager(l)
			Expect(out.Status).To(Equal(leave.StatusManagerApproved))
			Expect(*out.ManagerID).To(Equal(manager.EmployeeID))
			Expect(out.ManagerReviewedAt).NotTo(BeNil())
			Expect(recorder.Types()).To(ContainElement(events.EventTypeLeaveReviewed))
		})

		It("refuses anyone else", func() {
			_, err := service.ManagerReview(ctx, outsider, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).To(MatchError(leave.ErrNotLeaveReviewer))
		})

		It("lets an admin stand in", func() {
			admin := &auth.User{ID: 999, EmployeeID: outsider.EmployeeID, Permissions: []string{auth.PermAdmin}}
			out, err := service.ManagerReview(ctx, admin, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Status).To(Equal(leave.StatusManagerApproved))
		})

		It("requires remarks to reject", func() {
			_, err := service.ManagerReview(ctx, manager, l.ID, leave.ReviewDTO{Action: leave.ActionReject})
			Expect(err).To(MatchError(internal.ErrRemarksRequired))
		})

		It("rejects with remarks", func() {
			out, err := service.ManagerReview(ctx, manager, l.ID, leave.ReviewDTO{Action: leave.ActionReject, Remarks: "deadline"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Status).To(Equal(leave.StatusRejected))
			Expect(out.ManagerRemarks).To(Equal("deadline"))
		})

		It("only reviews pending requests", func() {
			approveByManager(l)
			_, err := service.ManagerReview(ctx, manager, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).To(MatchError(leave.ErrInvalidLeaveStatus))
		})

		It("reports unknown leaves", func() {
			_, err := service.ManagerReview(ctx, manager, 4242, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).To(MatchError(leave.ErrLeaveNotFound))
		})
	})

	Describe("HRReview", func() {
		It("refuses requests the manager has not approved", func() {
			l := submit(staff, day("2025-03-03", "09:00"))
			_, err := service.HRReview(ctx, hr, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).To(MatchError(leave.ErrInvalidLeaveStatus))
		})

		It("approves and debits the balance with a ledger entry", func() {
			l := approveByManager(submit(staff, day("2025-03-03", "09:00")))

			out, err := service.HRReview(ctx, hr, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Status).To(Equal(leave.StatusApproved))
			Expect(*out.HRReviewerID).To(Equal(hr.EmployeeID))
			Expect(remaining(staff, annual.ID)).To(Equal(8.0))

			entries, err := balances.Ledger(ctx, staff.EmployeeID, annual.ID, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries[0].Reason).To(Equal(leavebalance.ReasonLeaveApproved))
			Expect(entries[0].DeltaHours).To(Equal(-8.0))
			Expect(*entries[0].LeaveID).To(Equal(l.ID))
		})

		It("rejects without touching the balance", func() {
			l := approveByManager(submit(staff, day("2025-03-03", "09:00")))

			out, err := service.HRReview(ctx, hr, l.ID, leave.ReviewDTO{Action: leave.ActionReject, Remarks: "peak season"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Status).To(Equal(leave.StatusRejected))
			Expect(remaining(staff, annual.ID)).To(Equal(16.0))
		})

		It("leaves the request untouched when the balance ran out since submission", func() {
			first := approveByManager(submit(staff, day("2025-03-03", "09:00")))
			second := approveByManager(submit(staff, leave.SubmitDTO{
				StartDate: "2025-03-04", StartTime: "09:00",
				EndDate: "2025-03-05", EndTime: "18:00",
				Reason: "trip",
			}))

			_, err := service.HRReview(ctx, hr, first.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.HRReview(ctx, hr, second.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).To(MatchError(leave.ErrInsufficientBalance))

			reloaded, err := service.Get(ctx, hr, second.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.Status).To(Equal(leave.StatusManagerApproved))
			Expect(reloaded.HRStatus).To(Equal(leave.DecisionPending))
			Expect(remaining(staff, annual.ID)).To(Equal(8.0))
		})

		It("approves unmetered leave types without a balance", func() {
			unpaid, err := types.Create(ctx, leavetype.LeaveTypeDTO{Name: "Unpaid", Code: "unpaid", DefaultHours: 8})
			Expect(err).NotTo(HaveOccurred())
			dto := day("2025-03-03", "09:00")
			dto.LeaveTypeID = unpaid.ID
			l := submit(loner, dto)

			out, err := service.HRReview(ctx, hr, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Status).To(Equal(leave.StatusApproved))
		})
	})

	Describe("ledger actor", func() {
		var reviewer *auth.User

		BeforeEach(func() {
			orphan := &userDatamodel.User{Email: "orphan@example.com", Name: "Orphan", Gender: auth.GenderMale, PasswordHash: "x", IsActive: true}
			Expect(db.Create(orphan).Error).To(Succeed())
			reviewer = newEmployee("hr2@example.com", auth.GenderFemale, nil)
			reviewer.Permissions = []string{auth.PermLeavesReviewHR, auth.PermLeavesCorrect}
			Expect(reviewer.ID).NotTo(Equal(reviewer.EmployeeID))
		})

		It("records the reviewer's employee id on approval and correction", func() {
			l := submit(loner, day("2025-03-03", "09:00"))
			_, err := service.HRReview(ctx, reviewer, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Correct(ctx, reviewer, l.ID, leave.CorrectDTO{
				StartDate: "2025-03-03", StartTime: "13:00",
				EndDate: "2025-03-03", EndTime: "18:00",
				Note: "afternoon only",
			})
			Expect(err).NotTo(HaveOccurred())

			entries, err := balances.Ledger(ctx, loner.EmployeeID, annual.ID, 10)
			Expect(err).NotTo(HaveOccurred())
			var withActor int
			for _, e := range entries {
				if e.Reason == leavebalance.ReasonInitial {
					continue
				}
				Expect(e.ActorID).NotTo(BeNil())
				Expect(*e.ActorID).To(Equal(reviewer.EmployeeID))
				withActor++
			}
			Expect(withActor).To(Equal(3))
		})

		It("records the owner's employee id when an approved leave is canceled", func() {
			l := submit(loner, day("2025-03-03", "09:00"))
			_, err := service.HRReview(ctx, reviewer, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Cancel(ctx, loner, l.ID)
			Expect(err).NotTo(HaveOccurred())

			entries, err := balances.Ledger(ctx, loner.EmployeeID, annual.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries[0].Reason).To(Equal(leavebalance.ReasonLeaveCanceled))
			Expect(*entries[0].ActorID).To(Equal(loner.EmployeeID))
		})
	})

	Describe("Cancel", func() {
		It("cancels a pending request", func() {
			l := submit(staff, day("2025-03-03", "09:00"))
			out, err := service.Cancel(ctx, staff, l.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Status).To(Equal(leave.StatusCanceled))
			Expect(out.CanceledAt).NotTo(BeNil())
			Expect(recorder.Types()).To(ContainElement(events.EventTypeLeaveCanceled))
		})

		It("credits back an approved request", func() {
			l := submit(loner, day("2025-03-03", "09:00"))
			_, err := service.HRReview(ctx, hr, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining(loner, annual.ID)).To(Equal(8.0))

			_, err = service.Cancel(ctx, loner, l.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining(loner, annual.ID)).To(Equal(16.0))

			entries, err := balances.Ledger(ctx, loner.EmployeeID, annual.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries[0].Reason).To(Equal(leavebalance.ReasonLeaveCanceled))
			Expect(entries[0].DeltaHours).To(Equal(8.0))
		})

		It("only lets the owner cancel", func() {
			l := submit(staff, day("2025-03-03", "09:00"))
			_, err := service.Cancel(ctx, manager, l.ID)
			Expect(err).To(MatchError(leave.ErrUnauthorizedAccess))
		})

		It("refuses once the leave has started", func() {
			l := submit(staff, day("2025-03-03", "09:00"))
			now = time.Date(2025, 3, 3, 10, 0, 0, 0, loc)
			_, err := service.Cancel(ctx, staff, l.ID)
			Expect(err).To(MatchError(leave.ErrLeaveAlreadyStarted))
		})

		It("refuses rejected requests", func() {
			l := submit(staff, day("2025-03-03", "09:00"))
			_, err := service.ManagerReview(ctx, manager, l.ID, leave.ReviewDTO{Action: leave.ActionReject, Remarks: "no"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Cancel(ctx, staff, l.ID)
			Expect(err).To(MatchError(leave.ErrInvalidLeaveStatus))
		})
	})

	Describe("Correct", func() {
		var approved *leave.Leave

		BeforeEach(func() {
			l := submit(loner, day("2025-03-03", "09:00"))
			var err error
			approved, err = service.HRReview(ctx, hr, l.ID, leave.ReviewDTO{Action: leave.ActionApprove})
			Expect(err).NotTo(HaveOccurred())
		})

		It("credits the old hours and debits the new ones", func() {
			out, err := service.Correct(ctx, hr, approved.ID, leave.CorrectDTO{
				StartDate: "2025-03-03", StartTime: "13:00",
				EndDate: "2025-03-04", EndTime: "18:00",
				Note: "extended by one day",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Hours).To(Equal(13.0))
			Expect(out.Status).To(Equal(leave.StatusApproved))
			Expect(remaining(loner, annual.ID)).To(Equal(3.0))
			Expect(recorder.Types()).To(ContainElement(events.EventTypeLeaveCorrected))

			entries, err := balances.Ledger(ctx, loner.EmployeeID, annual.ID, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries[0].DeltaHours).To(Equal(-13.0))
			Expect(entries[1].DeltaHours).To(Equal(8.0))
			Expect(entries[0].Reason).To(Equal(leavebalance.ReasonLeaveCorrected))
		})

		It("rolls back when the new hours exceed the balance", func() {
			_, err := service.Correct(ctx, hr, approved.ID, leave.CorrectDTO{
				StartDate: "2025-03-03", StartTime: "09:00",
				EndDate: "2025-03-05", EndTime: "18:00",
				Note: "three days",
			})
			Expect(err).To(MatchError(leave.ErrInsufficientBalance))
			Expect(remaining(loner, annual.ID)).To(Equal(8.0))

			reloaded, err := service.Get(ctx, hr, approved.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.Hours).To(Equal(8.0))
		})

		It("refuses a range overlapping another leave", func() {
			other := submit(loner, day("2025-03-05", "09:00"))
			Expect(other.Status).To(Equal(leave.StatusManagerApproved))

			_, err := service.Correct(ctx, hr, approved.ID, leave.CorrectDTO{
				StartDate: "2025-03-04", StartTime: "09:00",
				EndDate: "2025-03-05", EndTime: "12:00",
				Note: "shift",
			})
			Expect(err).To(MatchError(leave.ErrLeaveOverlap))
		})

		It("only corrects approved leaves", func() {
			pending := submit(staff, day("2025-03-04", "09:00"))
			_, err := service.Correct(ctx, hr, pending.ID, leave.CorrectDTO{
				StartDate: "2025-03-04", StartTime: "13:00",
				EndDate: "2025-03-04", EndTime: "18:00",
				Note: "half day",
			})
			Expect(err).To(MatchError(leave.ErrInvalidLeaveStatus))
		})

		It("requires a note", func() {
			_, err := service.Correct(ctx, hr, approved.ID, leave.CorrectDTO{
				StartDate: "2025-03-03", StartTime: "13:00",
				EndDate: "2025-03-03", EndTime: "18:00",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("visibility", func() {
		var l *leave.Leave

		BeforeEach(func() {
			l = submit(staff, day("2025-03-03", "09:00"))
			submit(loner, day("2025-03-04", "09:00"))
		})

		It("shows a leave to its owner, the manager and HR", func() {
			for _, u := range []*auth.User{staff, manager, hr} {
				_, err := service.Get(ctx, u, l.ID)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("hides it from other employees", func() {
			_, err := service.Get(ctx, outsider, l.ID)
			Expect(err).To(MatchError(leave.ErrUnauthorizedAccess))
		})

		It("lists own, team and all leaves", func() {
			mine, err := service.ListMine(ctx, staff, leave.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))

			team, err := service.ListTeam(ctx, manager, leave.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(team).To(HaveLen(1))
			Expect(team[0].EmployeeID).To(Equal(staff.EmployeeID))

			all, err := service.ListAll(ctx, leave.ListFilter{Status: leave.StatusManagerApproved})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
			Expect(all[0].EmployeeID).To(Equal(loner.EmployeeID))
		})

		It("filters by date range", func() {
			from := time.Date(2025, 3, 4, 0, 0, 0, 0, loc)
			all, err := service.ListAll(ctx, leave.ListFilter{From: &from})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})
	})
})
