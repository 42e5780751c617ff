package attendance_test

import (
	"bytes"
	"context"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/attendance"
	attendancePostgres "github.com/frahmantamala/hr-attendance/internal/attendance/postgres"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	"github.com/frahmantamala/hr-attendance/internal/core/database/dbtest"
	organizationDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/organization"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var _ = Describe("Attendance Service", func() {
	var (
		db       *gorm.DB
		ctx      context.Context
		loc      *time.Location
		now      time.Time
		recorder *events.Recorder
		service  *attendance.Service

		engineering int64
		alice       *auth.User
		bob         *auth.User
		reviewer    *auth.User
	)

	// clock sets "now" to the given Jakarta wall time.
	clock := func(date, hm string) {
		t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hm, loc)
		Expect(err).NotTo(HaveOccurred())
		now = t
	}

	newEmployee := func(email, name string, dept *int64) *auth.User {
		userID, employeeID, err := dbtest.CreateEmployee(db, dbtest.EmployeeFixture{Email: email, Name: name, DepartmentID: dept})
		Expect(err).NotTo(HaveOccurred())
		return &auth.User{ID: userID, EmployeeID: employeeID, Email: email, Name: name, EmployeeStatus: "approved"}
	}

	workDay := func(u *auth.User, date, in, out string) {
		clock(date, in)
		_, err := service.PunchIn(ctx, u)
		Expect(err).NotTo(HaveOccurred())
		if out != "" {
			clock(date, out)
			_, err = service.PunchOut(ctx, u)
			Expect(err).NotTo(HaveOccurred())
		}
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
		loc, err = time.LoadLocation("Asia/Jakarta")
		Expect(err).NotTo(HaveOccurred())
		recorder = events.NewRecorder()

		sqlxDB, err := dbtest.SQLX(db)
		Expect(err).NotTo(HaveOccurred())
		policy := attendance.Policy{
			Location:   loc,
			WorkStart:  9 * time.Hour,
			LunchStart: 12 * time.Hour,
			LunchEnd:   13 * time.Hour,
			Grace:      15 * time.Minute,
		}
		service = attendance.NewService(
			attendancePostgres.NewAttendanceRepository(db),
			attendancePostgres.NewReportRepository(sqlxDB),
			database.NewTransactor(db),
			recorder,
			policy,
			logger.Discard(),
		).WithClock(func() time.Time { return now })

		dept := &organizationDatamodel.Department{Name: "Engineering", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		Expect(db.Create(dept).Error).To(Succeed())
		engineering = dept.ID

		alice = newEmployee("alice@example.com", "Alice", &engineering)
		bob = newEmployee("bob@example.com", "Bob", nil)
		reviewer = newEmployee("hr@example.com", "Hana", nil)
		reviewer.Permissions = []string{auth.PermPunchCorrectionReview}

		clock("2025-03-03", "08:55")
	})

	Describe("punching", func() {
		It("allows one punch-in per day", func() {
			p, err := service.PunchIn(ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Type).To(Equal(attendance.PunchIn))
			Expect(p.WorkDate).To(Equal("2025-03-03"))
			Expect(p.Source).To(Equal(attendance.SourceClock))

			clock("2025-03-03", "10:00")
			_, err = service.PunchIn(ctx, alice)
			Expect(err).To(MatchError(attendance.ErrAlreadyPunchedIn))
		})

		It("requires a punch-in before punching out", func() {
			_, err := service.PunchOut(ctx, alice)
			Expect(err).To(MatchError(attendance.ErrNotPunchedIn))
		})

		It("allows one punch-out per day", func() {
			workDay(alice, "2025-03-03", "08:55", "18:00")
			_, err := service.PunchOut(ctx, alice)
			Expect(err).To(MatchError(attendance.ErrAlreadyPunchedOut))
		})

		It("starts a new work date at local midnight", func() {
			workDay(alice, "2025-03-03", "08:55", "18:00")
			clock("2025-03-04", "00:10")
			p, err := service.PunchIn(ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.WorkDate).To(Equal("2025-03-04"))
		})

		It("refuses employees that are not approved", func() {
			pending := *alice
			pending.EmployeeStatus = "pending"
			_, err := service.PunchIn(ctx, &pending)
			Expect(err).To(MatchError(attendance.ErrUnauthorizedAccess))
		})
	})

	Describe("Records", func() {
		It("pairs punches per day with lateness and worked hours", func() {
			workDay(alice, "2025-03-03", "09:30", "18:00")
			workDay(alice, "2025-03-04", "08:50", "")

			records, err := service.Records(ctx, alice, attendance.Period{
				From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].WorkDate).To(Equal("2025-03-03"))
			Expect(records[0].Late).To(BeTrue())
			Expect(records[0].WorkedHours).To(Equal(7.5))
			Expect(records[1].Late).To(BeFalse())
			Expect(records[1].PunchOut).To(BeNil())
			Expect(records[1].WorkedHours).To(BeZero())
		})
	})

	Describe("corrections", func() {
		request := func(u *auth.User, typ, date, hm string) (*attendance.Correction, error) {
			return service.RequestCorrection(ctx, u, attendance.CorrectionDTO{Type: typ, WorkDate: date, PunchedTime: hm, Reason: "forgot to punch"})
		}

		BeforeEach(func() {
			workDay(alice, "2025-03-03", "08:55", "")
			clock("2025-03-04", "09:00")
		})

		It("adds a missing punch-out on approval", func() {
			c, err := request(alice, attendance.PunchOut, "2025-03-03", "18:05")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(attendance.CorrectionPending))
			Expect(c.EmployeeName).To(Equal("Alice"))

			c, err = service.ReviewCorrection(ctx, reviewer, c.ID, attendance.ReviewDTO{Action: "approve"})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(attendance.CorrectionApproved))
			Expect(*c.ReviewerID).To(Equal(reviewer.EmployeeID))
			Expect(recorder.Types()).To(ConsistOf(events.EventTypePunchCorrectionReviewed))

			records, err := service.Records(ctx, alice, attendance.Period{
				From: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].PunchOut).NotTo(BeNil())
			Expect(records[0].WorkedHours).To(BeNumerically("~", 8.17, 0.01))
		})

		It("replaces an existing punch of the same type", func() {
			c, err := request(alice, attendance.PunchIn, "2025-03-03", "08:00")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.ReviewCorrection(ctx, reviewer, c.ID, attendance.ReviewDTO{Action: "approve"})
			Expect(err).NotTo(HaveOccurred())

			var count int64
			Expect(db.Table("attendance_punches").Where("employee_id = ?", alice.EmployeeID).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))

			var source string
			Expect(db.Table("attendance_punches").Select("source").Where("employee_id = ?", alice.EmployeeID).Scan(&source).Error).To(Succeed())
			Expect(source).To(Equal(attendance.SourceCorrection))
		})

		It("refuses a punch-out before the day's punch-in and keeps the request pending", func() {
			c, err := request(alice, attendance.PunchOut, "2025-03-03", "08:00")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ReviewCorrection(ctx, reviewer, c.ID, attendance.ReviewDTO{Action: "approve"})
			Expect(err).To(MatchError(attendance.ErrPunchOrder))

			c, err = service.GetCorrection(ctx, reviewer, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(attendance.CorrectionPending))
		})

		It("refuses a second pending request for the same day and type", func() {
			_, err := request(alice, attendance.PunchOut, "2025-03-03", "18:00")
			Expect(err).NotTo(HaveOccurred())
			_, err = request(alice, attendance.PunchOut, "2025-03-03", "18:30")
			Expect(err).To(MatchError(attendance.ErrDuplicateCorrection))

			_, err = request(alice, attendance.PunchIn, "2025-03-03", "08:30")
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses corrections in the future", func() {
			_, err := request(alice, attendance.PunchOut, "2025-03-04", "18:00")
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("validates the punch type", func() {
			_, err := request(alice, "lunch", "2025-03-03", "12:00")
			Expect(err).To(HaveOccurred())
		})

		It("requires remarks to reject and reviews only once", func() {
			c, err := request(alice, attendance.PunchOut, "2025-03-03", "18:00")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ReviewCorrection(ctx, reviewer, c.ID, attendance.ReviewDTO{Action: "reject"})
			Expect(err).To(MatchError(internal.ErrRemarksRequired))

			c, err = service.ReviewCorrection(ctx, reviewer, c.ID, attendance.ReviewDTO{Action: "reject", Remarks: "badge shows 17:00"})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(attendance.CorrectionRejected))

			_, err = service.ReviewCorrection(ctx, reviewer, c.ID, attendance.ReviewDTO{Action: "approve"})
			Expect(err).To(MatchError(attendance.ErrCorrectionNotPending))
		})

		It("reports unknown corrections", func() {
			_, err := service.ReviewCorrection(ctx, reviewer, 999, attendance.ReviewDTO{Action: "approve"})
			Expect(err).To(MatchError(attendance.ErrCorrectionNotFound))
		})

		It("shows a correction to its owner and reviewers only", func() {
			c, err := request(alice, attendance.PunchOut, "2025-03-03", "18:00")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetCorrection(ctx, alice, c.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.GetCorrection(ctx, reviewer, c.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.GetCorrection(ctx, bob, c.ID)
			Expect(err).To(MatchError(attendance.ErrUnauthorizedAccess))
		})

		It("lists own and pending corrections", func() {
			_, err := request(alice, attendance.PunchOut, "2025-03-03", "18:00")
			Expect(err).NotTo(HaveOccurred())

			mine, err := service.MyCorrections(ctx, alice, attendance.CorrectionFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))

			theirs, err := service.MyCorrections(ctx, bob, attendance.CorrectionFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(theirs).To(BeEmpty())

			pending, err := service.ListCorrections(ctx, attendance.CorrectionFilter{Status: attendance.CorrectionPending})
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
		})
	})

	Describe("reports", func() {
		march := attendance.Period{
			From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		}

		BeforeEach(func() {
			workDay(alice, "2025-03-03", "09:00", "18:00")
			workDay(alice, "2025-03-04", "09:40", "18:00")
			workDay(alice, "2025-03-05", "08:45", "")
			workDay(bob, "2025-03-03", "08:30", "17:30")
		})

		It("lists daily rows ordered by date and name", func() {
			rows, err := service.DailyReport(ctx, march, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(4))
			Expect(rows[0].EmployeeName).To(Equal("Alice"))
			Expect(rows[0].DepartmentName).To(Equal("Engineering"))
			Expect(rows[1].EmployeeName).To(Equal("Bob"))
			Expect(rows[1].WorkDate).To(Equal("2025-03-03"))
			Expect(rows[3].WorkDate).To(Equal("2025-03-05"))
		})

		It("filters by department", func() {
			rows, err := service.DailyReport(ctx, march, engineering)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			for _, r := range rows {
				Expect(r.EmployeeID).To(Equal(alice.EmployeeID))
			}
		})

		It("summarizes the month per employee", func() {
			sums, err := service.MonthlySummary(ctx, march, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(sums).To(HaveLen(2))

			Expect(sums[0].EmployeeName).To(Equal("Alice"))
			Expect(sums[0].DaysPresent).To(Equal(3))
			Expect(sums[0].LateDays).To(Equal(1))
			Expect(sums[0].MissingPunchOuts).To(Equal(1))
			Expect(sums[0].WorkedHours).To(BeNumerically("~", 15.33, 0.01))

			Expect(sums[1].EmployeeName).To(Equal("Bob"))
			Expect(sums[1].WorkedHours).To(Equal(8.0))
		})

		It("exports the summary as a workbook", func() {
			var buf bytes.Buffer
			Expect(service.ExportMonthlySummary(ctx, &buf, march, 0)).To(Succeed())

			f, err := excelize.OpenReader(&buf)
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			rows, err := f.GetRows("Summary")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[0][0]).To(ContainSubstring("2025-03-01"))
			Expect(rows[1]).To(ContainElement("Days Present"))
			Expect(rows[2][1]).To(Equal("Alice"))
			Expect(rows[2][3]).To(Equal("3"))
			Expect(rows[3][1]).To(Equal("Bob"))
		})
	})
})
