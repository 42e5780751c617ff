package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-attendance/internal/attendance"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/employee"
	"github.com/frahmantamala/hr-attendance/internal/leave"
	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
	"github.com/frahmantamala/hr-attendance/internal/leavetype"
	"github.com/frahmantamala/hr-attendance/internal/organization"
	"github.com/frahmantamala/hr-attendance/internal/transport/middleware"
	"github.com/frahmantamala/hr-attendance/internal/transport/swagger"
	"github.com/frahmantamala/hr-attendance/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups every HTTP surface. Nil handlers leave their routes unregistered.
type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	User         *user.Handler
	Organization *organization.Handler
	Employee     *employee.Handler
	LeaveType    *leavetype.Handler
	LeaveBalance *leavebalance.Handler
	Leave        *leave.Handler
	Attendance   *attendance.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	// OpenAPI serves the validated document at /openapi.yml when set.
	OpenAPI http.Handler
	RBAC    *auth.RBACAuthorization
	Logger  *slog.Logger
}

func RegisterAllRoutes(router chi.Router, h Handlers, opts RouterOptions) {
	rbac := opts.RBAC
	if rbac == nil {
		rbac = auth.NewRBACAuthorization(auth.NewPermissionChecker(), opts.Logger)
	}

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.LoggingMiddleware(opts.Logger))

	if opts.OpenAPI != nil {
		router.Method(http.MethodGet, "/openapi.yml", opts.OpenAPI)
		router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.Post("/logout", h.Auth.Logout)
			ar.Post("/password/forgot", h.Auth.ForgotPassword)
			ar.With(h.Auth.AuthMiddleware).Post("/password/change", h.Auth.ChangePassword)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			// everything below needs an approved employment record
			pr.Group(func(er chi.Router) {
				er.Use(rbac.RequireApprovedEmployee())

				if h.Organization != nil {
					registerOrganization(er, h.Organization, rbac)
				}
				if h.Employee != nil {
					registerEmployees(er, h.Employee, h.LeaveBalance, rbac)
				}
				if h.LeaveType != nil {
					registerLeaveTypes(er, h.LeaveType, rbac)
				}
				if h.LeaveBalance != nil {
					er.Get("/leave-balances/me", h.LeaveBalance.GetMyBalances)
				}
				if h.Leave != nil {
					registerLeaves(er, h.Leave, rbac)
				}
				if h.Attendance != nil {
					registerAttendance(er, h.Attendance, rbac)
				}
			})
		})
	})
}

func registerOrganization(r chi.Router, h *organization.Handler, rbac *auth.RBACAuthorization) {
	manage := rbac.Require(auth.PermOrganizationManage)

	r.Route("/departments", func(dr chi.Router) {
		dr.Get("/", h.ListDepartments)
		dr.Get("/{id}", h.GetDepartment)
		dr.With(manage).Post("/", h.CreateDepartment)
		dr.With(manage).Put("/{id}", h.UpdateDepartment)
		dr.With(manage).Delete("/{id}", h.DeleteDepartment)
	})
	r.Route("/positions", func(pr chi.Router) {
		pr.Get("/", h.ListPositions)
		pr.Get("/{id}", h.GetPosition)
		pr.With(manage).Post("/", h.CreatePosition)
		pr.With(manage).Put("/{id}", h.UpdatePosition)
		pr.With(manage).Delete("/{id}", h.DeletePosition)
	})
}

func registerEmployees(r chi.Router, h *employee.Handler, balances *leavebalance.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/employees", func(er chi.Router) {
		er.With(rbac.Require(auth.PermEmployeesView)).Get("/", h.List)
		// owner and manager access is decided by the service
		er.Get("/{id}", h.Get)
		er.With(rbac.Require(auth.PermEmployeesReview)).Patch("/{id}/review", h.Review)
		er.With(rbac.Require(auth.PermEmployeesAssign)).Patch("/{id}/assignment", h.Assign)
		er.With(rbac.Require(auth.PermEmployeesAssign)).Patch("/{id}/deactivate", h.Deactivate)

		if balances != nil {
			view := rbac.Require(auth.PermLeaveBalancesManage, auth.PermEmployeesView)
			er.With(view).Get("/{id}/leave-balances", balances.GetEmployeeBalances)
			er.With(view).Get("/{id}/leave-balances/{leaveTypeID}/ledger", balances.GetLedger)
			er.With(rbac.Require(auth.PermLeaveBalancesManage)).Put("/{id}/leave-balances/{leaveTypeID}", balances.AdjustBalance)
		}
	})
}

func registerLeaveTypes(r chi.Router, h *leavetype.Handler, rbac *auth.RBACAuthorization) {
	manage := rbac.Require(auth.PermLeaveTypesManage)

	r.Route("/leave-types", func(tr chi.Router) {
		tr.Get("/", h.GetLeaveTypes)
		tr.With(manage).Post("/", h.CreateLeaveType)
		tr.With(manage).Put("/{id}", h.UpdateLeaveType)
		tr.With(manage).Patch("/{id}/activate", h.ActivateLeaveType)
		tr.With(manage).Patch("/{id}/deactivate", h.DeactivateLeaveType)
	})
}

func registerLeaves(r chi.Router, h *leave.Handler, rbac *auth.RBACAuthorization) {
	r.Route("/leaves", func(lr chi.Router) {
		lr.Post("/", h.Submit)
		lr.With(rbac.Require(auth.PermLeavesViewAll)).Get("/", h.ListAll)
		lr.Get("/me", h.ListMine)
		lr.With(rbac.Require(auth.PermLeavesReviewManager)).Get("/team", h.ListTeam)
		lr.Get("/{id}", h.Get)
		lr.With(rbac.Require(auth.PermLeavesReviewManager)).Patch("/{id}/manager-review", h.ManagerReview)
		lr.With(rbac.Require(auth.PermLeavesReviewHR)).Patch("/{id}/hr-review", h.HRReview)
		lr.Patch("/{id}/cancel", h.Cancel)
		lr.With(rbac.Require(auth.PermLeavesCorrect)).Patch("/{id}/correct", h.Correct)
	})
}

func registerAttendance(r chi.Router, h *attendance.Handler, rbac *auth.RBACAuthorization) {
	reports := rbac.Require(auth.PermAttendanceReports)
	review := rbac.Require(auth.PermPunchCorrectionReview)

	r.Route("/attendance", func(ar chi.Router) {
		ar.Post("/punch-in", h.PunchIn)
		ar.Post("/punch-out", h.PunchOut)
		ar.Get("/me", h.MyRecords)
		ar.With(reports).Get("/reports/daily", h.DailyReport)
		ar.With(reports).Get("/reports/monthly", h.MonthlySummary)
		ar.With(reports).Get("/reports/monthly.xlsx", h.ExportMonthlySummary)
	})
	r.Route("/punch-corrections", func(pr chi.Router) {
		pr.Post("/", h.RequestCorrection)
		pr.Get("/me", h.MyCorrections)
		pr.With(review).Get("/", h.ListCorrections)
		// owners may read their own request; the service checks
		pr.Get("/{id}", h.GetCorrection)
		pr.With(review).Patch("/{id}/review", h.ReviewCorrection)
	})
}
