package leave_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/leave"
	"github.com/frahmantamala/hr-attendance/internal/transport"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockLeaveService struct {
	lastFilter leave.ListFilter
	lastReview leave.ReviewDTO
	stage      string
	failError  error
}

func (m *mockLeaveService) Submit(_ context.Context, actor *auth.User, dto leave.SubmitDTO) (*leave.Leave, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	return &leave.Leave{ID: 1, EmployeeID: actor.EmployeeID, LeaveTypeID: dto.LeaveTypeID, Status: leave.StatusPending}, nil
}

func (m *mockLeaveService) ManagerReview(_ context.Context, _ *auth.User, id int64, dto leave.ReviewDTO) (*leave.Leave, error) {
	m.stage, m.lastReview = leave.StageManager, dto
	return &leave.Leave{ID: id, Status: leave.StatusManagerApproved}, m.failError
}

func (m *mockLeaveService) HRReview(_ context.Context, _ *auth.User, id int64, dto leave.ReviewDTO) (*leave.Leave, error) {
	m.stage, m.lastReview = leave.StageHR, dto
	return &leave.Leave{ID: id, Status: leave.StatusApproved}, m.failError
}

func (m *mockLeaveService) Cancel(_ context.Context, _ *auth.User, id int64) (*leave.Leave, error) {
	return &leave.Leave{ID: id, Status: leave.StatusCanceled}, m.failError
}

func (m *mockLeaveService) Correct(_ context.Context, _ *auth.User, id int64, _ leave.CorrectDTO) (*leave.Leave, error) {
	return &leave.Leave{ID: id, Status: leave.StatusApproved}, m.failError
}

func (m *mockLeaveService) Get(_ context.Context, _ *auth.User, id int64) (*leave.Leave, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	return &leave.Leave{ID: id}, nil
}

func (m *mockLeaveService) ListMine(_ context.Context, _ *auth.User, f leave.ListFilter) ([]*leave.Leave, error) {
	m.lastFilter = f
	return []*leave.Leave{{ID: 1}}, nil
}

func (m *mockLeaveService) ListTeam(_ context.Context, _ *auth.User, f leave.ListFilter) ([]*leave.Leave, error) {
	m.lastFilter = f
	return []*leave.Leave{}, nil
}

func (m *mockLeaveService) ListAll(_ context.Context, f leave.ListFilter) ([]*leave.Leave, error) {
	m.lastFilter = f
	return []*leave.Leave{}, nil
}

func (m *mockLeaveService) Location() *time.Location {
	return time.UTC
}

var _ = Describe("Leave Handler", func() {
	var (
		svc    *mockLeaveService
		router chi.Router
		user   *auth.User
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		if user != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), user))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		svc = &mockLeaveService{}
		user = &auth.User{ID: 3, EmployeeID: 7, EmployeeStatus: "approved"}
		handler := leave.NewHandler(&transport.BaseHandler{Logger: logger.Discard()}, svc)

		router = chi.NewRouter()
		router.Post("/leaves", handler.Submit)
		router.Get("/leaves", handler.ListAll)
		router.Get("/leaves/me", handler.ListMine)
		router.Get("/leaves/{id}", handler.Get)
		router.Patch("/leaves/{id}/manager-review", handler.ManagerReview)
		router.Patch("/leaves/{id}/hr-review", handler.HRReview)
		router.Patch("/leaves/{id}/cancel", handler.Cancel)
	})

	It("submits a leave for the current user", func() {
		w := do(http.MethodPost, "/leaves", leave.SubmitDTO{LeaveTypeID: 2, StartDate: "2025-03-03", StartTime: "09:00", EndDate: "2025-03-03", EndTime: "18:00", Reason: "x"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var l leave.Leave
		Expect(json.NewDecoder(w.Body).Decode(&l)).To(Succeed())
		Expect(l.EmployeeID).To(Equal(int64(7)))
		Expect(l.LeaveTypeID).To(Equal(int64(2)))
	})

	It("rejects unknown body fields", func() {
		w := do(http.MethodPost, "/leaves", map[string]interface{}{"leave_type_id": 2, "hours": 100})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("requires an authenticated user", func() {
		user = nil
		w := do(http.MethodGet, "/leaves/me", nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("maps service errors to their status", func() {
		svc.failError = leave.ErrLeaveOverlap
		w := do(http.MethodPost, "/leaves", leave.SubmitDTO{LeaveTypeID: 2})
		Expect(w.Code).To(Equal(http.StatusConflict))

		svc.failError = leave.ErrLeaveNotFound
		w = do(http.MethodGet, "/leaves/9", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("rejects a malformed leave id", func() {
		w := do(http.MethodGet, "/leaves/abc", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("routes each review stage to its service method", func() {
		w := do(http.MethodPatch, "/leaves/5/manager-review", leave.ReviewDTO{Action: "approve"})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.stage).To(Equal(leave.StageManager))

		w = do(http.MethodPatch, "/leaves/5/hr-review", leave.ReviewDTO{Action: "reject", Remarks: "no"})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.stage).To(Equal(leave.StageHR))
		Expect(svc.lastReview.Remarks).To(Equal("no"))
	})

	It("parses list filters", func() {
		w := do(http.MethodGet, "/leaves?status=approved&from=2025-03-01&to=2025-03-31&limit=5", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.lastFilter.Status).To(Equal(leave.StatusApproved))
		Expect(svc.lastFilter.Limit).To(Equal(5))
		Expect(svc.lastFilter.From.Format("2006-01-02")).To(Equal("2025-03-01"))
		Expect(svc.lastFilter.To.Format("2006-01-02")).To(Equal("2025-04-01"))
	})

	It("rejects unknown status filters and bad dates", func() {
		Expect(do(http.MethodGet, "/leaves?status=maybe", nil).Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, "/leaves/me?from=03/01/2025", nil).Code).To(Equal(http.StatusBadRequest))
	})

	It("cancels", func() {
		w := do(http.MethodPatch, "/leaves/4/cancel", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
	})
})
