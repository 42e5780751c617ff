package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/leave"
	"github.com/frahmantamala/hr-attendance/internal/transport"
	"github.com/frahmantamala/hr-attendance/internal/transport/rest"
	"github.com/frahmantamala/hr-attendance/internal/user"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stubAuth treats the bearer token as the user id.
type stubAuth struct {
	auth.ServiceAPI
	users map[int64]*auth.User
}

func (s *stubAuth) ValidateAccessToken(token string) (*auth.Claims, error) {
	if _, err := strconv.ParseInt(token, 10, 64); err != nil {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: token}, nil
}

func (s *stubAuth) GetUserWithPermissions(_ context.Context, id int64) (*auth.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("no such user")
	}
	return u, nil
}

type stubProfiles struct{}

func (stubProfiles) Me(_ context.Context, actor *auth.User) (*user.Profile, error) {
	return &user.Profile{Account: user.Account{ID: actor.ID}, Permissions: actor.Permissions}, nil
}

type stubLeaves struct {
	leave.ServiceAPI
}

func (stubLeaves) ListMine(context.Context, *auth.User, leave.ListFilter) ([]*leave.Leave, error) {
	return []*leave.Leave{}, nil
}

func (stubLeaves) ListAll(context.Context, leave.ListFilter) ([]*leave.Leave, error) {
	return []*leave.Leave{}, nil
}

func (stubLeaves) Location() *time.Location { return time.UTC }

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		db     *pinger
	)

	BeforeEach(func() {
		lg := logger.Discard()
		base := transport.NewBaseHandler(lg)
		db = &pinger{}

		authHandler := auth.NewHandler(&stubAuth{users: map[int64]*auth.User{
			1: {ID: 1, EmployeeID: 1, EmployeeStatus: "pending", Permissions: []string{}},
			2: {ID: 2, EmployeeID: 2, EmployeeStatus: "approved", Permissions: []string{}},
			3: {ID: 3, EmployeeID: 3, EmployeeStatus: "approved", Permissions: []string{auth.PermLeavesViewAll}},
		}})

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health: rest.NewHealthHandler(base, map[string]rest.Checker{"postgres": db}),
			Auth:   authHandler,
			User:   user.NewHandler(base, stubProfiles{}),
			Leave:  leave.NewHandler(base, stubLeaves{}),
		}, rest.RouterOptions{AllowedOrigins: "*", Logger: lg})
	})

	get := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("serves liveness and readiness", func() {
		Expect(get("/api/v1/ping", "").Code).To(Equal(http.StatusOK))
		Expect(get("/api/v1/health", "").Code).To(Equal(http.StatusOK))

		db.err = errors.New("connection refused")
		rec := get("/api/v1/health", "")
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(rec.Body.String()).To(ContainSubstring("connection refused"))
	})

	It("requires a token for protected routes", func() {
		Expect(get("/api/v1/users/me", "").Code).To(Equal(http.StatusUnauthorized))
		Expect(get("/api/v1/users/me", "not-a-number").Code).To(Equal(http.StatusUnauthorized))
	})

	It("lets pending employees see their profile but nothing else", func() {
		Expect(get("/api/v1/users/me", "1").Code).To(Equal(http.StatusOK))
		Expect(get("/api/v1/leaves/me", "1").Code).To(Equal(http.StatusForbidden))
	})

	It("enforces permissions per route", func() {
		Expect(get("/api/v1/leaves/me", "2").Code).To(Equal(http.StatusOK))
		Expect(get("/api/v1/leaves", "2").Code).To(Equal(http.StatusForbidden))
		Expect(get("/api/v1/leaves", "3").Code).To(Equal(http.StatusOK))
	})

	It("stamps every response with a trace id", func() {
		Expect(get("/api/v1/ping", "").Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})
})
