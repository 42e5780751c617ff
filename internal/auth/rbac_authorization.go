package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/transport"
)

var errForbidden = internal.NewForbiddenError("Forbidden: insufficient permissions", internal.ErrCodeUnauthorizedAccess)

type RBACAuthorization struct {
	*transport.BaseHandler
	authorizer PermissionAuthorizer
}

func NewRBACAuthorization(authorizer PermissionAuthorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		authorizer:  authorizer,
	}
}

// Require allows the request when the user holds any of the given permissions.
func (ra *RBACAuthorization) Require(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.Logger.Warn("authorization check failed: user not found in context")
				ra.HandleServiceError(w, ErrInvalidToken)
				return
			}

			allowed, err := ra.authorizer.HasAnyPermission(r.Context(), user.Permissions, permissions)
			if err != nil {
				ra.Logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "user_id", user.ID)
				ra.HandleServiceError(w, internal.NewInternalError("authorization check failed", err))
				return
			}

			if !allowed {
				ra.Logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				ra.HandleServiceError(w, errForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireApprovedEmployee blocks users whose employee record is not approved yet.
func (ra *RBACAuthorization) RequireApprovedEmployee() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.HandleServiceError(w, ErrInvalidToken)
				return
			}
			if !user.IsApprovedEmployee() {
				ra.Logger.WarnContext(r.Context(), "access denied: employee not approved",
					"user_id", user.ID, "employee_status", user.EmployeeStatus)
				ra.HandleServiceError(w, internal.NewForbiddenError("employee account is not approved", internal.ErrCodeEmployeeNotApproved))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
