package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/golang-jwt/jwt/v5"
)

const (
	PermEmployeesView         = "employees.view"
	PermEmployeesReview       = "employees.review"
	PermEmployeesAssign       = "employees.assign"
	PermOrganizationManage    = "organization.manage"
	PermLeaveTypesManage      = "leave_types.manage"
	PermLeavesReviewManager   = "leaves.review_manager"
	PermLeavesReviewHR        = "leaves.review_hr"
	PermLeavesViewAll         = "leaves.view_all"
	PermLeavesCorrect         = "leaves.correct"
	PermLeaveBalancesManage   = "leave_balances.manage"
	PermPunchCorrectionReview = "punch_corrections.review"
	PermAttendanceReports     = "attendance.reports"
	PermAdmin                 = "admin"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// User is the authenticated principal attached to each request.
type User struct {
	ID             int64    `json:"id"`
	EmployeeID     int64    `json:"employee_id,omitempty"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Gender         string   `json:"gender"`
	Role           string   `json:"role,omitempty"`
	EmployeeStatus string   `json:"employee_status,omitempty"`
	ManagerID      *int64   `json:"manager_id,omitempty"`
	Permissions    []string `json:"permissions"`
}

// HasPermission reports whether the user holds permission; admin holds all.
func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission || p == PermAdmin {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	for _, p := range u.Permissions {
		if p == PermAdmin {
			return true
		}
	}
	return false
}

// IsApprovedEmployee is false for users whose registration is still pending or was rejected.
func (u *User) IsApprovedEmployee() bool {
	return u.EmployeeID != 0 && u.EmployeeStatus == "approved"
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// Credentials is what login needs from storage.
type Credentials struct {
	UserID       int64
	Email        string
	PasswordHash string
	IsActive     bool
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates signed tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID string, email string) (string, error)
	GenerateRefreshToken(userID string, email string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
	AccessTTL() time.Duration
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = internal.ErrInvalidCredentials
	ErrInvalidToken       = internal.ErrInvalidToken
	ErrTokenExpired       = internal.ErrTokenExpired
	ErrUserInactive       = internal.ErrUserInactive
	ErrEmailTaken         = internal.NewConflictError("email is already registered", internal.ErrCodeEmailTaken)
	ErrUserNotFound       = internal.NewNotFoundError("user not found", internal.ErrCodeInvalidCredentials)
	ErrWrongPassword      = internal.NewValidationError("current password is incorrect", internal.ErrCodeInvalidCredentials)
)
