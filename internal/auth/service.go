package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	GetCredentialsByID(ctx context.Context, userID int64) (*Credentials, error)
	GetUserWithPermissions(ctx context.Context, userID int64) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateRegistration(ctx context.Context, reg NewRegistration) (userID, employeeID int64, err error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// NewRegistration is a user row plus its pending employee record.
type NewRegistration struct {
	Email        string
	Name         string
	Gender       string
	PasswordHash string
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithPermissions(ctx context.Context, userID int64) (*User, error)
	Register(ctx context.Context, dto RegisterDTO) (*RegistrationResponse, error)
	ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) error
	ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGenerator
	publisher      events.Publisher
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGenerator, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		publisher:      publisher,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentialsByEmail(ctx, strings.ToLower(strings.TrimSpace(dto.Email)))
	if err != nil {
		s.logger.Warn("login failed: unknown email", "error", err)
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login failed: wrong password", "user_id", creds.UserID)
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !creds.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	s.logger.Info("user authenticated", "user_id", creds.UserID)
	return s.issueTokens(strconv.FormatInt(creds.UserID, 10), creds.Email)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}
	creds, err := s.repo.GetCredentialsByID(ctx, userID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}
	if !creds.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(claims.UserID, creds.Email)
}

func (s *Service) issueTokens(userID, email string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenGenerator.AccessTTL().Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

func (s *Service) GetUserWithPermissions(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetUserWithPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Register creates the user account and a pending employee record awaiting HR review.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*RegistrationResponse, error) {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.Name = strings.TrimSpace(dto.Name)
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to check email uniqueness", "error", err)
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	userID, employeeID, err := s.repo.CreateRegistration(ctx, NewRegistration{
		Email:        dto.Email,
		Name:         dto.Name,
		Gender:       dto.Gender,
		PasswordHash: hash,
	})
	if errors.Is(err, ErrEmailTaken) {
		s.logger.Info("registration lost a race on email", "email", dto.Email)
		return nil, ErrEmailTaken
	}
	if err != nil {
		s.logger.Error("failed to create registration", "error", err)
		return nil, err
	}

	s.logger.Info("employee registered", "user_id", userID, "employee_id", employeeID)
	s.publish(ctx, events.NewEmployeeRegisteredEvent(ctx, employeeID, userID, dto.Email, dto.Name))

	return &RegistrationResponse{
		UserID:     userID,
		EmployeeID: employeeID,
		Email:      dto.Email,
		Status:     "pending",
	}, nil
}

// ForgotPassword replaces the password with a temporary one and mails it.
// Unknown emails succeed silently so the endpoint cannot be used to probe accounts.
func (s *Service) ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	creds, err := s.repo.GetCredentialsByEmail(ctx, strings.ToLower(strings.TrimSpace(dto.Email)))
	if errors.Is(err, ErrUserNotFound) {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		s.logger.Error("failed to load credentials for password reset", "error", err)
		return err
	}
	if !creds.IsActive {
		s.logger.Info("password reset requested for inactive user", "user_id", creds.UserID)
		return nil
	}

	temp, err := GenerateTemporaryPassword(12)
	if err != nil {
		return err
	}
	hash, err := s.HashPassword(temp)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, creds.UserID, hash); err != nil {
		s.logger.Error("failed to store temporary password", "error", err, "user_id", creds.UserID)
		return err
	}

	u, err := s.repo.GetUserWithPermissions(ctx, creds.UserID)
	name := creds.Email
	if err == nil && u.Name != "" {
		name = u.Name
	}

	s.logger.Info("temporary password issued", "user_id", creds.UserID)
	s.publish(ctx, events.NewPasswordResetEvent(ctx, creds.UserID, creds.Email, name, temp))
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	creds, err := s.repo.GetCredentialsByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := s.HashPassword(dto.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", userID)
		return err
	}
	s.logger.Info("password changed", "user_id", userID)
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (j *JWTTokenGenerator) AccessTTL() time.Duration {
	return j.AccessTokenTTL
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID, email string) (string, error) {
	return j.sign(userID, email, tokenTypeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID, email string) (string, error) {
	return j.sign(userID, email, tokenTypeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(userID, email, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenTypeAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, tokenTypeRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString, tokenType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

const temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// GenerateTemporaryPassword returns a random password of length n from an unambiguous alphabet.
func GenerateTemporaryPassword(n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(temporaryPasswordAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(temporaryPasswordAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
