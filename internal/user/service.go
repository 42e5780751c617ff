package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/employee"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
}

type EmployeeReader interface {
	Get(ctx context.Context, actor *auth.User, id int64) (*employee.Employee, error)
}

type Service struct {
	repo      RepositoryAPI
	employees EmployeeReader
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, employees EmployeeReader, logger *slog.Logger) *Service {
	return &Service{repo: repo, employees: employees, logger: logger}
}

// Me builds the caller's profile. Permissions are the ones resolved for
// this request, so a pending employee sees an empty list.
func (s *Service) Me(ctx context.Context, actor *auth.User) (*Profile, error) {
	account, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		s.logger.Error("failed to load account", "error", err, "user_id", actor.ID)
		return nil, err
	}
	if account == nil {
		return nil, ErrUserNotFound
	}

	profile := &Profile{Account: *account, Permissions: actor.Permissions}
	if profile.Permissions == nil {
		profile.Permissions = []string{}
	}

	if actor.EmployeeID != 0 {
		e, err := s.employees.Get(ctx, actor, actor.EmployeeID)
		if err != nil {
			return nil, err
		}
		profile.Employee = summarize(e)
	}
	return profile, nil
}
