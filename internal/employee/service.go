package employee

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/organization"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Employee, error)
	GetByID(ctx context.Context, id int64) (*Employee, error)
	UpdateReview(ctx context.Context, id int64, review Review) error
	UpdateAssignment(ctx context.Context, id int64, a Assignment) error
	Deactivate(ctx context.Context, id int64) error
	RoleExists(ctx context.Context, name string) (bool, error)
	ContactsWithPermission(ctx context.Context, permission string) ([]Contact, error)
}

// OrganizationReader resolves departments and positions for assignments.
type OrganizationReader interface {
	GetDepartment(ctx context.Context, id int64) (*organization.Department, error)
	GetPosition(ctx context.Context, id int64) (*organization.Position, error)
}

// BalanceInitializer opens the leave balances of a newly approved employee.
type BalanceInitializer interface {
	Initialize(ctx context.Context, employeeID int64, gender string) (int, error)
}

// maxReportingDepth bounds the manager-chain walk used for cycle detection.
const maxReportingDepth = 64

type Service struct {
	repo       RepositoryAPI
	org        OrganizationReader
	balances   BalanceInitializer
	transactor database.Transactor
	publisher  events.Publisher
	policy     *auth.RecordPolicy
	location   *time.Location
	logger     *slog.Logger
}

func NewService(
	repo RepositoryAPI,
	org OrganizationReader,
	balances BalanceInitializer,
	transactor database.Transactor,
	publisher events.Publisher,
	location *time.Location,
	logger *slog.Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:       repo,
		org:        org,
		balances:   balances,
		transactor: transactor,
		publisher:  publisher,
		policy:     auth.NewRecordPolicy(),
		location:   location,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Employee, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, err
	}
	return list, nil
}

// Get lets employees see themselves, managers see their reports and
// holders of employees.view see anyone.
func (s *Service) Get(ctx context.Context, actor *auth.User, id int64) (*Employee, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanView(actor, e.ID, e.ManagerID, auth.PermEmployeesView) {
		s.logger.Warn("unauthorized access to employee", "employee_id", id, "user_id", actor.ID)
		return nil, ErrUnauthorizedAccess
	}
	return e, nil
}

func (s *Service) find(ctx context.Context, id int64) (*Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load employee", "error", err, "employee_id", id)
		return nil, err
	}
	if e == nil {
		return nil, ErrEmployeeNotFound
	}
	return e, nil
}

// Review approves or rejects a pending registration. Approval opens the
// employee's leave balances in the same transaction.
func (s *Service) Review(ctx context.Context, actor *auth.User, id int64, dto ReviewDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	review := Review{
		ReviewerID: actor.EmployeeID,
		Remarks:    dto.Remarks,
		ReviewedAt: now,
	}
	if dto.Action == ActionApprove {
		review.Status = StatusApproved
		today := now.In(s.location)
		start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		if dto.StartDate != "" {
			d, verr := validation.ParseDate("start_date", dto.StartDate, time.UTC)
			if verr != nil {
				return nil, verr
			}
			start = d
		}
		review.StartDate = &start
	} else {
		review.Status = StatusRejected
	}

	var initialized int
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		e, err := s.find(txCtx, id)
		if err != nil {
			return err
		}
		if !e.IsPending() {
			return ErrEmployeeNotPending
		}
		if err := s.repo.UpdateReview(txCtx, id, review); err != nil {
			return err
		}
		if review.Status == StatusApproved && s.balances != nil {
			n, err := s.balances.Initialize(txCtx, id, e.Gender)
			if err != nil {
				return err
			}
			initialized = n
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("employee review failed", "error", err, "employee_id", id, "action", dto.Action)
		return nil, err
	}

	s.logger.Info("employee reviewed",
		"employee_id", id,
		"reviewer_id", actor.EmployeeID,
		"status", review.Status,
		"balances_initialized", initialized)
	s.publish(ctx, events.NewEmployeeReviewedEvent(ctx, id, actor.EmployeeID, review.Status, review.Remarks))

	return s.find(ctx, id)
}

// Assign moves an approved employee within the organization.
func (s *Service) Assign(ctx context.Context, actor *auth.User, id int64, dto AssignmentDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsApproved() {
		return nil, ErrEmployeeNotApproved
	}

	a := Assignment{
		DepartmentID: e.DepartmentID,
		PositionID:   e.PositionID,
		ManagerID:    e.ManagerID,
		Role:         e.Role,
	}
	if dto.DepartmentID != nil {
		if _, err := s.org.GetDepartment(ctx, *dto.DepartmentID); err != nil {
			return nil, err
		}
		a.DepartmentID = dto.DepartmentID
	}
	if dto.PositionID != nil {
		a.PositionID = dto.PositionID
	}
	if a.PositionID != nil {
		pos, err := s.org.GetPosition(ctx, *a.PositionID)
		if err != nil {
			return nil, err
		}
		if a.DepartmentID == nil || pos.DepartmentID != *a.DepartmentID {
			return nil, ErrPositionDepartment
		}
	}
	if dto.ManagerID != nil {
		if *dto.ManagerID == 0 {
			a.ManagerID = nil
		} else {
			if err := s.checkManager(ctx, id, *dto.ManagerID); err != nil {
				return nil, err
			}
			a.ManagerID = dto.ManagerID
		}
	}
	if dto.Role != nil {
		exists, err := s.repo.RoleExists(ctx, *dto.Role)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrRoleNotFound
		}
		a.Role = *dto.Role
	}

	if err := s.repo.UpdateAssignment(ctx, id, a); err != nil {
		s.logger.Error("failed to update assignment", "error", err, "employee_id", id)
		return nil, err
	}
	s.logger.Info("employee assignment updated",
		"employee_id", id,
		"actor_id", actor.ID,
		"department_id", a.DepartmentID,
		"position_id", a.PositionID,
		"manager_id", a.ManagerID,
		"role", a.Role)

	return s.find(ctx, id)
}

// checkManager rejects self-management, unapproved managers and reporting cycles.
func (s *Service) checkManager(ctx context.Context, employeeID, managerID int64) error {
	if managerID == employeeID {
		return ErrInvalidManager
	}
	m, err := s.repo.GetByID(ctx, managerID)
	if err != nil {
		return err
	}
	if m == nil || !m.IsApproved() {
		return ErrInvalidManager
	}

	next := m.ManagerID
	for depth := 0; next != nil && depth < maxReportingDepth; depth++ {
		if *next == employeeID {
			s.logger.Warn("manager assignment would create a cycle", "employee_id", employeeID, "manager_id", managerID)
			return ErrInvalidManager
		}
		up, err := s.repo.GetByID(ctx, *next)
		if err != nil {
			return err
		}
		if up == nil {
			break
		}
		next = up.ManagerID
	}
	return nil
}

func (s *Service) Deactivate(ctx context.Context, actor *auth.User, id int64) (*Employee, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsApproved() {
		return nil, ErrEmployeeNotApproved
	}
	if err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.Deactivate(txCtx, id)
	}); err != nil {
		s.logger.Error("failed to deactivate employee", "error", err, "employee_id", id)
		return nil, err
	}
	s.logger.Info("employee deactivated", "employee_id", id, "actor_id", actor.ID)
	return s.find(ctx, id)
}

// Contact implements the notification directory.
func (s *Service) Contact(ctx context.Context, employeeID int64) (*Contact, error) {
	e, err := s.find(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return &Contact{
		EmployeeID: e.ID,
		UserID:     e.UserID,
		Name:       e.Name,
		Email:      e.Email,
		ManagerID:  e.ManagerID,
	}, nil
}

// ContactsWithPermission lists approved, active employees whose role grants permission.
func (s *Service) ContactsWithPermission(ctx context.Context, permission string) ([]Contact, error) {
	return s.repo.ContactsWithPermission(ctx, permission)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}
