package leavebalance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/leavetype"
)

type RepositoryAPI interface {
	ListByEmployee(ctx context.Context, employeeID int64) ([]*Balance, error)
	Get(ctx context.Context, employeeID, leaveTypeID int64) (*leaveDatamodel.LeaveBalance, error)
	Create(ctx context.Context, b *leaveDatamodel.LeaveBalance) error
	// Decrement subtracts hours only when enough remain and reports whether it did.
	Decrement(ctx context.Context, balanceID int64, hours float64) (bool, error)
	Increment(ctx context.Context, balanceID int64, hours float64) error
	SetRemaining(ctx context.Context, balanceID int64, hours float64) error
	AppendLedger(ctx context.Context, t *leaveDatamodel.LeaveBalanceTransaction) error
	Ledger(ctx context.Context, employeeID, leaveTypeID int64, limit int) ([]*leaveDatamodel.LeaveBalanceTransaction, error)
	ApprovedEmployees(ctx context.Context) ([]EmployeeRef, error)
}

// TypeCatalog lists the leave types an employee is entitled to.
type TypeCatalog interface {
	ListAvailable(ctx context.Context, gender string) ([]*leavetype.LeaveType, error)
}

type Service struct {
	repo       RepositoryAPI
	types      TypeCatalog
	transactor database.Transactor
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, types TypeCatalog, transactor database.Transactor, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		types:      types,
		transactor: transactor,
		publisher:  publisher,
		logger:     logger,
	}
}

// Initialize opens a balance at default_hours for every active type the
// employee is entitled to and does not hold yet. It returns how many were created.
func (s *Service) Initialize(ctx context.Context, employeeID int64, gender string) (int, error) {
	types, err := s.types.ListAvailable(ctx, gender)
	if err != nil {
		return 0, err
	}

	created := 0
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, t := range types {
			existing, err := s.repo.Get(txCtx, employeeID, t.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if err := s.open(txCtx, employeeID, t, ReasonInitial, ""); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to initialize leave balances", "error", err, "employee_id", employeeID)
		return 0, err
	}
	s.logger.Info("leave balances initialized", "employee_id", employeeID, "created", created)
	return created, nil
}

func (s *Service) open(ctx context.Context, employeeID int64, t *leavetype.LeaveType, reason, note string) error {
	now := time.Now()
	b := &leaveDatamodel.LeaveBalance{
		EmployeeID:     employeeID,
		LeaveTypeID:    t.ID,
		RemainingHours: t.DefaultHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return err
	}
	return s.ledger(ctx, b, t.DefaultHours, reason, nil, nil, note)
}

// Remaining returns the hours left, or nil when the employee holds no
// balance for the type and the type is therefore not metered.
func (s *Service) Remaining(ctx context.Context, employeeID, leaveTypeID int64) (*float64, error) {
	b, err := s.repo.Get(ctx, employeeID, leaveTypeID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	h := b.RemainingHours
	return &h, nil
}

// Debit takes hours from the balance inside the caller's transaction.
// The balance never goes negative.
func (s *Service) Debit(ctx context.Context, m Movement) error {
	if m.Reason == "" {
		m.Reason = ReasonLeaveApproved
	}
	return s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		b, err := s.repo.Get(txCtx, m.EmployeeID, m.LeaveTypeID)
		if err != nil {
			return err
		}
		if b == nil {
			s.logger.Info("no balance held, debit skipped", "employee_id", m.EmployeeID, "leave_type_id", m.LeaveTypeID, "leave_id", m.LeaveID)
			return nil
		}
		ok, err := s.repo.Decrement(txCtx, b.ID, m.Hours)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn("insufficient leave balance",
				"employee_id", m.EmployeeID,
				"leave_type_id", m.LeaveTypeID,
				"requested_hours", m.Hours,
				"remaining_hours", b.RemainingHours)
			return ErrInsufficientBalance
		}
		b.RemainingHours -= m.Hours
		return s.ledger(txCtx, b, -m.Hours, m.Reason, ptr(m.LeaveID), ptr(m.ActorID), m.Note)
	})
}

// Credit returns hours to the balance.
func (s *Service) Credit(ctx context.Context, m Movement) error {
	if m.Reason == "" {
		m.Reason = ReasonLeaveCanceled
	}
	return s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		b, err := s.repo.Get(txCtx, m.EmployeeID, m.LeaveTypeID)
		if err != nil {
			return err
		}
		if b == nil {
			s.logger.Info("no balance held, credit skipped", "employee_id", m.EmployeeID, "leave_type_id", m.LeaveTypeID, "leave_id", m.LeaveID)
			return nil
		}
		if err := s.repo.Increment(txCtx, b.ID, m.Hours); err != nil {
			return err
		}
		b.RemainingHours += m.Hours
		return s.ledger(txCtx, b, m.Hours, m.Reason, ptr(m.LeaveID), ptr(m.ActorID), m.Note)
	})
}

// Adjust overrides the remaining hours of an existing balance.
func (s *Service) Adjust(ctx context.Context, actor *auth.User, employeeID, leaveTypeID int64, dto AdjustDTO) (*Balance, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var out *Balance
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		b, err := s.repo.Get(txCtx, employeeID, leaveTypeID)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrBalanceNotFound
		}
		delta := dto.RemainingHours - b.RemainingHours
		if err := s.repo.SetRemaining(txCtx, b.ID, dto.RemainingHours); err != nil {
			return err
		}
		b.RemainingHours = dto.RemainingHours
		if err := s.ledger(txCtx, b, delta, ReasonAdjustment, nil, ptr(actor.EmployeeID), dto.Note); err != nil {
			return err
		}
		out = FromDataModel(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("leave balance adjusted",
		"employee_id", employeeID,
		"leave_type_id", leaveTypeID,
		"remaining_hours", dto.RemainingHours,
		"actor_id", actor.ID)
	return out, nil
}

func (s *Service) ListForEmployee(ctx context.Context, employeeID int64) ([]*Balance, error) {
	balances, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("failed to list leave balances", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return balances, nil
}

func (s *Service) Ledger(ctx context.Context, employeeID, leaveTypeID int64, limit int) ([]LedgerEntry, error) {
	rows, err := s.repo.Ledger(ctx, employeeID, leaveTypeID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]LedgerEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, ledgerFromDataModel(row))
	}
	return out, nil
}

// ResetAnnual restores every approved employee's entitled balances to
// default_hours, opening missing ones. Each employee resets in its own
// transaction so one failure does not block the rest.
func (s *Service) ResetAnnual(ctx context.Context, year int) (int, error) {
	employees, err := s.repo.ApprovedEmployees(ctx)
	if err != nil {
		return 0, err
	}

	typesByGender := map[string][]*leavetype.LeaveType{}
	note := fmt.Sprintf("annual reset %d", year)
	reset := 0
	var failed int
	for _, e := range employees {
		types, ok := typesByGender[e.Gender]
		if !ok {
			types, err = s.types.ListAvailable(ctx, e.Gender)
			if err != nil {
				return reset, err
			}
			typesByGender[e.Gender] = types
		}

		n := 0
		err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
			for _, t := range types {
				b, err := s.repo.Get(txCtx, e.ID, t.ID)
				if err != nil {
					return err
				}
				if b == nil {
					if err := s.open(txCtx, e.ID, t, ReasonAnnualReset, note); err != nil {
						return err
					}
					n++
					continue
				}
				delta := t.DefaultHours - b.RemainingHours
				if err := s.repo.SetRemaining(txCtx, b.ID, t.DefaultHours); err != nil {
					return err
				}
				b.RemainingHours = t.DefaultHours
				if err := s.ledger(txCtx, b, delta, ReasonAnnualReset, nil, nil, note); err != nil {
					return err
				}
				n++
			}
			return nil
		})
		if err != nil {
			failed++
			s.logger.Error("annual reset failed for employee", "error", err, "employee_id", e.ID, "year", year)
			continue
		}
		reset += n
	}

	s.logger.Info("annual leave reset finished", "year", year, "balances", reset, "employees", len(employees), "failed", failed)
	s.publish(ctx, events.NewLeaveBalancesResetEvent(ctx, year, reset))
	if failed > 0 {
		return reset, fmt.Errorf("annual reset failed for %d employees", failed)
	}
	return reset, nil
}

func (s *Service) ledger(ctx context.Context, b *leaveDatamodel.LeaveBalance, delta float64, reason string, leaveID, actorID *int64, note string) error {
	return s.repo.AppendLedger(ctx, &leaveDatamodel.LeaveBalanceTransaction{
		BalanceID:    b.ID,
		EmployeeID:   b.EmployeeID,
		LeaveTypeID:  b.LeaveTypeID,
		DeltaHours:   delta,
		BalanceAfter: b.RemainingHours,
		Reason:       reason,
		LeaveID:      leaveID,
		ActorID:      actorID,
		Note:         note,
		CreatedAt:    time.Now(),
	})
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

func ptr(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
