package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/leavebalance"
	"github.com/frahmantamala/hr-attendance/internal/leavetype"
)

type RepositoryAPI interface {
	Create(ctx context.Context, l *leaveDatamodel.Leave) error
	// GetByID returns the joined view, nil when missing.
	GetByID(ctx context.Context, id int64) (*Leave, error)
	// GetForUpdate locks the row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id int64) (*leaveDatamodel.Leave, error)
	Update(ctx context.Context, l *leaveDatamodel.Leave) error
	// Overlaps reports whether the employee holds a blocking leave intersecting [start, end).
	Overlaps(ctx context.Context, employeeID int64, start, end time.Time, excludeID int64) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*Leave, error)
}

type TypeCatalog interface {
	RequireUsable(ctx context.Context, id int64, gender string) (*leavetype.LeaveType, error)
}

type BalanceLedger interface {
	Remaining(ctx context.Context, employeeID, leaveTypeID int64) (*float64, error)
	Debit(ctx context.Context, m leavebalance.Movement) error
	Credit(ctx context.Context, m leavebalance.Movement) error
}

type Service struct {
	repo       RepositoryAPI
	types      TypeCatalog
	balances   BalanceLedger
	transactor database.Transactor
	publisher  events.Publisher
	schedule   WorkSchedule
	policy     *auth.RecordPolicy
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	repo RepositoryAPI,
	types TypeCatalog,
	balances BalanceLedger,
	transactor database.Transactor,
	publisher events.Publisher,
	schedule WorkSchedule,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		types:      types,
		balances:   balances,
		transactor: transactor,
		publisher:  publisher,
		schedule:   schedule,
		policy:     auth.NewRecordPolicy(),
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Tests use it to pin "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Submit(ctx context.Context, actor *auth.User, dto SubmitDTO) (*Leave, error) {
	if !actor.IsApprovedEmployee() {
		return nil, ErrUnauthorizedAccess
	}
	start, end, verr := dto.Range(s.schedule.Location)
	if verr != nil {
		return nil, verr
	}
	if _, err := s.types.RequireUsable(ctx, dto.LeaveTypeID, actor.Gender); err != nil {
		return nil, err
	}

	hours := s.schedule.Hours(start, end)
	if hours <= 0 {
		return nil, ErrZeroLeaveHours
	}

	now := s.now()
	l := &Leave{
		EmployeeID:     actor.EmployeeID,
		LeaveTypeID:    dto.LeaveTypeID,
		StartAt:        start,
		EndAt:          end,
		Hours:          hours,
		Reason:         dto.Reason,
		AttachmentName: dto.AttachmentName,
		ManagerStatus:  DecisionPending,
		HRStatus:       DecisionPending,
		CreatedAt:      now,
	}
	if actor.ManagerID == nil {
		// no one to review at the first stage
		l.ManagerStatus = DecisionApproved
		l.ManagerReviewedAt = &now
	}
	l.refreshStatus()

	var row *leaveDatamodel.Leave
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		overlap, err := s.repo.Overlaps(txCtx, actor.EmployeeID, start, end, 0)
		if err != nil {
			return err
		}
		if overlap {
			return ErrLeaveOverlap
		}
		remaining, err := s.balances.Remaining(txCtx, actor.EmployeeID, dto.LeaveTypeID)
		if err != nil {
			return err
		}
		if remaining != nil && *remaining < hours {
			return ErrInsufficientBalance
		}
		row = ToDataModel(l)
		return s.repo.Create(txCtx, row)
	})
	if err != nil {
		s.logger.Warn("leave submission refused", "error", err, "employee_id", actor.EmployeeID, "leave_type_id", dto.LeaveTypeID)
		return nil, err
	}

	s.logger.Info("leave submitted",
		"leave_id", row.ID,
		"employee_id", row.EmployeeID,
		"hours", row.Hours,
		"status", row.Status)
	s.publish(ctx, events.NewLeaveSubmittedEvent(ctx, row.ID, row.EmployeeID, actor.ManagerID, row.Status, row.Hours, row.StartAt, row.EndAt))
	return s.load(ctx, row.ID)
}

// ManagerReview records the first-stage decision. Only the employee's direct
// manager, or an admin, may decide.
func (s *Service) ManagerReview(ctx context.Context, actor *auth.User, id int64, dto ReviewDTO) (*Leave, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.IsManagerOf(actor, current.OwnerManagerID) && !actor.IsAdmin() {
		return nil, ErrNotLeaveReviewer
	}

	var updated *leaveDatamodel.Leave
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		row, err := s.lock(txCtx, id)
		if err != nil {
			return err
		}
		l := FromDataModel(row)
		if !l.CanManagerReview() {
			return ErrInvalidLeaveStatus
		}
		l.ManagerDecide(actor.EmployeeID, dto.decision(), dto.Remarks, s.now())
		updated = ToDataModel(l)
		return s.repo.Update(txCtx, updated)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave reviewed by manager",
		"leave_id", id,
		"employee_id", updated.EmployeeID,
		"reviewer_id", actor.EmployeeID,
		"decision", updated.ManagerStatus,
		"status", updated.Status)
	s.publish(ctx, events.NewLeaveReviewedEvent(ctx, id, updated.EmployeeID, actor.EmployeeID, StageManager, updated.ManagerStatus, updated.Status, dto.Remarks))
	return s.load(ctx, id)
}

// HRReview records the final decision. Approval debits the balance in the
// same transaction, so a short balance leaves the request untouched.
func (s *Service) HRReview(ctx context.Context, actor *auth.User, id int64, dto ReviewDTO) (*Leave, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *leaveDatamodel.Leave
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		row, err := s.lock(txCtx, id)
		if err != nil {
			return err
		}
		l := FromDataModel(row)
		if !l.CanHRReview() {
			return ErrInvalidLeaveStatus
		}
		l.HRDecide(actor.EmployeeID, dto.decision(), dto.Remarks, s.now())
		updated = ToDataModel(l)
		if err := s.repo.Update(txCtx, updated); err != nil {
			return err
		}
		if l.Status != StatusApproved {
			return nil
		}
		return s.balances.Debit(txCtx, leavebalance.Movement{
			EmployeeID:  l.EmployeeID,
			LeaveTypeID: l.LeaveTypeID,
			Hours:       l.Hours,
			LeaveID:     l.ID,
			ActorID:     actor.EmployeeID,
			Reason:      leavebalance.ReasonLeaveApproved,
		})
	})
	if err != nil {
		s.logger.Warn("hr review failed", "error", err, "leave_id", id, "reviewer_id", actor.EmployeeID)
		return nil, err
	}

	s.logger.Info("leave reviewed by hr",
		"leave_id", id,
		"employee_id", updated.EmployeeID,
		"reviewer_id", actor.EmployeeID,
		"decision", updated.HRStatus,
		"status", updated.Status)
	s.publish(ctx, events.NewLeaveReviewedEvent(ctx, id, updated.EmployeeID, actor.EmployeeID, StageHR, updated.HRStatus, updated.Status, dto.Remarks))
	return s.load(ctx, id)
}

// Cancel withdraws the owner's leave before it starts. Approved leaves give
// their hours back.
func (s *Service) Cancel(ctx context.Context, actor *auth.User, id int64) (*Leave, error) {
	var (
		updated  *leaveDatamodel.Leave
		credited float64
	)
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		row, err := s.lock(txCtx, id)
		if err != nil {
			return err
		}
		l := FromDataModel(row)
		if !s.policy.IsOwner(actor, l.EmployeeID) {
			return ErrUnauthorizedAccess
		}
		now := s.now()
		if !l.Blocks() {
			return ErrInvalidLeaveStatus
		}
		if !l.CanBeCanceled(now) {
			return ErrLeaveAlreadyStarted
		}
		wasApproved := l.Status == StatusApproved
		l.Cancel(now)
		updated = ToDataModel(l)
		if err := s.repo.Update(txCtx, updated); err != nil {
			return err
		}
		if !wasApproved {
			return nil
		}
		credited = l.Hours
		return s.balances.Credit(txCtx, leavebalance.Movement{
			EmployeeID:  l.EmployeeID,
			LeaveTypeID: l.LeaveTypeID,
			Hours:       l.Hours,
			LeaveID:     l.ID,
			ActorID:     actor.EmployeeID,
			Reason:      leavebalance.ReasonLeaveCanceled,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave canceled", "leave_id", id, "employee_id", updated.EmployeeID, "credited_hours", credited)
	s.publish(ctx, events.NewLeaveCanceledEvent(ctx, id, updated.EmployeeID, credited))
	return s.load(ctx, id)
}

// Correct rewrites an approved leave. The old hours are credited and the new
// hours debited in one transaction.
func (s *Service) Correct(ctx context.Context, actor *auth.User, id int64, dto CorrectDTO) (*Leave, error) {
	start, end, verr := dto.Range(s.schedule.Location)
	if verr != nil {
		return nil, verr
	}
	hours := s.schedule.Hours(start, end)
	if hours <= 0 {
		return nil, ErrZeroLeaveHours
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	typeID := current.LeaveTypeID
	if dto.LeaveTypeID != 0 {
		typeID = dto.LeaveTypeID
	}
	if typeID != current.LeaveTypeID {
		if _, err := s.types.RequireUsable(ctx, typeID, current.OwnerGender); err != nil {
			return nil, err
		}
	}

	var oldHours float64
	var updated *leaveDatamodel.Leave
	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		row, err := s.lock(txCtx, id)
		if err != nil {
			return err
		}
		if row.Status != StatusApproved {
			return ErrInvalidLeaveStatus
		}
		overlap, err := s.repo.Overlaps(txCtx, row.EmployeeID, start, end, row.ID)
		if err != nil {
			return err
		}
		if overlap {
			return ErrLeaveOverlap
		}

		oldHours = row.Hours
		if err := s.balances.Credit(txCtx, leavebalance.Movement{
			EmployeeID:  row.EmployeeID,
			LeaveTypeID: row.LeaveTypeID,
			Hours:       row.Hours,
			LeaveID:     row.ID,
			ActorID:     actor.EmployeeID,
			Reason:      leavebalance.ReasonLeaveCorrected,
			Note:        dto.Note,
		}); err != nil {
			return err
		}

		row.LeaveTypeID = typeID
		row.StartAt = start.UTC()
		row.EndAt = end.UTC()
		row.Hours = hours
		row.UpdatedAt = s.now()
		updated = row
		if err := s.repo.Update(txCtx, row); err != nil {
			return err
		}
		return s.balances.Debit(txCtx, leavebalance.Movement{
			EmployeeID:  row.EmployeeID,
			LeaveTypeID: row.LeaveTypeID,
			Hours:       hours,
			LeaveID:     row.ID,
			ActorID:     actor.EmployeeID,
			Reason:      leavebalance.ReasonLeaveCorrected,
			Note:        dto.Note,
		})
	})
	if err != nil {
		s.logger.Warn("leave correction failed", "error", err, "leave_id", id, "actor_id", actor.ID)
		return nil, err
	}

	s.logger.Info("leave corrected",
		"leave_id", id,
		"employee_id", updated.EmployeeID,
		"old_hours", oldHours,
		"new_hours", hours,
		"actor_id", actor.ID)
	s.publish(ctx, events.NewLeaveCorrectedEvent(ctx, id, updated.EmployeeID, actor.EmployeeID, oldHours, hours))
	return s.load(ctx, id)
}

func (s *Service) Get(ctx context.Context, actor *auth.User, id int64) (*Leave, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanView(actor, l.EmployeeID, l.OwnerManagerID, auth.PermLeavesViewAll) {
		return nil, ErrUnauthorizedAccess
	}
	return l, nil
}

func (s *Service) ListMine(ctx context.Context, actor *auth.User, filter ListFilter) ([]*Leave, error) {
	if actor.EmployeeID == 0 {
		return []*Leave{}, nil
	}
	filter.EmployeeID = actor.EmployeeID
	filter.ManagerID = 0
	return s.list(ctx, filter)
}

// ListTeam returns the leaves of the actor's direct reports.
func (s *Service) ListTeam(ctx context.Context, actor *auth.User, filter ListFilter) ([]*Leave, error) {
	if actor.EmployeeID == 0 {
		return []*Leave{}, nil
	}
	filter.ManagerID = actor.EmployeeID
	filter.EmployeeID = 0
	return s.list(ctx, filter)
}

func (s *Service) ListAll(ctx context.Context, filter ListFilter) ([]*Leave, error) {
	return s.list(ctx, filter)
}

func (s *Service) list(ctx context.Context, filter ListFilter) ([]*Leave, error) {
	leaves, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list leaves", "error", err, "employee_id", filter.EmployeeID, "manager_id", filter.ManagerID)
		return nil, err
	}
	return leaves, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Leave, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load leave", "error", err, "leave_id", id)
		return nil, err
	}
	if l == nil {
		return nil, ErrLeaveNotFound
	}
	return l, nil
}

func (s *Service) lock(ctx context.Context, id int64) (*leaveDatamodel.Leave, error) {
	row, err := s.repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrLeaveNotFound
	}
	return row, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

// Location is the timezone leave dates and times are read in.
func (s *Service) Location() *time.Location {
	return s.schedule.Location
}
