package attendance

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/database"
	attendanceDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/attendance"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
)

type RepositoryAPI interface {
	// GetPunch returns nil, nil when the employee has no punch of that type on the day.
	GetPunch(ctx context.Context, employeeID int64, workDate time.Time, punchType string) (*attendanceDatamodel.Punch, error)
	CreatePunch(ctx context.Context, p *attendanceDatamodel.Punch) error
	SavePunch(ctx context.Context, p *attendanceDatamodel.Punch) error
	ListPunches(ctx context.Context, employeeID int64, from, to time.Time) ([]*attendanceDatamodel.Punch, error)
	CreateCorrection(ctx context.Context, c *attendanceDatamodel.PunchCorrection) error
	GetCorrection(ctx context.Context, id int64) (*Correction, error)
	GetCorrectionForUpdate(ctx context.Context, id int64) (*attendanceDatamodel.PunchCorrection, error)
	UpdateCorrection(ctx context.Context, c *attendanceDatamodel.PunchCorrection) error
	HasPendingCorrection(ctx context.Context, employeeID int64, workDate time.Time, punchType string) (bool, error)
	ListCorrections(ctx context.Context, filter CorrectionFilter) ([]*Correction, error)
}

// ReportRepositoryAPI reads punches across employees for reporting.
type ReportRepositoryAPI interface {
	Punches(ctx context.Context, period Period, departmentID int64) ([]PunchRow, error)
}

type Service struct {
	repo       RepositoryAPI
	reports    ReportRepositoryAPI
	transactor database.Transactor
	publisher  events.Publisher
	policy     Policy
	records    *auth.RecordPolicy
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	repo RepositoryAPI,
	reports ReportRepositoryAPI,
	transactor database.Transactor,
	publisher events.Publisher,
	policy Policy,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		reports:    reports,
		transactor: transactor,
		publisher:  publisher,
		policy:     policy,
		records:    auth.NewRecordPolicy(),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Location() *time.Location {
	return s.policy.Location
}

func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) PunchIn(ctx context.Context, actor *auth.User) (*Punch, error) {
	if !actor.IsApprovedEmployee() {
		return nil, ErrUnauthorizedAccess
	}
	now := s.now()
	day := WorkDate(now, s.policy.Location)

	var created *attendanceDatamodel.Punch
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetPunch(txCtx, actor.EmployeeID, day, PunchIn)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyPunchedIn
		}
		created = &attendanceDatamodel.Punch{
			EmployeeID: actor.EmployeeID,
			WorkDate:   date(day),
			PunchType:  PunchIn,
			PunchedAt:  now.UTC(),
			Source:     SourceClock,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return s.repo.CreatePunch(txCtx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("punched in",
		"employee_id", actor.EmployeeID,
		"work_date", day.Format(dateLayout),
		"late", s.policy.IsLate(now))
	return punchFromDataModel(created), nil
}

func (s *Service) PunchOut(ctx context.Context, actor *auth.User) (*Punch, error) {
	if !actor.IsApprovedEmployee() {
		return nil, ErrUnauthorizedAccess
	}
	now := s.now()
	day := WorkDate(now, s.policy.Location)

	var created *attendanceDatamodel.Punch
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		in, err := s.repo.GetPunch(txCtx, actor.EmployeeID, day, PunchIn)
		if err != nil {
			return err
		}
		if in == nil {
			return ErrNotPunchedIn
		}
		out, err := s.repo.GetPunch(txCtx, actor.EmployeeID, day, PunchOut)
		if err != nil {
			return err
		}
		if out != nil {
			return ErrAlreadyPunchedOut
		}
		if !now.After(in.PunchedAt) {
			return ErrPunchOrder
		}
		created = &attendanceDatamodel.Punch{
			EmployeeID: actor.EmployeeID,
			WorkDate:   date(day),
			PunchType:  PunchOut,
			PunchedAt:  now.UTC(),
			Source:     SourceClock,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return s.repo.CreatePunch(txCtx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("punched out", "employee_id", actor.EmployeeID, "work_date", day.Format(dateLayout))
	return punchFromDataModel(created), nil
}

// Records returns one DailyRecord per day with at least one punch, oldest first.
func (s *Service) Records(ctx context.Context, actor *auth.User, period Period) ([]DailyRecord, error) {
	if actor.EmployeeID == 0 {
		return []DailyRecord{}, nil
	}
	punches, err := s.repo.ListPunches(ctx, actor.EmployeeID, period.From, period.To)
	if err != nil {
		s.logger.Error("failed to list punches", "error", err, "employee_id", actor.EmployeeID)
		return nil, err
	}

	type pair struct{ in, out *time.Time }
	days := map[time.Time]*pair{}
	for _, p := range punches {
		d := time.Time(p.WorkDate).UTC()
		if days[d] == nil {
			days[d] = &pair{}
		}
		at := p.PunchedAt
		if p.PunchType == PunchIn {
			days[d].in = &at
		} else {
			days[d].out = &at
		}
	}

	keys := make([]time.Time, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]DailyRecord, 0, len(keys))
	for _, d := range keys {
		out = append(out, s.policy.Record(d, days[d].in, days[d].out))
	}
	return out, nil
}

func (s *Service) RequestCorrection(ctx context.Context, actor *auth.User, dto CorrectionDTO) (*Correction, error) {
	if !actor.IsApprovedEmployee() {
		return nil, ErrUnauthorizedAccess
	}
	now := s.now()
	at, verr := dto.PunchedAt(s.policy.Location, now)
	if verr != nil {
		return nil, verr
	}
	day := WorkDate(at, s.policy.Location)

	var row *attendanceDatamodel.PunchCorrection
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		pending, err := s.repo.HasPendingCorrection(txCtx, actor.EmployeeID, day, dto.Type)
		if err != nil {
			return err
		}
		if pending {
			return ErrDuplicateCorrection
		}
		row = &attendanceDatamodel.PunchCorrection{
			EmployeeID: actor.EmployeeID,
			WorkDate:   date(day),
			PunchType:  dto.Type,
			PunchedAt:  at.UTC(),
			Reason:     dto.Reason,
			Status:     CorrectionPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return s.repo.CreateCorrection(txCtx, row)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("punch correction requested",
		"correction_id", row.ID,
		"employee_id", actor.EmployeeID,
		"work_date", day.Format(dateLayout),
		"punch_type", dto.Type)
	return s.correction(ctx, row.ID)
}

func (s *Service) MyCorrections(ctx context.Context, actor *auth.User, filter CorrectionFilter) ([]*Correction, error) {
	if actor.EmployeeID == 0 {
		return []*Correction{}, nil
	}
	filter.EmployeeID = actor.EmployeeID
	return s.repo.ListCorrections(ctx, filter)
}

func (s *Service) ListCorrections(ctx context.Context, filter CorrectionFilter) ([]*Correction, error) {
	list, err := s.repo.ListCorrections(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list punch corrections", "error", err)
		return nil, err
	}
	return list, nil
}

func (s *Service) GetCorrection(ctx context.Context, actor *auth.User, id int64) (*Correction, error) {
	c, err := s.correction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.records.CanView(actor, c.EmployeeID, c.ManagerID, auth.PermPunchCorrectionReview) {
		return nil, ErrUnauthorizedAccess
	}
	return c, nil
}

// ReviewCorrection decides a pending correction. Approval writes the punch,
// replacing a clock punch of the same type on that day.
func (s *Service) ReviewCorrection(ctx context.Context, actor *auth.User, id int64, dto ReviewDTO) (*Correction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var row *attendanceDatamodel.PunchCorrection
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		row, err = s.repo.GetCorrectionForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrCorrectionNotFound
		}
		if row.Status != CorrectionPending {
			return ErrCorrectionNotPending
		}

		now := s.now()
		reviewer := actor.EmployeeID
		row.ReviewerID = &reviewer
		row.ReviewRemarks = dto.Remarks
		row.ReviewedAt = &now
		row.UpdatedAt = now
		row.Status = CorrectionRejected
		if dto.Action == ActionApprove {
			row.Status = CorrectionApproved
			if err := s.applyCorrection(txCtx, row, now); err != nil {
				return err
			}
		}
		return s.repo.UpdateCorrection(txCtx, row)
	})
	if err != nil {
		s.logger.Warn("punch correction review failed", "error", err, "correction_id", id, "reviewer_id", actor.EmployeeID)
		return nil, err
	}

	workDate := time.Time(row.WorkDate)
	s.logger.Info("punch correction reviewed",
		"correction_id", id,
		"employee_id", row.EmployeeID,
		"status", row.Status,
		"reviewer_id", actor.EmployeeID)
	s.publish(ctx, events.NewPunchCorrectionReviewedEvent(ctx, id, row.EmployeeID, workDate, row.PunchType, row.Status, row.ReviewRemarks))
	return s.correction(ctx, id)
}

func (s *Service) applyCorrection(ctx context.Context, c *attendanceDatamodel.PunchCorrection, now time.Time) error {
	day := time.Time(c.WorkDate)
	p, err := s.repo.GetPunch(ctx, c.EmployeeID, day, c.PunchType)
	if err != nil {
		return err
	}

	var in, out time.Time
	other := PunchOut
	if c.PunchType == PunchOut {
		other = PunchIn
	}
	counterpart, err := s.repo.GetPunch(ctx, c.EmployeeID, day, other)
	if err != nil {
		return err
	}
	if counterpart != nil {
		in, out = c.PunchedAt, counterpart.PunchedAt
		if c.PunchType == PunchOut {
			in, out = counterpart.PunchedAt, c.PunchedAt
		}
		if !out.After(in) {
			return ErrPunchOrder
		}
	}

	id := c.ID
	if p == nil {
		return s.repo.CreatePunch(ctx, &attendanceDatamodel.Punch{
			EmployeeID:   c.EmployeeID,
			WorkDate:     c.WorkDate,
			PunchType:    c.PunchType,
			PunchedAt:    c.PunchedAt,
			Source:       SourceCorrection,
			CorrectionID: &id,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	p.PunchedAt = c.PunchedAt
	p.Source = SourceCorrection
	p.CorrectionID = &id
	p.UpdatedAt = now
	return s.repo.SavePunch(ctx, p)
}

func (s *Service) correction(ctx context.Context, id int64) (*Correction, error) {
	c, err := s.repo.GetCorrection(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCorrectionNotFound
	}
	return c, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}
