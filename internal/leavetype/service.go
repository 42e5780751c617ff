package leavetype

import (
	"context"
	"log/slog"
	"time"

	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context, activeOnly bool) ([]*leaveDatamodel.LeaveType, error)
	GetByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error)
	GetByCode(ctx context.Context, code string) (*leaveDatamodel.LeaveType, error)
	Create(ctx context.Context, t *leaveDatamodel.LeaveType) error
	Update(ctx context.Context, t *leaveDatamodel.LeaveType) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListAvailable returns active types an employee of gender can request.
func (s *Service) ListAvailable(ctx context.Context, gender string) ([]*LeaveType, error) {
	rows, err := s.repo.GetAll(ctx, true)
	if err != nil {
		s.logger.Error("failed to get leave types from repository", "error", err)
		return nil, err
	}

	out := make([]*LeaveType, 0, len(rows))
	for _, row := range rows {
		t := FromDataModel(row)
		if t.AppliesTo(gender) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*LeaveType, error) {
	rows, err := s.repo.GetAll(ctx, false)
	if err != nil {
		s.logger.Error("failed to get leave types from repository", "error", err)
		return nil, err
	}
	out := make([]*LeaveType, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*LeaveType, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrLeaveTypeNotFound
	}
	return FromDataModel(row), nil
}

// RequireUsable loads a type and checks it is active and open to gender.
func (s *Service) RequireUsable(ctx context.Context, id int64, gender string) (*LeaveType, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrLeaveTypeInactive
	}
	if !t.AppliesTo(gender) {
		return nil, ErrGenderRestricted
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, dto LeaveTypeDTO) (*LeaveType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByCode(ctx, dto.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateLeaveType
	}

	now := time.Now()
	t := &LeaveType{
		Name:         dto.Name,
		Code:         dto.Code,
		Description:  dto.Description,
		DefaultHours: dto.DefaultHours,
		GenderLimit:  dto.GenderLimit,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	row := ToDataModel(t)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create leave type", "error", err, "code", dto.Code)
		return nil, err
	}
	s.logger.Info("leave type created", "leave_type_id", row.ID, "code", row.Code)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto LeaveTypeDTO) (*LeaveType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByCode(ctx, dto.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, ErrDuplicateLeaveType
	}

	t.Name = dto.Name
	t.Code = dto.Code
	t.Description = dto.Description
	t.DefaultHours = dto.DefaultHours
	t.GenderLimit = dto.GenderLimit
	t.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, ToDataModel(t)); err != nil {
		s.logger.Error("failed to update leave type", "error", err, "leave_type_id", id)
		return nil, err
	}
	return t, nil
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*LeaveType, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		t.Activate()
	} else {
		t.Deactivate()
	}
	if err := s.repo.Update(ctx, ToDataModel(t)); err != nil {
		return nil, err
	}
	s.logger.Info("leave type status changed", "leave_type_id", id, "is_active", active)
	return t, nil
}
