package organization

import (
	"context"
	"log/slog"
	"time"

	organizationDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/organization"
)

type RepositoryAPI interface {
	ListDepartments(ctx context.Context) ([]*organizationDatamodel.Department, error)
	GetDepartment(ctx context.Context, id int64) (*organizationDatamodel.Department, error)
	DepartmentNameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	CreateDepartment(ctx context.Context, d *organizationDatamodel.Department) error
	UpdateDepartment(ctx context.Context, d *organizationDatamodel.Department) error
	DeleteDepartment(ctx context.Context, id int64) error
	DepartmentUsage(ctx context.Context, id int64) (positions, employees int64, err error)

	ListPositions(ctx context.Context, departmentID int64) ([]*organizationDatamodel.Position, error)
	GetPosition(ctx context.Context, id int64) (*organizationDatamodel.Position, error)
	PositionNameTaken(ctx context.Context, departmentID int64, name string, excludeID int64) (bool, error)
	CreatePosition(ctx context.Context, p *organizationDatamodel.Position) error
	UpdatePosition(ctx context.Context, p *organizationDatamodel.Position) error
	DeletePosition(ctx context.Context, id int64) error
	PositionUsage(ctx context.Context, id int64) (employees int64, err error)
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

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	rows, err := s.repo.ListDepartments(ctx)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, err
	}
	out := make([]*Department, 0, len(rows))
	for _, row := range rows {
		out = append(out, DepartmentFromDataModel(row))
	}
	return out, nil
}

// GetDepartment returns ErrDepartmentNotFound when the id is unknown.
func (s *Service) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	row, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrDepartmentNotFound
	}
	return DepartmentFromDataModel(row), nil
}

func (s *Service) CreateDepartment(ctx context.Context, dto DepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	taken, err := s.repo.DepartmentNameTaken(ctx, dto.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	now := time.Now()
	row := &organizationDatamodel.Department{
		Name:        dto.Name,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateDepartment(ctx, row); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, err
	}
	s.logger.Info("department created", "department_id", row.ID, "name", row.Name)
	return DepartmentFromDataModel(row), nil
}

func (s *Service) UpdateDepartment(ctx context.Context, id int64, dto DepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	row, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrDepartmentNotFound
	}
	taken, err := s.repo.DepartmentNameTaken(ctx, dto.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	row.Name = dto.Name
	row.Description = dto.Description
	row.UpdatedAt = time.Now()
	if err := s.repo.UpdateDepartment(ctx, row); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}
	return DepartmentFromDataModel(row), nil
}

// DeleteDepartment refuses while positions or employees still point at the department.
func (s *Service) DeleteDepartment(ctx context.Context, id int64) error {
	row, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrDepartmentNotFound
	}
	positions, employees, err := s.repo.DepartmentUsage(ctx, id)
	if err != nil {
		return err
	}
	if positions > 0 || employees > 0 {
		s.logger.Warn("department delete refused", "department_id", id, "positions", positions, "employees", employees)
		return ErrDepartmentInUse
	}
	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("department deleted", "department_id", id)
	return nil
}

// ListPositions lists every position, or only those of departmentID when it is non-zero.
func (s *Service) ListPositions(ctx context.Context, departmentID int64) ([]*Position, error) {
	rows, err := s.repo.ListPositions(ctx, departmentID)
	if err != nil {
		s.logger.Error("failed to list positions", "error", err)
		return nil, err
	}
	out := make([]*Position, 0, len(rows))
	for _, row := range rows {
		out = append(out, PositionFromDataModel(row))
	}
	return out, nil
}

func (s *Service) GetPosition(ctx context.Context, id int64) (*Position, error) {
	row, err := s.repo.GetPosition(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrPositionNotFound
	}
	return PositionFromDataModel(row), nil
}

func (s *Service) CreatePosition(ctx context.Context, dto PositionDTO) (*Position, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetDepartment(ctx, dto.DepartmentID); err != nil {
		return nil, err
	}
	taken, err := s.repo.PositionNameTaken(ctx, dto.DepartmentID, dto.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	now := time.Now()
	row := &organizationDatamodel.Position{
		DepartmentID: dto.DepartmentID,
		Name:         dto.Name,
		Description:  dto.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreatePosition(ctx, row); err != nil {
		s.logger.Error("failed to create position", "error", err, "department_id", dto.DepartmentID)
		return nil, err
	}
	s.logger.Info("position created", "position_id", row.ID, "department_id", row.DepartmentID)
	return PositionFromDataModel(row), nil
}

func (s *Service) UpdatePosition(ctx context.Context, id int64, dto PositionDTO) (*Position, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	row, err := s.repo.GetPosition(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrPositionNotFound
	}
	if dto.DepartmentID != row.DepartmentID {
		employees, err := s.repo.PositionUsage(ctx, id)
		if err != nil {
			return nil, err
		}
		if employees > 0 {
			return nil, ErrPositionInUse
		}
		if _, err := s.GetDepartment(ctx, dto.DepartmentID); err != nil {
			return nil, err
		}
	}
	taken, err := s.repo.PositionNameTaken(ctx, dto.DepartmentID, dto.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	row.DepartmentID = dto.DepartmentID
	row.Name = dto.Name
	row.Description = dto.Description
	row.UpdatedAt = time.Now()
	if err := s.repo.UpdatePosition(ctx, row); err != nil {
		s.logger.Error("failed to update position", "error", err, "position_id", id)
		return nil, err
	}
	return PositionFromDataModel(row), nil
}

func (s *Service) DeletePosition(ctx context.Context, id int64) error {
	row, err := s.repo.GetPosition(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrPositionNotFound
	}
	employees, err := s.repo.PositionUsage(ctx, id)
	if err != nil {
		return err
	}
	if employees > 0 {
		return ErrPositionInUse
	}
	if err := s.repo.DeletePosition(ctx, id); err != nil {
		return err
	}
	s.logger.Info("position deleted", "position_id", id)
	return nil
}
