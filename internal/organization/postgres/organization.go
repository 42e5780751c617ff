package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/hr-attendance/internal/core/database"
	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
	organizationDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/organization"
	"github.com/frahmantamala/hr-attendance/internal/organization"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) organization.RepositoryAPI {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) ListDepartments(ctx context.Context) ([]*organizationDatamodel.Department, error) {
	var departments []*organizationDatamodel.Department
	err := database.Conn(ctx, r.db).Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *OrganizationRepository) GetDepartment(ctx context.Context, id int64) (*organizationDatamodel.Department, error) {
	var d organizationDatamodel.Department
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *OrganizationRepository) DepartmentNameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&organizationDatamodel.Department{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *OrganizationRepository) CreateDepartment(ctx context.Context, d *organizationDatamodel.Department) error {
	return database.Conn(ctx, r.db).Create(d).Error
}

func (r *OrganizationRepository) UpdateDepartment(ctx context.Context, d *organizationDatamodel.Department) error {
	return database.Conn(ctx, r.db).Save(d).Error
}

func (r *OrganizationRepository) DeleteDepartment(ctx context.Context, id int64) error {
	return database.Conn(ctx, r.db).Delete(&organizationDatamodel.Department{}, id).Error
}

func (r *OrganizationRepository) DepartmentUsage(ctx context.Context, id int64) (int64, int64, error) {
	conn := database.Conn(ctx, r.db)
	var positions, employees int64
	if err := conn.Model(&organizationDatamodel.Position{}).Where("department_id = ?", id).Count(&positions).Error; err != nil {
		return 0, 0, err
	}
	if err := conn.Model(&employeeDatamodel.Employee{}).Where("department_id = ?", id).Count(&employees).Error; err != nil {
		return 0, 0, err
	}
	return positions, employees, nil
}

func (r *OrganizationRepository) ListPositions(ctx context.Context, departmentID int64) ([]*organizationDatamodel.Position, error) {
	var positions []*organizationDatamodel.Position
	q := database.Conn(ctx, r.db).Order("department_id ASC, name ASC")
	if departmentID > 0 {
		q = q.Where("department_id = ?", departmentID)
	}
	err := q.Find(&positions).Error
	return positions, err
}

func (r *OrganizationRepository) GetPosition(ctx context.Context, id int64) (*organizationDatamodel.Position, error) {
	var p organizationDatamodel.Position
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *OrganizationRepository) PositionNameTaken(ctx context.Context, departmentID int64, name string, excludeID int64) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&organizationDatamodel.Position{}).
		Where("department_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", departmentID, name, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *OrganizationRepository) CreatePosition(ctx context.Context, p *organizationDatamodel.Position) error {
	return database.Conn(ctx, r.db).Create(p).Error
}

func (r *OrganizationRepository) UpdatePosition(ctx context.Context, p *organizationDatamodel.Position) error {
	return database.Conn(ctx, r.db).Save(p).Error
}

func (r *OrganizationRepository) DeletePosition(ctx context.Context, id int64) error {
	return database.Conn(ctx, r.db).Delete(&organizationDatamodel.Position{}, id).Error
}

func (r *OrganizationRepository) PositionUsage(ctx context.Context, id int64) (int64, error) {
	var employees int64
	err := database.Conn(ctx, r.db).Model(&employeeDatamodel.Employee{}).Where("position_id = ?", id).Count(&employees).Error
	return employees, err
}
