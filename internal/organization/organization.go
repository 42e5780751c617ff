package organization

import (
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	organizationDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/organization"
)

type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Position struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"department_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrDepartmentNotFound = internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
	ErrPositionNotFound   = internal.NewNotFoundError("position not found", internal.ErrCodePositionNotFound)
	ErrDuplicateName      = internal.NewConflictError("name is already used", internal.ErrCodeDuplicateName)
	ErrDepartmentInUse    = internal.NewConflictError("department still has positions or employees", internal.ErrCodeOrganizationInUse)
	ErrPositionInUse      = internal.NewConflictError("position is still assigned to employees", internal.ErrCodeOrganizationInUse)
)

func DepartmentToDataModel(d *Department) *organizationDatamodel.Department {
	return &organizationDatamodel.Department{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func DepartmentFromDataModel(d *organizationDatamodel.Department) *Department {
	return &Department{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func PositionToDataModel(p *Position) *organizationDatamodel.Position {
	return &organizationDatamodel.Position{
		ID:           p.ID,
		DepartmentID: p.DepartmentID,
		Name:         p.Name,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func PositionFromDataModel(p *organizationDatamodel.Position) *Position {
	return &Position{
		ID:           p.ID,
		DepartmentID: p.DepartmentID,
		Name:         p.Name,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
