package organization

import (
	"strings"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

type DepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *DepartmentDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("description", d.Description).MaxLength(500)
	return v.Validate()
}

type PositionDTO struct {
	DepartmentID int64  `json:"department_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

func (d *PositionDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	v := validation.NewValidator()
	v.Field("department_id", d.DepartmentID).Required()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("description", d.Description).MaxLength(500)
	return v.Validate()
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}

type PositionsResponse struct {
	Positions []*Position `json:"positions"`
}
