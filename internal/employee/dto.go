package employee

import (
	"strings"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

type ReviewDTO struct {
	Action    string `json:"action"`
	Remarks   string `json:"remarks"`
	StartDate string `json:"start_date,omitempty"`
}

func (d *ReviewDTO) Validate() *internal.AppError {
	d.Action = strings.ToLower(strings.TrimSpace(d.Action))
	d.Remarks = strings.TrimSpace(d.Remarks)
	if d.Action != ActionApprove && d.Action != ActionReject {
		return internal.ErrInvalidAction
	}
	if d.Action == ActionReject && d.Remarks == "" {
		return internal.ErrRemarksRequired
	}
	v := validation.NewValidator()
	v.Field("remarks", d.Remarks).MaxLength(1000)
	return v.Validate()
}

// AssignmentDTO changes only the fields that are present. A manager_id of 0
// removes the current manager.
type AssignmentDTO struct {
	DepartmentID *int64  `json:"department_id,omitempty"`
	PositionID   *int64  `json:"position_id,omitempty"`
	ManagerID    *int64  `json:"manager_id,omitempty"`
	Role         *string `json:"role,omitempty"`
}

func (d *AssignmentDTO) Validate() *internal.AppError {
	if d.DepartmentID == nil && d.PositionID == nil && d.ManagerID == nil && d.Role == nil {
		return internal.NewValidationError("at least one of department_id, position_id, manager_id, role is required", internal.ErrCodeValidationFailed)
	}
	v := validation.NewValidator()
	if d.DepartmentID != nil {
		v.Field("department_id", *d.DepartmentID).Positive(internal.ErrCodeValidationFailed)
	}
	if d.PositionID != nil {
		v.Field("position_id", *d.PositionID).Positive(internal.ErrCodeValidationFailed)
	}
	if d.Role != nil {
		trimmed := strings.TrimSpace(*d.Role)
		d.Role = &trimmed
		v.Field("role", trimmed).Required()
	}
	return v.Validate()
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}
