package leavetype

import (
	"strings"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

type LeaveTypeDTO struct {
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	Description  string  `json:"description"`
	DefaultHours float64 `json:"default_hours"`
	GenderLimit  *string `json:"gender_limit,omitempty"`
}

func (d *LeaveTypeDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	if d.GenderLimit != nil && strings.TrimSpace(*d.GenderLimit) == "" {
		d.GenderLimit = nil
	}

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("code", d.Code).Required().MaxLength(20)
	v.Field("description", d.Description).MaxLength(500)
	v.Field("default_hours", d.DefaultHours).Positive(internal.ErrCodeValidationFailed)
	if d.GenderLimit != nil {
		v.Field("gender_limit", *d.GenderLimit).OneOf("male", "female")
	}
	return v.Validate()
}

type LeaveTypesResponse struct {
	LeaveTypes []*LeaveType `json:"leave_types"`
}
