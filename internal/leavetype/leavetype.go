package leavetype

import (
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
)

type LeaveType struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Description  string    `json:"description"`
	DefaultHours float64   `json:"default_hours"`
	GenderLimit  *string   `json:"gender_limit,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AppliesTo reports whether an employee of the given gender may take this leave.
func (t *LeaveType) AppliesTo(gender string) bool {
	return t.GenderLimit == nil || *t.GenderLimit == "" || *t.GenderLimit == gender
}

func (t *LeaveType) Activate() {
	t.IsActive = true
	t.UpdatedAt = time.Now()
}

func (t *LeaveType) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
}

var (
	ErrLeaveTypeNotFound  = internal.NewNotFoundError("leave type not found", internal.ErrCodeLeaveTypeNotFound)
	ErrLeaveTypeInactive  = internal.NewValidationError("leave type is not active", internal.ErrCodeLeaveTypeInactive)
	ErrGenderRestricted   = internal.NewValidationError("leave type is not available for the employee's gender", internal.ErrCodeLeaveTypeGender)
	ErrDuplicateLeaveType = internal.NewConflictError("leave type code already exists", internal.ErrCodeDuplicateLeaveType)
)

func ToDataModel(t *LeaveType) *leaveDatamodel.LeaveType {
	return &leaveDatamodel.LeaveType{
		ID:           t.ID,
		Name:         t.Name,
		Code:         t.Code,
		Description:  t.Description,
		DefaultHours: t.DefaultHours,
		GenderLimit:  t.GenderLimit,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func FromDataModel(t *leaveDatamodel.LeaveType) *LeaveType {
	return &LeaveType{
		ID:           t.ID,
		Name:         t.Name,
		Code:         t.Code,
		Description:  t.Description,
		DefaultHours: t.DefaultHours,
		GenderLimit:  t.GenderLimit,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
