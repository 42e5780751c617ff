package leavebalance

import (
	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/core/common/validation"
)

type AdjustDTO struct {
	RemainingHours float64 `json:"remaining_hours"`
	Note           string  `json:"note"`
}

func (d AdjustDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("remaining_hours", d.RemainingHours).MinFloat(0, internal.ErrCodeValidationFailed)
	v.Field("note", d.Note).Required().MaxLength(500)
	return v.Validate()
}

type BalancesResponse struct {
	EmployeeID int64      `json:"employee_id"`
	Balances   []*Balance `json:"balances"`
}

type LedgerResponse struct {
	Entries []LedgerEntry `json:"entries"`
}
