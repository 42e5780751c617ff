package user

import (
	"time"

	"github.com/frahmantamala/hr-attendance/internal"
	userDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-attendance/internal/employee"
)

// Account is the login record behind a principal.
type Account struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type EmployeeSummary struct {
	ID           int64      `json:"id"`
	EmployeeCode string     `json:"employee_code"`
	Status       string     `json:"status"`
	Role         string     `json:"role"`
	Department   *string    `json:"department,omitempty"`
	Position     *string    `json:"position,omitempty"`
	ManagerID    *int64     `json:"manager_id,omitempty"`
	ManagerName  *string    `json:"manager_name,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
}

// Profile is the GET /users/me body.
type Profile struct {
	Account
	Employee    *EmployeeSummary `json:"employee,omitempty"`
	Permissions []string         `json:"permissions"`
}

var ErrUserNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)

func FromDataModel(u *userDatamodel.User) *Account {
	return &Account{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Gender:    u.Gender,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func summarize(e *employee.Employee) *EmployeeSummary {
	return &EmployeeSummary{
		ID:           e.ID,
		EmployeeCode: e.EmployeeCode,
		Status:       e.Status,
		Role:         e.Role,
		Department:   e.DepartmentName,
		Position:     e.PositionName,
		ManagerID:    e.ManagerID,
		ManagerName:  e.ManagerName,
		StartDate:    e.StartDate,
	}
}
