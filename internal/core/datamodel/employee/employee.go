package employee

import (
	"time"

	"gorm.io/datatypes"
)

type Employee struct {
	ID            int64           `gorm:"primaryKey"`
	UserID        int64           `gorm:"column:user_id;uniqueIndex;not null"`
	EmployeeCode  string          `gorm:"column:employee_code;uniqueIndex;not null"`
	DepartmentID  *int64          `gorm:"column:department_id"`
	PositionID    *int64          `gorm:"column:position_id"`
	ManagerID     *int64          `gorm:"column:manager_id;index"`
	Role          string          `gorm:"column:role;not null"`
	Status        string          `gorm:"column:status;not null;index"`
	StartDate     *datatypes.Date `gorm:"column:start_date"`
	ReviewedBy    *int64          `gorm:"column:reviewed_by"`
	ReviewedAt    *time.Time      `gorm:"column:reviewed_at"`
	ReviewRemarks string          `gorm:"column:review_remarks"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}
