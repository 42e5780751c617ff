package attendance

import (
	"time"

	"gorm.io/datatypes"
)

type Punch struct {
	ID           int64          `gorm:"primaryKey"`
	EmployeeID   int64          `gorm:"column:employee_id;not null;uniqueIndex:idx_punch_employee_day_type"`
	WorkDate     datatypes.Date `gorm:"column:work_date;not null;uniqueIndex:idx_punch_employee_day_type"`
	PunchType    string         `gorm:"column:punch_type;not null;uniqueIndex:idx_punch_employee_day_type"`
	PunchedAt    time.Time      `gorm:"column:punched_at;not null"`
	Source       string         `gorm:"column:source;not null"`
	CorrectionID *int64         `gorm:"column:correction_id"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
}

func (Punch) TableName() string {
	return "attendance_punches"
}

type PunchCorrection struct {
	ID            int64          `gorm:"primaryKey"`
	EmployeeID    int64          `gorm:"column:employee_id;not null;index"`
	WorkDate      datatypes.Date `gorm:"column:work_date;not null"`
	PunchType     string         `gorm:"column:punch_type;not null"`
	PunchedAt     time.Time      `gorm:"column:punched_at;not null"`
	Reason        string         `gorm:"column:reason;not null"`
	Status        string         `gorm:"column:status;not null;index"`
	ReviewerID    *int64         `gorm:"column:reviewer_id"`
	ReviewRemarks string         `gorm:"column:review_remarks"`
	ReviewedAt    *time.Time     `gorm:"column:reviewed_at"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
}

func (PunchCorrection) TableName() string {
	return "punch_corrections"
}
