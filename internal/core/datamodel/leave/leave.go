package leave

import "time"

type LeaveType struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Code         string    `gorm:"column:code;uniqueIndex;not null"`
	Description  string    `gorm:"column:description"`
	DefaultHours float64   `gorm:"column:default_hours;not null"`
	GenderLimit  *string   `gorm:"column:gender_limit"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (LeaveType) TableName() string {
	return "leave_types"
}

type LeaveBalance struct {
	ID             int64     `gorm:"primaryKey"`
	EmployeeID     int64     `gorm:"column:employee_id;not null;uniqueIndex:idx_leave_balance_owner"`
	LeaveTypeID    int64     `gorm:"column:leave_type_id;not null;uniqueIndex:idx_leave_balance_owner"`
	RemainingHours float64   `gorm:"column:remaining_hours;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

type LeaveBalanceTransaction struct {
	ID           int64     `gorm:"primaryKey"`
	BalanceID    int64     `gorm:"column:balance_id;not null;index"`
	EmployeeID   int64     `gorm:"column:employee_id;not null"`
	LeaveTypeID  int64     `gorm:"column:leave_type_id;not null"`
	DeltaHours   float64   `gorm:"column:delta_hours;not null"`
	BalanceAfter float64   `gorm:"column:balance_after;not null"`
	Reason       string    `gorm:"column:reason;not null"`
	LeaveID      *int64    `gorm:"column:leave_id"`
	ActorID      *int64    `gorm:"column:actor_id"`
	Note         string    `gorm:"column:note"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (LeaveBalanceTransaction) TableName() string {
	return "leave_balance_transactions"
}

type Leave struct {
	ID                int64      `gorm:"primaryKey"`
	EmployeeID        int64      `gorm:"column:employee_id;not null;index"`
	LeaveTypeID       int64      `gorm:"column:leave_type_id;not null"`
	StartAt           time.Time  `gorm:"column:start_at;not null"`
	EndAt             time.Time  `gorm:"column:end_at;not null"`
	Hours             float64    `gorm:"column:hours;not null"`
	Reason            string     `gorm:"column:reason;not null"`
	AttachmentName    *string    `gorm:"column:attachment_name"`
	ManagerStatus     string     `gorm:"column:manager_status;not null"`
	ManagerID         *int64     `gorm:"column:manager_id"`
	ManagerRemarks    string     `gorm:"column:manager_remarks"`
	ManagerReviewedAt *time.Time `gorm:"column:manager_reviewed_at"`
	HRStatus          string     `gorm:"column:hr_status;not null"`
	HRReviewerID      *int64     `gorm:"column:hr_reviewer_id"`
	HRRemarks         string     `gorm:"column:hr_remarks"`
	HRReviewedAt      *time.Time `gorm:"column:hr_reviewed_at"`
	Status            string     `gorm:"column:status;not null;index"`
	CanceledAt        *time.Time `gorm:"column:canceled_at"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (Leave) TableName() string {
	return "leaves"
}
