package model

import "time"

// TaskGroup is a recurring schedule: the weekdays it runs on and the users who perform it.
type TaskGroup struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	DaysOfWeek  string    `gorm:"type:varchar(20);not null" json:"days_of_week"` // CSV of 0(Sun)..6(Sat)
	StartTime   string    `gorm:"type:varchar(5);not null" json:"start_time"`    // HH:MM
	EndTime     string    `gorm:"type:varchar(5);not null" json:"end_time"`      // HH:MM
	IsActive    bool      `gorm:"not null" json:"is_active"`
	Users       []User    `gorm:"many2many:task_group_users;" json:"users,omitempty"`
	Tasks       []Task    `gorm:"foreignKey:TaskGroupID;constraint:OnDelete:CASCADE;" json:"tasks,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Task is a checklist item inside a TaskGroup, due at TimeOfDay
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TaskGroupID uint      `gorm:"not null;index" json:"task_group_id"`
	AssetID     *uint     `gorm:"index" json:"asset_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	TimeOfDay   string    `gorm:"type:varchar(5);not null" json:"time_of_day"` // HH:MM
	SortOrder   int       `gorm:"not null" json:"order"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserTask is one generated occurrence of a Task for a user on a date
type UserTask struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;uniqueIndex:idx_user_task_slot" json:"user_id"`
	User          *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	TaskID        uint           `gorm:"not null;uniqueIndex:idx_user_task_slot" json:"task_id"`
	Task          *Task          `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE;" json:"task,omitempty"`
	TaskGroupID   uint           `gorm:"not null;index" json:"task_group_id"`
	ScheduledDate string         `gorm:"type:varchar(10);not null;index" json:"scheduled_date"` // YYYY-MM-DD
	ScheduledAt   time.Time      `gorm:"not null;uniqueIndex:idx_user_task_slot" json:"scheduled_at"`
	Status        UserTaskStatus `gorm:"type:smallint;not null;index" json:"status"`
	CompletedAt   *time.Time     `json:"completed_at"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ScanInfo is an attendance record: a user scanning a location code, optionally against a task.
type ScanInfo struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	UserTaskID *uint     `gorm:"index" json:"user_task_id"`
	AssetID    *uint     `gorm:"index" json:"asset_id"`
	Code       string    `gorm:"type:varchar(255);not null" json:"code"`
	Latitude   *float64  `json:"latitude"`
	Longitude  *float64  `json:"longitude"`
	PhotoURL   string    `gorm:"type:varchar(500)" json:"photo_url"`
	ScannedAt  time.Time `gorm:"not null;index" json:"scanned_at"`
	CreatedAt  time.Time `json:"created_at"`
}
