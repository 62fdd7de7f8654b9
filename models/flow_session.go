package models

import "time"

// FlowSession tracks one in-progress wizard run for a (user, device, task).
// StepEnteredAt drives the server-side dwell gate; Answers accumulates the
// collected answers as a JSON object keyed by question id.
type FlowSession struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index:idx_flow_user_task" json:"user_id"`
	DeviceID      string    `gorm:"size:64;not null;default:'web'" json:"device_id"`
	TaskID        int       `gorm:"not null;index:idx_flow_user_task" json:"task_id"`
	CategoryID    int       `gorm:"not null" json:"category_id"`
	Step          int       `gorm:"not null;default:0" json:"step"`
	StepEnteredAt time.Time `gorm:"not null" json:"step_entered_at"`
	Answers       string    `gorm:"type:json" json:"answers"`
	Status        string    `gorm:"type:enum('active','submitted','abandoned');default:'active'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (FlowSession) TableName() string {
	return "flow_sessions"
}
