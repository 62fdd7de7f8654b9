package models

import "time"

// SurveyResponse is the append-only completion record written when a survey
// flow is submitted: who, which task, the raw answers and the points earned.
// Rows are never updated or deleted.
type SurveyResponse struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	TaskID     int       `gorm:"not null;index" json:"task_id"`
	CategoryID int       `gorm:"not null" json:"category_id"`
	Answers    string    `gorm:"type:json;not null" json:"answers"`
	Points     float64   `gorm:"type:decimal(15,2);not null" json:"points"`
	CreatedAt  time.Time `json:"created_at"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}
