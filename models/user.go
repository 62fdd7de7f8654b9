package models

import "time"

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"size:255;not null" json:"-"`
	Membership   string     `gorm:"type:enum('Bronze','Silver','Gold');default:'Bronze'" json:"membership"`
	Balance      float64    `gorm:"type:decimal(15,2);default:0" json:"balance"`
	Earnings     float64    `gorm:"type:decimal(15,2);default:0" json:"earnings"`
	Completed    uint       `gorm:"default:0" json:"completed"`
	QualityScore uint       `gorm:"default:0" json:"quality_score"`
	IsActivated  bool       `gorm:"default:false" json:"is_activated"`
	Status       string     `gorm:"type:enum('Active','Inactive','Suspend');default:'Active'" json:"status"`
	Provider     string     `gorm:"size:20;default:'email'" json:"provider"`
	MpesaNumber  string     `gorm:"size:20" json:"mpesa_number"`
	PaypalEmail  string     `gorm:"size:191" json:"paypal_email"`
	Bio          string     `gorm:"type:text" json:"bio"`
	Phone        string     `gorm:"size:20" json:"phone"`
	Location     string     `gorm:"size:100" json:"location"`
	Photo        *string    `gorm:"type:varchar(255);null" json:"photo,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

func (User) TableName() string {
	return "users"
}
