package models

import "time"

// PayoutAccount is a withdrawal destination owned by a user: an M-Pesa
// number or a PayPal email.
type PayoutAccount struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Method      string    `gorm:"type:enum('mpesa','paypal');not null" json:"method"`
	Destination string    `gorm:"size:191;not null" json:"destination"`
	HolderName  string    `gorm:"size:100;not null" json:"holder_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (PayoutAccount) TableName() string {
	return "payout_accounts"
}
