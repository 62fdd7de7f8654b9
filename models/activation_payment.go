package models

import "time"

// ActivationPayment stores the verified M-Pesa confirmation a user submitted
// to unlock withdrawals. ReceiptCode is unique so a confirmation message can
// only activate one account once.
type ActivationPayment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	OrderID     string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	ReceiptCode string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"receipt_code"`
	Amount      float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	RawMessage  string    `gorm:"type:text;not null" json:"-"`
	Status      string    `gorm:"type:varchar(16);default:'Success'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ActivationPayment) TableName() string {
	return "activation_payments"
}
