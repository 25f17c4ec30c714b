package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCash       = "CASH"
	PaymentCreditCard = "CREDIT_CARD"
	PaymentDebitCard  = "DEBIT_CARD"
	PaymentPix        = "PIX"
	PaymentOther      = "OTHER"
)

// Payment é imutável depois de criado: não há update nem delete.
type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CommandID   uint            `gorm:"not null;index" json:"command_id"`
	Command     Command         `gorm:"foreignKey:CommandID" json:"-"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentType string          `gorm:"type:varchar(20);not null;default:'CASH'" json:"payment_type"`
	Note        string          `gorm:"type:text" json:"note"`
	PaidByID    uint            `gorm:"not null;index" json:"paid_by_id"`
	PaidBy      User            `gorm:"foreignKey:PaidByID" json:"paid_by"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

// ValidPaymentType valida o tipo informado pelo cliente.
func ValidPaymentType(t string) bool {
	switch t {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentOther:
		return true
	}
	return false
}
