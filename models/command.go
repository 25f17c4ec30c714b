package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Valores monetários saem como número no JSON, não como string.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	CommandOpen   = "OPEN"
	CommandClosed = "CLOSED"
)

// Command é uma comanda aberta contra uma mesa, acumulando itens e
// pagamentos até ser fechada. Total, PaidAmount e RemainingAmount são
// sempre recalculados a partir dos itens e pagamentos ativos, nunca
// ajustados incrementalmente.
type Command struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	TableID         uint            `gorm:"not null;index" json:"table_id"`
	Table           Table           `gorm:"foreignKey:TableID" json:"table"`
	BarID           uint            `gorm:"not null;index" json:"bar_id"`
	Bar             Bar             `gorm:"foreignKey:BarID" json:"-"`
	Name            string          `gorm:"type:varchar(255)" json:"name"`
	Status          string          `gorm:"type:varchar(10);not null;default:'OPEN'" json:"status"`
	Total           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"paid_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"remaining_amount"`
	PublicHash      string          `gorm:"type:varchar(32);not null" json:"public_hash"`
	OpenedByID      uint            `gorm:"not null;index" json:"opened_by_id"`
	OpenedBy        User            `gorm:"foreignKey:OpenedByID" json:"opened_by"`
	ClosedByID      *uint           `gorm:"index" json:"closed_by_id,omitempty"`
	ClosedBy        *User           `gorm:"foreignKey:ClosedByID" json:"closed_by,omitempty"`
	Items           []CommandItem   `gorm:"foreignKey:CommandID" json:"items"`
	Payments        []Payment       `gorm:"foreignKey:CommandID" json:"-"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// IsClosed -> comanda já fechada não aceita novos itens
func (c *Command) IsClosed() bool {
	return c.Status == CommandClosed
}

// RecalculateTotals computa total, valor pago e saldo restante a partir dos
// itens ativos (com MenuItem carregado) e dos pagamentos da comanda. Toda
// mutação de item ou pagamento passa por aqui, dentro da mesma transação.
func RecalculateTotals(items []CommandItem, payments []Payment) (total, paid, remaining decimal.Decimal) {
	total = decimal.Zero
	for _, item := range items {
		total = total.Add(item.MenuItem.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	paid = decimal.Zero
	for _, payment := range payments {
		paid = paid.Add(payment.Amount)
	}
	return total, paid, total.Sub(paid)
}
