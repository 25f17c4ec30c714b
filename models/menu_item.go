package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	BarID     uint            `gorm:"not null;index" json:"bar_id"`
	Bar       Bar             `gorm:"foreignKey:BarID" json:"-"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}
