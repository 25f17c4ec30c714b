package models

import (
	"time"

	"gorm.io/gorm"
)

type Table struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Number    int            `gorm:"not null;index:idx_tables_bar_number" json:"number"`
	BarID     uint           `gorm:"not null;index:idx_tables_bar_number" json:"bar_id"`
	Bar       Bar            `gorm:"foreignKey:BarID" json:"-"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
