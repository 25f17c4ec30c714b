package models

import (
	"time"

	"gorm.io/gorm"
)

type CommandItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CommandID uint `gorm:"not null;index" json:"command_id"`
	// Omitindo Command do JSON para evitar aninhamento recursivo
	Command    Command        `gorm:"foreignKey:CommandID" json:"-"`
	MenuItemID uint           `gorm:"not null;index" json:"menu_item_id"`
	MenuItem   MenuItem       `gorm:"foreignKey:MenuItemID" json:"menu_item"`
	Quantity   int            `gorm:"not null" json:"quantity"`
	Notes      string         `gorm:"type:text" json:"notes"`
	AddedByID  uint           `gorm:"not null;index" json:"added_by_id"`
	AddedBy    User           `gorm:"foreignKey:AddedByID" json:"added_by"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
