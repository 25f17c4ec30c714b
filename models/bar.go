package models

import (
	"time"

	"gorm.io/gorm"
)

// Bar é a unidade de tenancy: um dono, várias mesas/itens/comandas.
type Bar struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID   uint           `gorm:"not null;index" json:"owner_id"`
	Owner     User           `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
