package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleOwner   = "OWNER"
	RoleWaiter  = "WAITER"
	RoleManager = "MANAGER"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255)" json:"name"`
	Email     string         `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"`
	Role      string         `gorm:"type:varchar(20);not null" json:"role"`
	OwnerID   *uint          `gorm:"index" json:"owner_id,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsStaff -> garçom ou gerente vinculado a um dono
func (u *User) IsStaff() bool {
	return u.Role == RoleWaiter || u.Role == RoleManager
}

// DisplayName retorna o nome ou, na falta dele, o e-mail.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
