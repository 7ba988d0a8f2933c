package models

import "time"

// Roles stored on the user row. Admin unlocks the management panel.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	FullName  string `gorm:"not null;index"`
	Phone     string `gorm:"unique;not null"`
	Email     string `gorm:"unique;not null;index"`
	Password  string `gorm:"not null"` // bcrypt hash
	Role      string `gorm:"not null;default:'customer'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
