package models

import "time"

// TestDrive holds one booking. The composite unique index is what turns a
// duplicate (user, car, date) insert into a conflict instead of a second row.
type TestDrive struct {
	ID        uint      `gorm:"primaryKey"`
	CarID     uint      `gorm:"not null;index:idx_booking,unique,priority:2"`
	Car       Car       `gorm:"foreignKey:CarID"`
	UserID    uint      `gorm:"not null;index:idx_booking,priority:1"`
	User      User      `gorm:"foreignKey:UserID"`
	Date      time.Time `gorm:"not null;index:idx_booking,priority:3"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
