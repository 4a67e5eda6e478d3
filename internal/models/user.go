package models

import "time"

type User struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	Email          string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username       string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash   string     `gorm:"type:varchar(255);not null" json:"-"`
	IsActive       bool       `gorm:"not null;default:true" json:"-"`
	FailedAttempts int        `gorm:"not null;default:0" json:"-"`
	LockedUntil    *time.Time `json:"-"`
	LastLoginAt    *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Notes []Note `gorm:"foreignKey:UserID" json:"-"`
	Tags  []Tag  `gorm:"foreignKey:UserID" json:"-"`
}
