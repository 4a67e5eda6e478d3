package models

import "time"

// Tag names are stored lowercase and are unique per user, so two users
// may each own a tag with the same name.
type Tag struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"user_id"`
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_tags_user_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// UsageCount is the number of live note links, computed on read.
	UsageCount int `gorm:"-" json:"usage_count"`

	// Relations
	User  User   `gorm:"foreignKey:UserID" json:"-"`
	Notes []Note `gorm:"many2many:note_tags" json:"-"`
}
