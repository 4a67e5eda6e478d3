package models

import "time"

type Note struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// CurrentVersion is derived from MAX(note_versions.version) at read
	// time; it is never stored on the row.
	CurrentVersion int `gorm:"-" json:"current_version"`

	// Relations
	User     User          `gorm:"foreignKey:UserID" json:"-"`
	Tags     []Tag         `gorm:"many2many:note_tags" json:"tags,omitempty"`
	Versions []NoteVersion `gorm:"foreignKey:NoteID" json:"-"`
}
