package models

import "time"

// NoteVersion is an immutable snapshot of a note's content. Rows are
// only ever inserted, or removed when the owning note is deleted.
type NoteVersion struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	NoteID    uint64    `gorm:"not null;uniqueIndex:idx_note_versions_note_version" json:"note_id"`
	Version   int       `gorm:"not null;uniqueIndex:idx_note_versions_note_version" json:"version"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Note Note  `gorm:"foreignKey:NoteID" json:"-"`
	Tags []Tag `gorm:"many2many:note_version_tags" json:"tags,omitempty"`
}
