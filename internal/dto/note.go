package dto

import (
	"time"

	"github.com/mkondo/notes-api/internal/models"
	"github.com/mkondo/notes-api/internal/utils"
)

// NoteDTO represents a note in API responses
type NoteDTO struct {
	ID             uint64    `json:"id"`
	Content        string    `json:"content"`
	CurrentVersion int       `json:"current_version"`
	Tags           []TagDTO  `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NoteVersionDTO represents an immutable version snapshot in API
// responses
type NoteVersionDTO struct {
	Version   int       `json:"version"`
	Content   string    `json:"content"`
	Tags      []TagDTO  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteListResponse represents a paginated list of notes
type NoteListResponse struct {
	Notes      []NoteDTO                `json:"notes"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToNoteDTO converts a Note model to NoteDTO
func ToNoteDTO(note models.Note) NoteDTO {
	tags := note.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return NoteDTO{
		ID:             note.ID,
		Content:        note.Content,
		CurrentVersion: note.CurrentVersion,
		Tags:           ToTagDTOs(tags),
		CreatedAt:      note.CreatedAt,
		UpdatedAt:      note.UpdatedAt,
	}
}

// ToNoteVersionDTO converts a NoteVersion model to NoteVersionDTO
func ToNoteVersionDTO(version models.NoteVersion) NoteVersionDTO {
	tags := version.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return NoteVersionDTO{
		Version:   version.Version,
		Content:   version.Content,
		Tags:      ToTagDTOs(tags),
		CreatedAt: version.CreatedAt,
	}
}

// ToNoteListResponse converts a slice of notes to NoteListResponse
func ToNoteListResponse(notes []models.Note, params utils.PaginationParams, total int64) NoteListResponse {
	items := make([]NoteDTO, len(notes))
	for i, note := range notes {
		items[i] = ToNoteDTO(note)
	}

	return NoteListResponse{
		Notes: items,
		Pagination: utils.PaginationResponse{
			Limit:  params.Limit,
			Offset: params.Offset,
			Total:  total,
		},
	}
}
