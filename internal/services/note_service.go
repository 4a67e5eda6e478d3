package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mkondo/notes-api/internal/constants"
	"github.com/mkondo/notes-api/internal/models"
	"github.com/mkondo/notes-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNoteNotFound    = errors.New("note not found")
	ErrVersionNotFound = errors.New("note version not found")
	ErrEmptyContent    = errors.New("content cannot be empty")
	ErrContentTooLong  = errors.New("content exceeds the maximum length")
)

// NoteService handles note, version and live-tag business logic.
type NoteService struct {
	noteRepo repository.NoteRepository
	tagRepo  repository.TagRepository
}

// NewNoteService creates a new NoteService.
func NewNoteService(noteRepo repository.NoteRepository, tagRepo repository.TagRepository) *NoteService {
	return &NoteService{
		noteRepo: noteRepo,
		tagRepo:  tagRepo,
	}
}

// ListNotesInput represents filters for listing notes.
type ListNotesInput struct {
	UserID    uint64
	TagNames  []string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// ListNotes returns the user's notes matching the filter. Tag names
// match when the note carries any of them.
func (s *NoteService) ListNotes(input ListNotesInput) ([]models.Note, int64, error) {
	sortBy := input.SortBy
	if sortBy != "updated_at" {
		sortBy = "created_at"
	}
	sortOrder := input.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	names := make([]string, 0, len(input.TagNames))
	for _, name := range input.TagNames {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			names = append(names, name)
		}
	}

	limit := input.Limit
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	notes, total, err := s.noteRepo.List(repository.NoteFilter{
		UserID:    input.UserID,
		TagNames:  names,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, total, nil
}

// CreateNote creates a note together with its version-1 snapshot.
func (s *NoteService) CreateNote(userID uint64, content string) (*models.Note, error) {
	content = strings.TrimSpace(content)
	if err := validateContent(content); err != nil {
		return nil, err
	}

	note := &models.Note{
		UserID:  userID,
		Content: content,
	}

	if err := s.noteRepo.CreateWithInitialVersion(note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return note, nil
}

// GetNote retrieves an owned note with its live tags and derived
// current version.
func (s *NoteService) GetNote(userID, noteID uint64) (*models.Note, error) {
	note, err := s.noteRepo.FindByID(userID, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	return note, nil
}

// UpdateNote writes new content as a fresh immutable version. Editing to
// identical content is a no-op and creates no version.
func (s *NoteService) UpdateNote(userID, noteID uint64, content string) (*models.Note, error) {
	content = strings.TrimSpace(content)
	if err := validateContent(content); err != nil {
		return nil, err
	}

	note, err := s.GetNote(userID, noteID)
	if err != nil {
		return nil, err
	}

	if note.Content == content {
		return note, nil
	}

	if _, err := s.noteRepo.AddVersion(note, content); err != nil {
		return nil, fmt.Errorf("failed to add version: %w", err)
	}

	return s.GetNote(userID, noteID)
}

// DeleteNote removes an owned note with its versions and tag links.
func (s *NoteService) DeleteNote(userID, noteID uint64) (bool, error) {
	deleted, err := s.noteRepo.Delete(userID, noteID)
	if err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}
	return deleted, nil
}

// ListNoteVersions returns an owned note's version history, oldest
// first, with per-version tag snapshots.
func (s *NoteService) ListNoteVersions(userID, noteID uint64) ([]models.NoteVersion, error) {
	if _, err := s.GetNote(userID, noteID); err != nil {
		return nil, err
	}

	versions, err := s.noteRepo.ListVersions(userID, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	return versions, nil
}

// GetNoteVersion returns a single version of an owned note.
func (s *NoteService) GetNoteVersion(userID, noteID uint64, version int) (*models.NoteVersion, error) {
	v, err := s.noteRepo.FindVersion(userID, noteID, version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, fmt.Errorf("failed to find version: %w", err)
	}

	return v, nil
}

// AddTagToNote resolves-or-creates the tag by (user, name) and links it
// to the live note. Historical version links are never touched.
func (s *NoteService) AddTagToNote(userID, noteID uint64, tagName string) (*models.Note, error) {
	name := strings.ToLower(strings.TrimSpace(tagName))
	if err := validateTagName(name); err != nil {
		return nil, err
	}

	note, err := s.GetNote(userID, noteID)
	if err != nil {
		return nil, err
	}

	tag, err := s.tagRepo.FindOrCreate(userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tag: %w", err)
	}

	if err := s.noteRepo.LinkTag(note.ID, tag.ID); err != nil {
		return nil, fmt.Errorf("failed to link tag: %w", err)
	}

	return s.GetNote(userID, noteID)
}

// RemoveTagFromNote removes a live tag link only.
func (s *NoteService) RemoveTagFromNote(userID, noteID, tagID uint64) (*models.Note, error) {
	note, err := s.GetNote(userID, noteID)
	if err != nil {
		return nil, err
	}

	// The tag must belong to the same user; foreign ids read as missing.
	if _, err := s.tagRepo.FindByID(userID, tagID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}

	if _, err := s.noteRepo.UnlinkTag(note.ID, tagID); err != nil {
		return nil, fmt.Errorf("failed to unlink tag: %w", err)
	}

	return s.GetNote(userID, noteID)
}

func validateContent(content string) error {
	if content == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > constants.MaxNoteLength {
		return ErrContentTooLong
	}
	return nil
}
