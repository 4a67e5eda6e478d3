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
	ErrTagNotFound    = errors.New("tag not found")
	ErrTagNameTaken   = errors.New("a tag with this name already exists")
	ErrInvalidTagName = errors.New("tag name must be 1-50 characters")
)

// TagService handles the per-user tag registry.
type TagService struct {
	tagRepo repository.TagRepository
}

// NewTagService creates a new TagService.
func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{
		tagRepo: tagRepo,
	}
}

// ListTags returns the user's tags with live usage counts, most used
// first.
func (s *TagService) ListTags(userID uint64) ([]models.Tag, error) {
	tags, err := s.tagRepo.ListWithUsage(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// CreateTag creates a tag; names are unique per user, case-insensitive.
func (s *TagService) CreateTag(userID uint64, name string) (*models.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if err := validateTagName(name); err != nil {
		return nil, err
	}

	if _, err := s.tagRepo.FindByName(userID, name); err == nil {
		return nil, ErrTagNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check tag name: %w", err)
	}

	tag := &models.Tag{
		UserID: userID,
		Name:   name,
	}

	if err := s.tagRepo.Create(tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	return tag, nil
}

// RenameTag updates the tag name in place.
func (s *TagService) RenameTag(userID, tagID uint64, newName string) (*models.Tag, error) {
	newName = strings.ToLower(strings.TrimSpace(newName))
	if err := validateTagName(newName); err != nil {
		return nil, err
	}

	if existing, err := s.tagRepo.FindByName(userID, newName); err == nil {
		if existing.ID == tagID {
			return existing, nil
		}
		return nil, ErrTagNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check tag name: %w", err)
	}

	renamed, err := s.tagRepo.Rename(userID, tagID, newName)
	if err != nil {
		return nil, fmt.Errorf("failed to rename tag: %w", err)
	}
	if !renamed {
		return nil, ErrTagNotFound
	}

	tag, err := s.tagRepo.FindByID(userID, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload tag: %w", err)
	}

	return tag, nil
}

// DeleteTag removes an owned tag with all of its links.
func (s *TagService) DeleteTag(userID, tagID uint64) (bool, error) {
	deleted, err := s.tagRepo.Delete(userID, tagID)
	if err != nil {
		return false, fmt.Errorf("failed to delete tag: %w", err)
	}
	return deleted, nil
}

func validateTagName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > constants.MaxTagNameLength {
		return ErrInvalidTagName
	}
	return nil
}
