package repository

import (
	"fmt"

	"github.com/mkondo/notes-api/internal/database"
	"github.com/mkondo/notes-api/internal/models"
	"github.com/mkondo/notes-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNoteRepository is a GORM implementation of NoteRepository
type GormNoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &GormNoteRepository{db: db}
}

// CreateWithInitialVersion creates the note row and its version-1
// snapshot atomically, so a note without a version can never exist.
func (r *GormNoteRepository) CreateWithInitialVersion(note *models.Note) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(note).Error; err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}

		version := &models.NoteVersion{
			NoteID:  note.ID,
			Version: 1,
			Content: note.Content,
		}
		if err := tx.Create(version).Error; err != nil {
			return fmt.Errorf("failed to create initial version: %w", err)
		}

		note.CurrentVersion = 1
		return nil
	})
}

// FindByID finds an owned note with live tags and the derived current
// version number.
func (r *GormNoteRepository) FindByID(userID, noteID uint64) (*models.Note, error) {
	var note models.Note
	if err := r.db.Preload("Tags").
		Where("user_id = ?", userID).
		First(&note, noteID).Error; err != nil {
		return nil, err
	}

	current, err := r.currentVersion(r.db, note.ID)
	if err != nil {
		return nil, err
	}
	note.CurrentVersion = current

	return &note, nil
}

// currentVersion derives MAX(version) for a note. It is recomputed on
// every read rather than stored on the note row.
func (r *GormNoteRepository) currentVersion(db *gorm.DB, noteID uint64) (int, error) {
	var current int
	err := db.Model(&models.NoteVersion{}).
		Where("note_id = ?", noteID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&current).Error
	return current, err
}

// List retrieves notes with filtering, sorting and pagination
func (r *GormNoteRepository) List(filter NoteFilter) ([]models.Note, int64, error) {
	query := r.db.Model(&models.Note{}).Where("notes.user_id = ?", filter.UserID)

	// A note matches when it currently carries any of the named tags.
	if len(filter.TagNames) > 0 {
		tagSubQuery := r.db.Model(&models.Tag{}).
			Select("1").
			Joins("JOIN note_tags ON note_tags.tag_id = tags.id").
			Where("note_tags.note_id = notes.id").
			Where("tags.name IN ?", filter.TagNames)
		query = query.Where("EXISTS (?)", tagSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortColumn := "created_at"
	if filter.SortBy == "updated_at" {
		sortColumn = "updated_at"
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	// Ties on the timestamp break on id so pagination stays stable.
	listQuery := query.Order(fmt.Sprintf("notes.%s %s, notes.id %s", sortColumn, direction, direction))

	if filter.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Limit:  filter.Limit,
			Offset: filter.Offset,
		}))
	}

	var notes []models.Note
	if err := listQuery.Preload("Tags").Find(&notes).Error; err != nil {
		return nil, 0, err
	}

	for i := range notes {
		current, err := r.currentVersion(r.db, notes[i].ID)
		if err != nil {
			return nil, 0, err
		}
		notes[i].CurrentVersion = current
	}

	return notes, total, nil
}

// AddVersion writes the new live content, inserts the next version and
// freezes the current tag links onto it, all in one transaction.
func (r *GormNoteRepository) AddVersion(note *models.Note, content string) (*models.NoteVersion, error) {
	var version models.NoteVersion

	err := r.db.Transaction(func(tx *gorm.DB) error {
		next, err := r.currentVersion(tx, note.ID)
		if err != nil {
			return err
		}
		next++

		if err := tx.Model(&models.Note{}).
			Where("id = ?", note.ID).
			Update("content", content).Error; err != nil {
			return fmt.Errorf("failed to update note content: %w", err)
		}

		version = models.NoteVersion{
			NoteID:  note.ID,
			Version: next,
			Content: content,
		}
		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("failed to create version: %w", err)
		}

		// Snapshot the live tag set as it stands at edit time.
		if err := tx.Exec(`
			INSERT INTO note_version_tags (note_version_id, tag_id)
			SELECT ?, tag_id FROM note_tags WHERE note_id = ?`,
			version.ID, note.ID).Error; err != nil {
			return fmt.Errorf("failed to snapshot tags: %w", err)
		}

		note.Content = content
		note.CurrentVersion = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &version, nil
}

// Delete removes an owned note together with its versions and tag links
func (r *GormNoteRepository) Delete(userID, noteID uint64) (bool, error) {
	deleted := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// Ownership check first; cross-user ids must behave exactly like
		// missing ones.
		var count int64
		if err := tx.Model(&models.Note{}).
			Where("id = ? AND user_id = ?", noteID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}

		if err := tx.Exec(`
			DELETE FROM note_version_tags
			WHERE note_version_id IN (SELECT id FROM note_versions WHERE note_id = ?)`,
			noteID).Error; err != nil {
			return err
		}

		if err := tx.Where("note_id = ?", noteID).Delete(&models.NoteVersion{}).Error; err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM note_tags WHERE note_id = ?", noteID).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Note{}, noteID).Error; err != nil {
			return err
		}

		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

// ListVersions lists an owned note's versions oldest first
func (r *GormNoteRepository) ListVersions(userID, noteID uint64) ([]models.NoteVersion, error) {
	var versions []models.NoteVersion
	err := r.db.Preload("Tags").
		Joins("JOIN notes ON notes.id = note_versions.note_id").
		Where("notes.id = ? AND notes.user_id = ?", noteID, userID).
		Order("note_versions.version ASC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// FindVersion finds a single version of an owned note
func (r *GormNoteRepository) FindVersion(userID, noteID uint64, version int) (*models.NoteVersion, error) {
	var v models.NoteVersion
	err := r.db.Preload("Tags").
		Joins("JOIN notes ON notes.id = note_versions.note_id").
		Where("notes.id = ? AND notes.user_id = ? AND note_versions.version = ?", noteID, userID, version).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// LinkTag inserts a live tag link, tolerating a concurrent duplicate
func (r *GormNoteRepository) LinkTag(noteID, tagID uint64) error {
	return r.db.Table("note_tags").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]interface{}{
			"note_id": noteID,
			"tag_id":  tagID,
		}).Error
}

// UnlinkTag removes a live tag link
func (r *GormNoteRepository) UnlinkTag(noteID, tagID uint64) (bool, error) {
	result := r.db.Exec("DELETE FROM note_tags WHERE note_id = ? AND tag_id = ?", noteID, tagID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
