package repository

import (
	"errors"

	"github.com/mkondo/notes-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

// Create creates a new tag
func (r *GormTagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

// FindOrCreate resolves a tag by (user, name), inserting when absent.
// The unique index on (user_id, name) is the authority: when a
// concurrent insert wins, the conflict is swallowed and the winner's row
// is fetched instead.
func (r *GormTagRepository) FindOrCreate(userID uint64, name string) (*models.Tag, error) {
	tag := models.Tag{
		UserID: userID,
		Name:   name,
	}

	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
		return nil, err
	}

	if tag.ID == 0 {
		return r.FindByName(userID, name)
	}

	return &tag, nil
}

// FindByID finds a tag scoped to its owner
func (r *GormTagRepository) FindByID(userID, tagID uint64) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.Where("user_id = ?", userID).First(&tag, tagID).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByName finds a tag scoped to its owner by lowercased name
func (r *GormTagRepository) FindByName(userID uint64, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.Where("user_id = ? AND name = ?", userID, name).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Rename updates the name in place, scoped to the owner
func (r *GormTagRepository) Rename(userID, tagID uint64, newName string) (bool, error) {
	result := r.db.Model(&models.Tag{}).
		Where("id = ? AND user_id = ?", tagID, userID).
		Update("name", newName)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes an owned tag with all of its note and version links
func (r *GormTagRepository) Delete(userID, tagID uint64) (bool, error) {
	deleted := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.Where("user_id = ?", userID).First(&tag, tagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Exec("DELETE FROM note_tags WHERE tag_id = ?", tagID).Error; err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM note_version_tags WHERE tag_id = ?", tagID).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Tag{}, tagID).Error; err != nil {
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

// ListWithUsage lists a user's tags with live note-link counts. Version
// links deliberately do not count toward usage.
func (r *GormTagRepository) ListWithUsage(userID uint64) ([]models.Tag, error) {
	type tagWithCount struct {
		models.Tag
		NoteCount int
	}

	var rows []tagWithCount
	err := r.db.Table("tags").
		Select("tags.*, COUNT(note_tags.note_id) AS note_count").
		Joins("LEFT JOIN note_tags ON note_tags.tag_id = tags.id").
		Where("tags.user_id = ?", userID).
		Group("tags.id").
		Order("note_count DESC, tags.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	tags := make([]models.Tag, len(rows))
	for i, row := range rows {
		tag := row.Tag
		tag.UsageCount = row.NoteCount
		tags[i] = tag
	}

	return tags, nil
}
