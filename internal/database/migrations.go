package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes that AutoMigrate does not
// cover. Safe to run repeatedly.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Note listing sorts
		{"notes", "idx_notes_user_created_at", "user_id, created_at"},
		{"notes", "idx_notes_user_updated_at", "user_id, updated_at"},

		// Version history lookups
		{"note_versions", "idx_note_versions_note_id", "note_id"},

		// Link tables
		{"note_tags", "idx_note_tags_tag_id", "tag_id"},
		{"note_version_tags", "idx_note_version_tags_tag_id", "tag_id"},

		// Reset token expiry sweep-on-read
		{"password_reset_tokens", "idx_reset_tokens_user_id", "user_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
