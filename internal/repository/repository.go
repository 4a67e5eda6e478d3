package repository

import (
	"time"

	"github.com/mkondo/notes-api/internal/models"
)

// UserRepository defines the interface for user and credential data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email (callers pass the lowercased form)
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// UpdatePassword replaces the password hash
	UpdatePassword(userID uint64, passwordHash string) error

	// RecordFailedAttempt increments the failed-attempt counter and, when the
	// incremented value reaches threshold, sets locked_until in the same
	// statement.
	RecordFailedAttempt(userID uint64, threshold int, lockedUntil time.Time) error

	// RecordLogin resets the failed-attempt counter, clears any lockout and
	// stamps last_login_at.
	RecordLogin(userID uint64) error

	// CreateResetToken removes the user's unused reset tokens and inserts the
	// new one within a single transaction.
	CreateResetToken(token *models.PasswordResetToken) error

	// ConsumeResetToken marks the token used and replaces the user's password
	// hash, clearing lockout state, within a single transaction. Returns
	// ErrResetTokenSpent if the token was already used or has expired.
	ConsumeResetToken(tokenValue string, passwordHash string) error

	// DeleteCascade removes the user and all owned notes, versions, tags,
	// links and reset tokens within a single transaction.
	DeleteCascade(userID uint64) error
}

// NoteFilter holds filtering options for listing notes
type NoteFilter struct {
	UserID    uint64
	TagNames  []string
	SortBy    string // created_at or updated_at
	SortOrder string // asc or desc
	Limit     int
	Offset    int
}

// NoteRepository defines the interface for note and version data access
type NoteRepository interface {
	// CreateWithInitialVersion creates the note and its version-1 snapshot
	// within a single transaction.
	CreateWithInitialVersion(note *models.Note) error

	// FindByID finds a note scoped to its owner, with the derived current
	// version number populated and live tags preloaded.
	FindByID(userID, noteID uint64) (*models.Note, error)

	// List retrieves notes with filtering, sorting and pagination
	List(filter NoteFilter) ([]models.Note, int64, error)

	// AddVersion updates the note's live content, inserts the next version
	// snapshot and copies the current tag links onto it, all within a single
	// transaction.
	AddVersion(note *models.Note, content string) (*models.NoteVersion, error)

	// Delete removes an owned note with its versions and tag links. Returns
	// false when no owned note matched.
	Delete(userID, noteID uint64) (bool, error)

	// ListVersions lists an owned note's versions in ascending order with
	// their tag snapshots preloaded.
	ListVersions(userID, noteID uint64) ([]models.NoteVersion, error)

	// FindVersion finds a single version of an owned note
	FindVersion(userID, noteID uint64, version int) (*models.NoteVersion, error)

	// LinkTag adds a live tag link, tolerating an existing link
	LinkTag(noteID, tagID uint64) error

	// UnlinkTag removes a live tag link. Returns false when no link existed.
	UnlinkTag(noteID, tagID uint64) (bool, error)
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	// Create creates a new tag
	Create(tag *models.Tag) error

	// FindOrCreate resolves a tag by (user, name), creating it when absent.
	// Two requests racing to create the same name both resolve to the row
	// that won the insert.
	FindOrCreate(userID uint64, name string) (*models.Tag, error)

	// FindByID finds a tag scoped to its owner
	FindByID(userID, tagID uint64) (*models.Tag, error)

	// FindByName finds a tag scoped to its owner by lowercased name
	FindByName(userID uint64, name string) (*models.Tag, error)

	// Rename updates the tag name in place, scoped to its owner. Returns
	// false when no owned tag matched.
	Rename(userID, tagID uint64, newName string) (bool, error)

	// Delete removes an owned tag and all of its note and version links
	// within a single transaction. Returns false when no owned tag matched.
	Delete(userID, tagID uint64) (bool, error)

	// ListWithUsage lists a user's tags with live note-link counts, most
	// used first.
	ListWithUsage(userID uint64) ([]models.Tag, error)
}
