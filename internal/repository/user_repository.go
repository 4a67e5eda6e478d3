package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/mkondo/notes-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrResetTokenSpent is returned when consuming a reset token that is
	// unknown, already used or past its expiry.
	ErrResetTokenSpent = errors.New("user repository: reset token unknown, used or expired")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword replaces the password hash
func (r *GormUserRepository) UpdatePassword(userID uint64, passwordHash string) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

// RecordFailedAttempt increments the failed-attempt counter. The lockout
// decision rides in the same UPDATE so two concurrent failures cannot
// lose an increment or skip the threshold.
func (r *GormUserRepository) RecordFailedAttempt(userID uint64, threshold int, lockedUntil time.Time) error {
	return r.db.Exec(`
		UPDATE users
		SET failed_attempts = failed_attempts + 1,
		    locked_until = CASE WHEN failed_attempts + 1 >= ? THEN ? ELSE locked_until END
		WHERE id = ?`,
		threshold, lockedUntil, userID,
	).Error
}

// RecordLogin resets lockout state and stamps last_login_at
func (r *GormUserRepository) RecordLogin(userID uint64) error {
	now := time.Now()
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"failed_attempts": 0,
			"locked_until":    nil,
			"last_login_at":   now,
		}).Error
}

// CreateResetToken invalidates the user's prior unused tokens and stores
// the new one atomically.
func (r *GormUserRepository) CreateResetToken(token *models.PasswordResetToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND used_at IS NULL", token.UserID).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return fmt.Errorf("failed to invalidate prior reset tokens: %w", err)
		}

		if err := tx.Create(token).Error; err != nil {
			return fmt.Errorf("failed to create reset token: %w", err)
		}

		return nil
	})
}

// ConsumeResetToken burns the token and replaces the password hash in one
// transaction. The guarded UPDATE on the token row is what makes the
// token single-use under concurrent consumption.
func (r *GormUserRepository) ConsumeResetToken(tokenValue string, passwordHash string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var token models.PasswordResetToken
		if err := tx.Where("token = ?", tokenValue).First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResetTokenSpent
			}
			return err
		}

		now := time.Now()
		result := tx.Model(&models.PasswordResetToken{}).
			Where("id = ? AND used_at IS NULL AND expires_at > ?", token.ID, now).
			Update("used_at", now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrResetTokenSpent
		}

		return tx.Model(&models.User{}).
			Where("id = ?", token.UserID).
			Updates(map[string]interface{}{
				"password_hash":   passwordHash,
				"failed_attempts": 0,
				"locked_until":    nil,
			}).Error
	})
}

// DeleteCascade removes the user and everything the user owns
func (r *GormUserRepository) DeleteCascade(userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			DELETE FROM note_version_tags
			WHERE note_version_id IN (
				SELECT note_versions.id FROM note_versions
				JOIN notes ON notes.id = note_versions.note_id
				WHERE notes.user_id = ?
			)`, userID).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			DELETE FROM note_versions
			WHERE note_id IN (SELECT id FROM notes WHERE user_id = ?)`, userID).Error; err != nil {
			return err
		}

		if err := tx.Exec(`
			DELETE FROM note_tags
			WHERE note_id IN (SELECT id FROM notes WHERE user_id = ?)`, userID).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Note{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Tag{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, userID).Error
	})
}
