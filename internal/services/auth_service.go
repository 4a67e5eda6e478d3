package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mkondo/notes-api/internal/constants"
	"github.com/mkondo/notes-api/internal/models"
	"github.com/mkondo/notes-api/internal/repository"
	"github.com/mkondo/notes-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidUsername      = errors.New("username must be 3-50 characters of letters, digits or underscore")
	ErrWeakPassword         = errors.New("password must be at least 8 characters with at least one letter and one digit")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidResetToken    = errors.New("reset token is invalid or expired")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AccountLockedError reports an active lockout window with the time left.
type AccountLockedError struct {
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %s", e.Remaining.Round(time.Second))
}

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

// dummyHash keeps the unknown-email path as slow as a real comparison so
// callers cannot enumerate accounts by timing.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), constants.BcryptCost)

// AuthService handles registration, authentication and credential
// lifecycle.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register validates and creates a new user.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)

	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if err := validatePasswordStrength(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), constants.BcryptCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(input.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		return nil, &AccountLockedError{Remaining: time.Until(*user.LockedUntil)}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		lockedUntil := time.Now().Add(constants.LockoutDuration)
		if err := s.userRepo.RecordFailedAttempt(user.ID, constants.MaxFailedLoginAttempts, lockedUntil); err != nil {
			return nil, fmt.Errorf("failed to record login attempt: %w", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.RecordLogin(user.ID); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	now := time.Now()
	user.FailedAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(userID uint64, currentPassword, newPassword string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), constants.BcryptCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.userRepo.UpdatePassword(userID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// CreateResetToken issues a single-use reset token. Unknown emails
// return no token and no error so the endpoint cannot be used to probe
// for accounts.
func (s *AuthService) CreateResetToken(email string) (*models.PasswordResetToken, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	value, err := utils.GenerateResetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     value,
		ExpiresAt: time.Now().Add(constants.ResetTokenTTL),
	}

	if err := s.userRepo.CreateResetToken(token); err != nil {
		return nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// ResetPassword consumes a reset token and replaces the password.
func (s *AuthService) ResetPassword(tokenValue, newPassword string) error {
	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), constants.BcryptCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.userRepo.ConsumeResetToken(tokenValue, string(hashedPassword)); err != nil {
		if errors.Is(err, repository.ErrResetTokenSpent) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	return nil
}

// DeleteAccount removes the user and all owned data after verifying the
// password.
func (s *AuthService) DeleteAccount(userID uint64, password string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.userRepo.DeleteCascade(userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return nil
}

func validatePasswordStrength(password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
