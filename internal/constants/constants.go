package constants

import "time"

// Session
const (
	SessionCookieName  = "notes_session"
	ContextKeyUserID   = "user_id"
	SessionKeyEmail    = "email"
	SessionKeyUsername = "username"
)

// Validation limits
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
	MaxNoteLength     = 50000
	MaxTagNameLength  = 50
)

// Lockout policy
const (
	MaxFailedLoginAttempts = 5
	LockoutDuration        = 15 * time.Minute
)

// Password reset
const (
	ResetTokenTTL = time.Hour
)

// Password hashing. Cost 12 keeps a single bcrypt verification around
// 100ms or more on current hardware.
const BcryptCost = 12

// Pagination
const (
	DefaultPageSize = 100
	MaxPageSize     = 100
	MinPageSize     = 1
)
