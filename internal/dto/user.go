package dto

import (
	"time"

	"github.com/mkondo/notes-api/internal/models"
)

// UserDTO represents a user in API responses. Password hashes and
// lockout counters never leave the service layer.
type UserDTO struct {
	ID          uint64     `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
