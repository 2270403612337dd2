package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User: учётная запись. Токен сессии здесь не хранится.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Avatar           string     `json:"avatar"`
	Role             string     `json:"role"`
	PasswordHash     string     `json:"-"`
	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}

func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type UpdateDetailsRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// UserSeed: запись из fixtures сидера, пароль в открытом виде.
type UserSeed struct {
	ID       uuid.UUID `json:"_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Password string    `json:"password"`
	Avatar   string    `json:"avatar"`
}
