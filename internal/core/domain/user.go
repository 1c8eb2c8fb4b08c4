package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role carried by a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the identity that owns accounts and authenticates against the gateway.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"`
	PasswordHash string    `json:"-"` // Never expose
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin returns true if the user may resolve pending requests.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
