package domain

import "github.com/google/uuid"

// Caller is the authenticated identity on whose behalf a core operation runs.
// It is always passed explicitly; the core never looks up a session on its own.
type Caller struct {
	UserID uuid.UUID
	Role   Role
}

// SystemCaller resolves transactions under automatic policies.
var SystemCaller = Caller{Role: RoleAdmin}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// IsSystem reports whether the caller is the internal system identity.
func (c Caller) IsSystem() bool {
	return c.UserID == uuid.Nil && c.Role == RoleAdmin
}

// ActorID returns the caller's user id, or nil for the system identity.
func (c Caller) ActorID() *uuid.UUID {
	if c.IsSystem() {
		return nil
	}
	id := c.UserID
	return &id
}
