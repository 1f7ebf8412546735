package domain

import "time"

// User represents an identity that can be assigned to tasks and invited to projects.
// Role is a display label only; access is decided by authentication and project membership.
type User struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Role      string            `json:"role"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}

// Ref returns the lightweight reference embedded in tasks and events.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Email: u.Email, Name: u.Name}
}

// UserRef identifies a user inside another aggregate.
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
