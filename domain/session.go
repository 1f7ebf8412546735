package domain

import "time"

// Session is a login issued to an existing user. Sessions live in Redis or process memory.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// TTL returns the remaining lifetime, zero once expired.
func (s *Session) TTL(reference time.Time) time.Duration {
	if s.IsExpired(reference) {
		return 0
	}
	return s.ExpiresAt.Sub(reference)
}

// Credentials pairs a session with the bearer token accepted by the API.
type Credentials struct {
	Session   *Session `json:"session"`
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
}
