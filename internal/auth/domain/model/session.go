package model

import "time"

// Session is what the portal hands back after POST /jwt. Nothing about it is
// persisted; the token alone proves the identity until ExpiresAt.
type Session struct {
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session token has passed its expiry at the given instant.
func (s *Session) Expired(at time.Time) bool {
	return !at.Before(s.ExpiresAt)
}
