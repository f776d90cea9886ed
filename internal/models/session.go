package models

import "time"

// Session is the Redis-backed payload behind the docstorm_session cookie.
// The cookie carries only the opaque token; user id and role live here.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session passed its expiry, independent of the
// Redis TTL that normally evicts it first.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Touch slides the expiry forward so an active session stays alive. The
// store persists the touched session together with a fresh TTL.
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	s.ExpiresAt = now.Add(ttl)
}
