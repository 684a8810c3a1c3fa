// Package session holds the server-side session records that the cookie
// points at. A session maps to exactly one authenticated identity, plus the
// transient OTP challenge for password resets.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session not found")

// Session is the server-held record associated with a cookie.
type Session struct {
	ID       string `json:"id"`
	UserID   int64  `json:"userId"`
	UserType string `json:"userType"`
	Email    string `json:"email"`
	Username string `json:"username"`

	// OTP challenge state for the password-reset flow. The challenge is
	// scoped to this session: a reset can only complete from the browser
	// session that requested the code.
	OTPEmail    string    `json:"otpEmail,omitempty"`
	OTP         string    `json:"otp,omitempty"`
	OTPIssuedAt time.Time `json:"otpIssuedAt,omitempty"`
}

// Authenticated reports whether the session carries an identity.
func (s *Session) Authenticated() bool {
	return s.UserID != 0
}

// ClearOTP drops the OTP challenge fields.
func (s *Session) ClearOTP() {
	s.OTPEmail = ""
	s.OTP = ""
	s.OTPIssuedAt = time.Time{}
}

// Store is the keyed session backend. Every write (re)applies the TTL, so
// touching a session on an authenticated request keeps it alive.
type Store interface {
	// Create persists a new session under a fresh id and returns it.
	Create(ctx context.Context, sess *Session) error
	// Get fetches the session by id; ErrNotFound if absent or expired.
	Get(ctx context.Context, id string) (*Session, error)
	// Save rewrites an existing session and refreshes its TTL.
	Save(ctx context.Context, sess *Session) error
	// Destroy removes the session. Destroying an absent session is not an error.
	Destroy(ctx context.Context, id string) error
}
