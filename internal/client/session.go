package client

import (
	"sync"
	"time"

	"github.com/sbilibin2017/gw-credit-sum/internal/jwt"
)

// FreshnessThreshold is the minimum remaining lifetime of a usable token.
const FreshnessThreshold = 300 * time.Second

// Session holds the bearer token of one logged in principal.
type Session struct {
	mu    sync.Mutex
	token string
	now   func() time.Time
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// Get returns the stored token, or "" when logged out.
func (s *Session) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Set stores token.
func (s *Session) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear forgets the stored token.
func (s *Session) Clear() {
	s.Set("")
}

// EnsureValid returns the stored token if it is still fresh. A missing or
// stale token clears the session and yields "".
func (s *Session) EnsureValid() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return ""
	}
	if !IsFresh(s.token, s.now()) {
		s.token = ""
		return ""
	}
	return s.token
}

// IsFresh reports whether token expires more than FreshnessThreshold after
// now. The signature is not checked; the server remains the authority.
func IsFresh(token string, now time.Time) bool {
	_, expiresAt, err := jwt.PeekClaims(token)
	if err != nil || expiresAt.IsZero() {
		return false
	}
	return expiresAt.Sub(now) >= FreshnessThreshold
}
