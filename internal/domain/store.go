package domain

import "time"

// Token is an OAuth2 password-grant response
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
}

// Session is the persisted sign-in state
type Session struct {
	Token     Token     `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Expired reports whether the access token is past its lifetime
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store handles local persistence (BoltDB + memory).
type Store interface {
	// === Session ===
	LoadSession() (*Session, bool)
	SaveSession(s *Session) error
	ClearSession() error

	// === Downloaded certificates ===
	CertificatePath(recordID int64) (string, bool)
	SaveCertificatePath(recordID int64, path string) error
	ForgetCertificate(recordID int64)

	Close() error
}
