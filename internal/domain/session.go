package domain

import "time"

// Credentials is the login form payload. Ephemeral, never stored.
type Credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Registration is the new-user form payload sent to /user/newUser.
type Registration struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SessionUser is the user payload returned by the backend login endpoint and
// carried inside the session token. AccessToken is the bearer credential for
// every product API call; the canonical field name is accessToken.
type SessionUser struct {
	ID          string `json:"id" mapstructure:"id"`
	Email       string `json:"email" mapstructure:"email"`
	Name        string `json:"name" mapstructure:"name"`
	AccessToken string `json:"accessToken" mapstructure:"accessToken"`
}

// Session is an authenticated operator session. ID is the panel-local
// session id, not a backend identifier.
type Session struct {
	ID        string      `json:"sid"`
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Token returns the bearer token for backend calls, empty when the session
// cannot authorize anything.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.User.AccessToken
}
