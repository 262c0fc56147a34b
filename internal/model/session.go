package model

import "time"

// User is the signed-in operator as returned by the backend.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Image string `json:"image,omitempty"`
}

// Session binds a browser to a backend bearer token.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"`
	User      User      `json:"user"`
	Modules   []string  `json:"modules"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// HasModule reports whether the session may use the given dashboard module.
// An empty module list grants everything; an empty module name is always allowed.
func (s *Session) HasModule(module string) bool {
	if s == nil {
		return false
	}
	if module == "" || len(s.Modules) == 0 {
		return true
	}
	for _, m := range s.Modules {
		if m == module {
			return true
		}
	}
	return false
}
