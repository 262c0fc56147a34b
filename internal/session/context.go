package session

import (
	"context"
	"net/http"

	"github.com/proplex/proplex-admin/internal/model"
)

// CookieName is the cookie carrying the signed session handle.
const CookieName = "token"

type contextKey struct{}

// NewContext returns a context carrying sess.
func NewContext(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session carried by ctx, or nil.
func FromContext(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(contextKey{}).(*model.Session)
	return sess
}

// IDFromContext returns the id of the session carried by ctx, or "".
func IDFromContext(ctx context.Context) string {
	if sess := FromContext(ctx); sess != nil {
		return sess.ID
	}
	return ""
}

// FromRequest authenticates the session cookie of r.
func (s *Service) FromRequest(r *http.Request) (*model.Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNotFound
	}
	return s.Authenticate(r.Context(), c.Value)
}
