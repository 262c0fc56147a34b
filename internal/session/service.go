package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/proplex/proplex-admin/internal/auth"
	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/model"
)

var (
	// ErrNotFound is returned when no live session matches.
	ErrNotFound = errors.New("session not found")
	// ErrExpired is returned for sessions past their expiry.
	ErrExpired = errors.New("session expired")
	// ErrRevoked is returned for cookies whose session was signed out.
	ErrRevoked = errors.New("session revoked")
	// ErrInvalidCookie is returned for cookies that fail validation.
	ErrInvalidCookie = errors.New("invalid session cookie")
)

// EventKind is the kind of an auth change.
type EventKind string

const (
	EventLogin       EventKind = "login"
	EventLogout      EventKind = "logout"
	EventInvalidated EventKind = "invalidated"
	EventUpdated     EventKind = "updated"
)

// Event describes an auth change.
type Event struct {
	Kind      EventKind
	SessionID string
	User      model.User
}

// Authenticator verifies credentials against the backend.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
	Logout(ctx context.Context) error
	Modules(ctx context.Context) ([]string, error)
}

// Config configures a Service.
type Config struct {
	Secret string
	TTL    time.Duration
}

// Service is the one source of truth for "is logged in". Route guards and
// the backend client both resolve tokens through it.
type Service struct {
	store  Store
	authn  Authenticator
	secret string
	ttl    time.Duration
	now    func() time.Time

	mu           sync.RWMutex
	listeners    map[int]func(Event)
	nextListener int
}

// NewService creates a session service.
func NewService(st Store, authn Authenticator, cfg Config) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{
		store:     st,
		authn:     authn,
		secret:    cfg.Secret,
		ttl:       ttl,
		now:       time.Now,
		listeners: make(map[int]func(Event)),
	}
}

// TTL returns the session lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Login verifies credentials with the backend, stores a new session and
// returns it together with the signed cookie value.
func (s *Service) Login(ctx context.Context, email, password, locale string) (*model.Session, string, error) {
	res, err := s.authn.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	sess := &model.Session{
		ID:        uuid.NewString(),
		Token:     res.Token,
		User:      res.User,
		Modules:   res.Modules,
		Locale:    locale,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("storing session: %w", err)
	}
	if len(sess.Modules) == 0 {
		if err := s.loadModules(ctx, sess); err != nil {
			_ = s.store.Delete(ctx, sess.ID)
			return nil, "", err
		}
	}

	cookie, err := auth.GenerateToken(s.secret, sess.ID, sess.User.ID, sess.User.Name, s.ttl)
	if err != nil {
		_ = s.store.Delete(ctx, sess.ID)
		return nil, "", err
	}

	s.emit(Event{Kind: EventLogin, SessionID: sess.ID, User: sess.User})
	return sess, cookie, nil
}

// loadModules asks the backend for the modules of a login response that
// listed none. A backend without the modules endpoint leaves access
// unrestricted.
func (s *Service) loadModules(ctx context.Context, sess *model.Session) error {
	modules, err := s.authn.Modules(NewContext(ctx, sess))
	if backend.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading modules: %w", err)
	}
	if len(modules) == 0 {
		return nil
	}
	sess.Modules = modules
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// Authenticate resolves a cookie value to its live session.
func (s *Service) Authenticate(ctx context.Context, cookie string) (*model.Session, error) {
	claims, err := auth.ValidateToken(s.secret, cookie)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}

	revoked, err := s.store.IsRevoked(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}

	return s.Get(ctx, claims.SessionID())
}

// Get returns a live session by id.
func (s *Service) Get(ctx context.Context, id string) (*model.Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		_ = s.store.Delete(ctx, id)
		return nil, ErrExpired
	}
	return sess, nil
}

// GetToken returns the backend bearer token of a session.
func (s *Service) GetToken(ctx context.Context, id string) (string, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// Token returns the bearer token of the session carried by ctx.
func (s *Service) Token(ctx context.Context) (string, error) {
	return s.GetToken(ctx, IDFromContext(ctx))
}

// Unauthorized drops the session carried by ctx after the backend rejected its token.
func (s *Service) Unauthorized(ctx context.Context) {
	id := IDFromContext(ctx)
	if id == "" {
		return
	}
	if err := s.Invalidate(ctx, id); err != nil {
		slog.Error("failed to invalidate session", "session", id, "error", err)
		return
	}
	slog.Warn("session invalidated by backend", "session", id)
}

// Invalidate deletes a session without telling the backend.
func (s *Service) Invalidate(ctx context.Context, id string) error {
	sess, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.emit(Event{Kind: EventInvalidated, SessionID: id, User: sess.User})
	return nil
}

// Logout signs the cookie's session out: the backend token is released,
// the cookie id revoked and the session deleted.
func (s *Service) Logout(ctx context.Context, cookie string) error {
	claims, err := auth.ValidateToken(s.secret, cookie)
	if err != nil {
		// Nothing to sign out.
		return nil
	}
	id := claims.SessionID()

	sess, err := s.store.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if sess != nil {
		if err := s.authn.Logout(NewContext(ctx, sess)); err != nil {
			slog.Warn("backend logout failed", "session", id, "error", err)
		}
	}

	expiresAt := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.store.Revoke(ctx, id, expiresAt); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	ev := Event{Kind: EventLogout, SessionID: id}
	if sess != nil {
		ev.User = sess.User
	}
	s.emit(ev)
	return nil
}

// UpdateUser replaces the operator details held by a session.
func (s *Service) UpdateUser(ctx context.Context, id string, user model.User) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.User = user
	if err := s.store.Save(ctx, sess); err != nil {
		return err
	}
	s.emit(Event{Kind: EventUpdated, SessionID: id, User: user})
	return nil
}

// SetLocale records the preferred locale of a session.
func (s *Service) SetLocale(ctx context.Context, id, locale string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.Locale == locale {
		return nil
	}
	sess.Locale = locale
	return s.store.Save(ctx, sess)
}

// OnAuthChange registers fn for every auth change and returns a function
// that unregisters it. Listeners run synchronously on the changing goroutine.
func (s *Service) OnAuthChange(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) emit(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
