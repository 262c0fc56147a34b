package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/db"
	"github.com/proplex/proplex-admin/internal/model"
)

const testSecret = "test-secret"

type fakeAuthn struct {
	result   *backend.LoginResult
	err      error
	logouts  int
	logoutID string

	modules     []string
	modulesErr  error
	moduleCalls int
	moduleToken string
}

func (f *fakeAuthn) Login(ctx context.Context, email, password string) (*backend.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAuthn) Logout(ctx context.Context) error {
	f.logouts++
	f.logoutID = IDFromContext(ctx)
	return nil
}

func (f *fakeAuthn) Modules(ctx context.Context) ([]string, error) {
	f.moduleCalls++
	if sess := FromContext(ctx); sess != nil {
		f.moduleToken = sess.Token
	}
	return f.modules, f.modulesErr
}

func newTestService(t *testing.T) (*Service, *fakeAuthn) {
	t.Helper()
	authn := &fakeAuthn{result: &backend.LoginResult{
		Token:   "bearer-1",
		User:    model.User{ID: "7", Name: "Admin", Email: "admin@example.test"},
		Modules: []string{"agents", "areas"},
	}}
	svc := NewService(NewSQLStore(db.NewTestDB(t)), authn, Config{Secret: testSecret, TTL: time.Hour})
	return svc, authn
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, cookie, err := svc.Login(ctx, "admin@example.test", "pw", "ar")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if cookie == "" {
		t.Fatal("expected a cookie value")
	}

	got, err := svc.Authenticate(ctx, cookie)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("expected session %q, got %q", sess.ID, got.ID)
	}
	if got.Token != "bearer-1" {
		t.Errorf("expected bearer token, got %q", got.Token)
	}
	if got.Locale != "ar" {
		t.Errorf("expected locale ar, got %q", got.Locale)
	}
	if !got.HasModule("areas") || got.HasModule("blogs") {
		t.Errorf("unexpected modules: %v", got.Modules)
	}
}

func TestLoginFailureStoresNothing(t *testing.T) {
	svc, authn := newTestService(t)
	authn.err = &backend.Error{Status: 422, Message: "Invalid credentials"}

	var events int
	svc.OnAuthChange(func(Event) { events++ })

	_, _, err := svc.Login(context.Background(), "admin@example.test", "bad", "en")
	if err == nil {
		t.Fatal("expected login error")
	}
	if backend.Message(err) != "Invalid credentials" {
		t.Errorf("expected backend message, got %q", backend.Message(err))
	}
	if events != 0 {
		t.Errorf("expected no auth events, got %d", events)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrInvalidCookie) {
		t.Errorf("expected ErrInvalidCookie, got %v", err)
	}
}

func TestTokenFromContext(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Token(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound without session, got %v", err)
	}

	sess, _, err := svc.Login(ctx, "a", "b", "en")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	token, err := svc.Token(NewContext(ctx, sess))
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "bearer-1" {
		t.Errorf("expected bearer-1, got %q", token)
	}
}

func TestLogoutRevokesCookie(t *testing.T) {
	svc, authn := newTestService(t)
	ctx := context.Background()

	sess, cookie, err := svc.Login(ctx, "a", "b", "en")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	var got []Event
	svc.OnAuthChange(func(ev Event) { got = append(got, ev) })

	if err := svc.Logout(ctx, cookie); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if authn.logouts != 1 || authn.logoutID != sess.ID {
		t.Errorf("expected backend logout for %q, got %d calls for %q", sess.ID, authn.logouts, authn.logoutID)
	}
	if _, err := svc.Authenticate(ctx, cookie); !errors.Is(err, ErrRevoked) {
		t.Errorf("expected ErrRevoked after logout, got %v", err)
	}
	if len(got) != 1 || got[0].Kind != EventLogout || got[0].User.ID != "7" {
		t.Errorf("unexpected events: %+v", got)
	}
}

func TestLogoutIgnoresInvalidCookie(t *testing.T) {
	svc, authn := newTestService(t)
	if err := svc.Logout(context.Background(), "garbage"); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if authn.logouts != 0 {
		t.Errorf("expected no backend logout, got %d", authn.logouts)
	}
}

func TestUnauthorizedInvalidatesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, cookie, err := svc.Login(ctx, "a", "b", "en")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	var kinds []EventKind
	svc.OnAuthChange(func(ev Event) { kinds = append(kinds, ev.Kind) })

	svc.Unauthorized(NewContext(ctx, sess))

	if _, err := svc.Authenticate(ctx, cookie); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after invalidation, got %v", err)
	}
	if len(kinds) != 1 || kinds[0] != EventInvalidated {
		t.Errorf("expected one invalidated event, got %v", kinds)
	}

	// A second rejection for the same session is a no-op.
	svc.Unauthorized(NewContext(ctx, sess))
	if len(kinds) != 1 {
		t.Errorf("expected no further events, got %v", kinds)
	}
}

func TestExpiredSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Login(ctx, "a", "b", "en")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Get(ctx, sess.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestUpdateUserAndLocale(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Login(ctx, "a", "b", "en")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	var updated model.User
	svc.OnAuthChange(func(ev Event) {
		if ev.Kind == EventUpdated {
			updated = ev.User
		}
	})

	user := model.User{ID: "7", Name: "Renamed", Email: "new@example.test"}
	if err := svc.UpdateUser(ctx, sess.ID, user); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if err := svc.SetLocale(ctx, sess.ID, "ar"); err != nil {
		t.Fatalf("SetLocale: %v", err)
	}

	got, err := svc.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.User.Name != "Renamed" || got.Locale != "ar" {
		t.Errorf("unexpected session: %+v", got)
	}
	if updated.Name != "Renamed" {
		t.Errorf("expected updated event, got %+v", updated)
	}
}

func TestOnAuthChangeUnsubscribe(t *testing.T) {
	svc, _ := newTestService(t)

	var calls int
	unsubscribe := svc.OnAuthChange(func(Event) { calls++ })
	if _, _, err := svc.Login(context.Background(), "a", "b", "en"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	unsubscribe()
	if _, _, err := svc.Login(context.Background(), "a", "b", "en"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestLoginFetchesModulesWhenMissing(t *testing.T) {
	svc, authn := newTestService(t)
	authn.result.Modules = nil
	authn.modules = []string{"areas"}
	ctx := context.Background()

	sess, cookie, err := svc.Login(ctx, "admin@example.test", "pw", "en")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if authn.moduleCalls != 1 || authn.moduleToken != "bearer-1" {
		t.Errorf("expected one modules call with the new token, got %d with %q", authn.moduleCalls, authn.moduleToken)
	}

	got, err := svc.Authenticate(ctx, cookie)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if len(got.Modules) != 1 || got.Modules[0] != "areas" {
		t.Errorf("expected stored modules [areas], got %v", got.Modules)
	}
	if got.HasModule("agents") {
		t.Error("expected agents to be denied")
	}
	if sess.ID != got.ID {
		t.Errorf("expected session %s, got %s", sess.ID, got.ID)
	}
}

func TestLoginSkipsModulesWhenListed(t *testing.T) {
	svc, authn := newTestService(t)

	if _, _, err := svc.Login(context.Background(), "admin@example.test", "pw", "en"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if authn.moduleCalls != 0 {
		t.Errorf("expected no modules call, got %d", authn.moduleCalls)
	}
}

func TestLoginFailsWhenModulesFail(t *testing.T) {
	svc, authn := newTestService(t)
	authn.result.Modules = nil
	authn.modulesErr = &backend.Error{Status: 500, Message: "boom"}

	sess, _, err := svc.Login(context.Background(), "admin@example.test", "pw", "en")
	if err == nil {
		t.Fatal("expected login to fail")
	}
	if sess != nil {
		t.Errorf("expected no session, got %+v", sess)
	}
}

func TestLoginWithoutModulesEndpoint(t *testing.T) {
	svc, authn := newTestService(t)
	authn.result.Modules = nil
	authn.modulesErr = &backend.Error{Status: 404, Message: "Not found"}

	sess, _, err := svc.Login(context.Background(), "admin@example.test", "pw", "en")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !sess.HasModule("agents") {
		t.Error("expected unrestricted access")
	}
}
