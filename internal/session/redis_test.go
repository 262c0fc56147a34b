package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/model"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "proplex:"), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()

	sess := &model.Session{
		ID:        "s1",
		Token:     "bearer",
		User:      model.User{ID: "1", Name: "Admin"},
		Modules:   []string{"blogs"},
		Locale:    "en",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := st.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists("proplex:session:s1") {
		t.Fatal("expected namespaced session key")
	}

	got, err := st.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Token != "bearer" || got.User.Name != "Admin" || len(got.Modules) != 1 {
		t.Errorf("unexpected session: %+v", got)
	}

	if err := st.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreSessionExpires(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()

	sess := &model.Session{ID: "s2", Token: "t", ExpiresAt: time.Now().Add(time.Minute)}
	if err := st.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := st.Get(ctx, "s2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after ttl, got %v", err)
	}
}

func TestRedisStoreRevoke(t *testing.T) {
	st, _ := newRedisStore(t)
	ctx := context.Background()

	revoked, err := st.IsRevoked(ctx, "jti")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("expected jti not revoked")
	}
	if err := st.Revoke(ctx, "jti", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err = st.IsRevoked(ctx, "jti")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected jti revoked")
	}
}

func TestServiceOverRedis(t *testing.T) {
	st, _ := newRedisStore(t)
	authn := &fakeAuthn{result: &backend.LoginResult{Token: "bearer", User: model.User{ID: "1"}}}
	svc := NewService(st, authn, Config{Secret: testSecret, TTL: time.Hour})
	ctx := context.Background()

	_, cookie, err := svc.Login(ctx, "a", "b", "en")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Authenticate(ctx, cookie); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := svc.Logout(ctx, cookie); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, cookie); !errors.Is(err, ErrRevoked) {
		t.Errorf("expected ErrRevoked, got %v", err)
	}
}
