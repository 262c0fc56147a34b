package store

import (
	"context"
	"testing"
	"time"

	"github.com/proplex/proplex-admin/internal/db"
	"github.com/proplex/proplex-admin/internal/model"
)

func testSession(id string, expiresIn time.Duration) *model.Session {
	now := time.Now()
	return &model.Session{
		ID:        id,
		Token:     "backend-token-" + id,
		User:      model.User{ID: "7", Name: "Mona", Email: "mona@example.test"},
		Modules:   []string{"areas", "blogs"},
		Locale:    "ar",
		CreatedAt: now,
		ExpiresAt: now.Add(expiresIn),
	}
}

func TestSaveAndGetSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := SaveSession(ctx, database, testSession("s1", time.Hour)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := GetSession(ctx, database, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Token != "backend-token-s1" {
		t.Errorf("expected token 'backend-token-s1', got %q", got.Token)
	}
	if got.User.Name != "Mona" {
		t.Errorf("expected user 'Mona', got %q", got.User.Name)
	}
	if len(got.Modules) != 2 || got.Modules[1] != "blogs" {
		t.Errorf("unexpected modules: %v", got.Modules)
	}
	if got.Locale != "ar" {
		t.Errorf("expected locale 'ar', got %q", got.Locale)
	}
}

func TestGetMissingSession(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetSession(context.Background(), database, "missing")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil session, got %+v", got)
	}
}

func TestSaveSessionReplaces(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	s := testSession("s1", time.Hour)
	SaveSession(ctx, database, s)
	s.User.Name = "Renamed"
	if err := SaveSession(ctx, database, s); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, _ := GetSession(ctx, database, "s1")
	if got.User.Name != "Renamed" {
		t.Errorf("expected replaced user name, got %q", got.User.Name)
	}
	count, _ := CountSessions(ctx, database)
	if count != 1 {
		t.Errorf("expected 1 session, got %d", count)
	}
}

func TestSaveSessionPurgesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	SaveSession(ctx, database, testSession("old", -time.Hour))
	SaveSession(ctx, database, testSession("new", time.Hour))

	old, _ := GetSession(ctx, database, "old")
	if old != nil {
		t.Error("expected expired session to be purged")
	}
	count, _ := CountSessions(ctx, database)
	if count != 1 {
		t.Errorf("expected 1 session, got %d", count)
	}
}

func TestDeleteSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	SaveSession(ctx, database, testSession("s1", time.Hour))
	if err := DeleteSession(ctx, database, "s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	got, _ := GetSession(ctx, database, "s1")
	if got != nil {
		t.Error("expected session to be deleted")
	}

	if err := DeleteSession(ctx, database, "s1"); err != nil {
		t.Errorf("deleting missing session should not fail: %v", err)
	}
}
