package session

import (
	"context"
	"database/sql"
	"time"

	"github.com/proplex/proplex-admin/internal/model"
	"github.com/proplex/proplex-admin/internal/store"
)

// Store persists sessions and revoked cookie ids.
type Store interface {
	Save(ctx context.Context, sess *model.Session) error
	// Get returns ErrNotFound when the session does not exist.
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SQLStore keeps sessions in the SQLite database.
type SQLStore struct {
	DB *sql.DB
}

// NewSQLStore creates a SQLite-backed store.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Save(ctx context.Context, sess *model.Session) error {
	return store.SaveSession(ctx, s.DB, sess)
}

func (s *SQLStore) Get(ctx context.Context, id string) (*model.Session, error) {
	sess, err := store.GetSession(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	return store.DeleteSession(ctx, s.DB, id)
}

func (s *SQLStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return store.RevokeToken(ctx, s.DB, jti, expiresAt)
}

func (s *SQLStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return store.IsTokenRevoked(ctx, s.DB, jti)
}
