package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/proplex/proplex-admin/internal/model"
)

// SaveSession inserts or replaces a session.
func SaveSession(ctx context.Context, db *sql.DB, s *model.Session) error {
	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encoding session user: %w", err)
	}
	modules := s.Modules
	if modules == nil {
		modules = []string{}
	}
	modulesJSON, err := json.Marshal(modules)
	if err != nil {
		return fmt.Errorf("encoding session modules: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (id, token, user_json, modules_json, locale, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Token, string(userJSON), string(modulesJSON), s.Locale, s.CreatedAt.UTC(), s.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	// Opportunistically clean up expired sessions.
	_, _ = db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())

	return nil
}

// GetSession returns a session by ID, or nil when it does not exist.
func GetSession(ctx context.Context, db *sql.DB, id string) (*model.Session, error) {
	s := &model.Session{}
	var userJSON, modulesJSON string
	err := db.QueryRowContext(ctx,
		`SELECT id, token, user_json, modules_json, locale, created_at, expires_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.Token, &userJSON, &modulesJSON, &s.Locale, &s.CreatedAt, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	if err := json.Unmarshal([]byte(userJSON), &s.User); err != nil {
		return nil, fmt.Errorf("decoding session user: %w", err)
	}
	if err := json.Unmarshal([]byte(modulesJSON), &s.Modules); err != nil {
		return nil, fmt.Errorf("decoding session modules: %w", err)
	}
	return s, nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func DeleteSession(ctx context.Context, db *sql.DB, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// CountSessions returns the number of stored sessions, expired ones included.
func CountSessions(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return count, nil
}
