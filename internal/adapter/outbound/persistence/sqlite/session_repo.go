package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uxwatch/uxwatch/internal/domain/port/outbound"
)

// SessionRepo implements outbound.SessionStore using SQLite. The session blob
// is a single row; storing replaces whatever was there before.
type SessionRepo struct {
	db *sql.DB
}

var _ outbound.SessionStore = (*SessionRepo)(nil)

// NewSessionRepo creates a new SessionRepo backed by the given store.
func NewSessionRepo(store *Store) *SessionRepo {
	return &SessionRepo{db: store.DB}
}

// Load returns the persisted session blob, or ErrSessionNotFound when no
// session has been stored yet.
func (r *SessionRepo) Load(ctx context.Context) ([]byte, error) {
	const q = `SELECT data FROM sessions WHERE id = 1`

	var data []byte
	err := r.db.QueryRowContext(ctx, q).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, outbound.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return data, nil
}

// Store persists the session blob, replacing any previous one.
func (r *SessionRepo) Store(ctx context.Context, data []byte) error {
	const q = `INSERT INTO sessions (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, q, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}
