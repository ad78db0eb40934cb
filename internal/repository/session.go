package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PgSessionRepository implements SessionRepository using pgx. Flash messages
// live in a jsonb column on the session row so a drain is a single
// UPDATE ... RETURNING and entries can never render twice.
type PgSessionRepository struct{}

// NewPgSessionRepository creates a new PgSessionRepository.
func NewPgSessionRepository() *PgSessionRepository {
	return &PgSessionRepository{}
}

// Create inserts a new session row.
func (r *PgSessionRepository) Create(ctx context.Context, db DBTX, s *domain.Session) error {
	_, err := db.Exec(ctx,
		`INSERT INTO admin_sessions (id, user_id, created_at, expires_at, flash)
		 VALUES ($1, $2, $3, $4, '[]'::jsonb)`,
		s.ID, s.UserID, s.CreatedAt, s.ExpiresAt)
	return err
}

// Find returns a session by token, or nil if not found.
func (r *PgSessionRepository) Find(ctx context.Context, db DBTX, id string) (*domain.Session, error) {
	s := &domain.Session{}
	err := db.QueryRow(ctx,
		`SELECT id, user_id, created_at, expires_at FROM admin_sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes a session.
func (r *PgSessionRepository) Delete(ctx context.Context, db DBTX, id string) error {
	_, err := db.Exec(ctx, `DELETE FROM admin_sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes sessions past their expiry.
func (r *PgSessionRepository) DeleteExpired(ctx context.Context, db DBTX, now time.Time) error {
	_, err := db.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at < $1`, now)
	return err
}

// AppendFlash pushes a flash message onto the session's queue.
func (r *PgSessionRepository) AppendFlash(ctx context.Context, db DBTX, id string, msg domain.FlashMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx,
		`UPDATE admin_sessions SET flash = flash || $2::jsonb WHERE id = $1`,
		id, string(payload))
	return err
}

// DrainFlash atomically returns and clears the session's flash queue.
func (r *PgSessionRepository) DrainFlash(ctx context.Context, db DBTX, id string) ([]domain.FlashMessage, error) {
	var raw []byte
	err := db.QueryRow(ctx,
		`UPDATE admin_sessions SET flash = '[]'::jsonb WHERE id = $1 RETURNING (
			SELECT flash FROM admin_sessions WHERE id = $1
		)`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var msgs []domain.FlashMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return nil, err
		}
	}
	return msgs, nil
}
