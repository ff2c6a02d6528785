package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// SessionRepository stores mining session snapshots as JSONB
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// SaveSession upserts the full snapshot of a session
func (r *SessionRepository) SaveSession(ctx context.Context, s *domain.MiningSession) error {
	return saveSession(ctx, r.db, s)
}

func saveSession(ctx context.Context, db execer, s *domain.MiningSession) error {
	snapshot, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeSession, err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO mining_sessions (session_id, user_id, land_id, resource, status, snapshot, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (session_id) DO UPDATE
		SET status = EXCLUDED.status,
			snapshot = EXCLUDED.snapshot,
			updated_at = NOW()
	`, s.ID, s.UserID, s.LandID, string(s.Resource), string(s.Status), snapshot, s.StartedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSaveSession, err)
	}
	return nil
}

// CloseSession releases the tools, credits the output and stores the closed
// snapshot in one transaction. The session row is locked first; a row that is
// already closed means an earlier close committed, and nothing is applied again.
func (r *SessionRepository) CloseSession(ctx context.Context, req domain.SessionClose) error {
	s := req.Session
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM mining_sessions WHERE session_id = $1 FOR UPDATE`, s.ID).Scan(&status)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", ErrMsgFailedToLockSession, err)
		}
		if status == string(domain.SessionClosed) {
			return nil
		}

		if req.ReleaseTools {
			if err := releaseTools(ctx, tx, s.UserID, s.ToolIDs, req.ToolLoss); err != nil {
				return err
			}
		}
		if req.Credit.IsPositive() {
			if err := creditEntry(ctx, tx, s.UserID, s.Resource, req.Credit); err != nil {
				return err
			}
		}
		return saveSession(ctx, tx, s)
	})
}

// ListOpenSessions returns every session that is active or stopping
func (r *SessionRepository) ListOpenSessions(ctx context.Context) ([]*domain.MiningSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT snapshot
		FROM mining_sessions
		WHERE status <> $1
		ORDER BY started_at, session_id
	`, string(domain.SessionClosed))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListSessions, err)
	}
	defer rows.Close()

	var sessions []*domain.MiningSession
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListSessions, err)
		}
		var s domain.MiningSession
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeSession, err)
		}
		sessions = append(sessions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListSessions, err)
	}
	return sessions, nil
}

// GetSession returns the latest snapshot of any session, closed ones included
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*domain.MiningSession, error) {
	var raw []byte
	if err := r.db.QueryRow(ctx, `SELECT snapshot FROM mining_sessions WHERE session_id = $1`, sessionID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListSessions, err)
	}
	var s domain.MiningSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeSession, err)
	}
	return &s, nil
}
