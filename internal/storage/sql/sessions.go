package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/storage"
)

const sessionColumns = `id, status, current_player_id, board, bag, version, consecutive_skips,
	end_reason, created_at, updated_at, finished_at`

type sessionRow struct {
	board, bag string
	createdAt  int64
	updatedAt  int64
	finishedAt sql.NullInt64
}

func encodeSession(session *model.Session) (board, bag string, finishedAt sql.NullInt64, err error) {
	b, err := json.Marshal(session.Board)
	if err != nil {
		return "", "", finishedAt, err
	}
	g, err := json.Marshal(session.Bag)
	if err != nil {
		return "", "", finishedAt, err
	}
	if session.FinishedAt != nil {
		finishedAt = sql.NullInt64{Int64: toNanos(*session.FinishedAt), Valid: true}
	}
	return string(b), string(g), finishedAt, nil
}

func scanSession(row interface{ Scan(...any) error }) (*model.Session, error) {
	var (
		session model.Session
		r       sessionRow
	)
	err := row.Scan(&session.ID, &session.Status, &session.CurrentPlayerID, &r.board, &r.bag,
		&session.Version, &session.ConsecutiveSkips, &session.EndReason,
		&r.createdAt, &r.updatedAt, &r.finishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(r.board), &session.Board); err != nil {
		return nil, fmt.Errorf("decode board of %s: %w", session.ID, err)
	}
	if err := json.Unmarshal([]byte(r.bag), &session.Bag); err != nil {
		return nil, fmt.Errorf("decode bag of %s: %w", session.ID, err)
	}
	session.CreatedAt = fromNanos(r.createdAt)
	session.UpdatedAt = fromNanos(r.updatedAt)
	if r.finishedAt.Valid {
		t := fromNanos(r.finishedAt.Int64)
		session.FinishedAt = &t
	}
	return &session, nil
}

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	board, bag, finishedAt, err := encodeSession(session)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		session.ID, session.Status, session.CurrentPlayerID, board, bag, session.Version,
		session.ConsecutiveSkips, session.EndReason,
		toNanos(session.CreatedAt), toNanos(session.UpdatedAt), finishedAt)
	if isUniqueViolation(err) {
		return model.ErrSessionExists
	}
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`), id)
	return scanSession(row)
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*model.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *Storage) sessionExists(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, id model.SessionID) error {
	var n int
	if err := q.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM sessions WHERE id = ?`), id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (s *Storage) ListMembers(ctx context.Context, id model.SessionID) ([]*model.Member, error) {
	if err := s.sessionExists(ctx, s.db, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT session_id, player_id, seq, score, rack, joined_at
		FROM session_members WHERE session_id = ? ORDER BY seq`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*model.Member{}
	for rows.Next() {
		var (
			m        model.Member
			rack     string
			joinedAt int64
		)
		if err := rows.Scan(&m.SessionID, &m.PlayerID, &m.Seq, &m.Score, &rack, &joinedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rack), &m.Rack); err != nil {
			return nil, fmt.Errorf("decode rack: %w", err)
		}
		m.JoinedAt = fromNanos(joinedAt)
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (s *Storage) ListMoves(ctx context.Context, id model.SessionID) ([]*model.Move, error) {
	if err := s.sessionExists(ctx, s.db, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, session_id, player_id, seq, word, placements, score, created_at
		FROM moves WHERE session_id = ? ORDER BY seq, created_at`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	moves := []*model.Move{}
	for rows.Next() {
		var (
			m          model.Move
			placements string
			createdAt  int64
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.PlayerID, &m.Seq, &m.Word, &placements, &m.Score, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(placements), &m.Placements); err != nil {
			return nil, fmt.Errorf("decode placements: %w", err)
		}
		m.CreatedAt = fromNanos(createdAt)
		moves = append(moves, &m)
	}
	return moves, rows.Err()
}

// Apply commits a changeset in one transaction. The session row is updated
// only if its stored version is the one the changeset was built from.
func (s *Storage) Apply(ctx context.Context, cs *storage.Changeset) error {
	session := cs.Session
	board, bag, finishedAt, err := encodeSession(session)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE sessions SET
				status = ?, current_player_id = ?, board = ?, bag = ?, version = ?,
				consecutive_skips = ?, end_reason = ?, updated_at = ?, finished_at = ?
			WHERE id = ? AND version = ?`),
			session.Status, session.CurrentPlayerID, board, bag, session.Version,
			session.ConsecutiveSkips, session.EndReason, toNanos(session.UpdatedAt), finishedAt,
			session.ID, session.Version-1)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			if err := s.sessionExists(ctx, tx, session.ID); err != nil {
				return err
			}
			return model.ErrVersionConflict
		}

		for _, m := range cs.Members {
			rack, err := json.Marshal(m.Rack)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, s.q(`
				INSERT INTO session_members (session_id, player_id, seq, score, rack, joined_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (session_id, player_id) DO UPDATE SET
					score = excluded.score,
					rack = excluded.rack`),
				m.SessionID, m.PlayerID, m.Seq, m.Score, string(rack), toNanos(m.JoinedAt))
			if err != nil {
				return err
			}
		}

		if mv := cs.Move; mv != nil {
			placements, err := json.Marshal(mv.Placements)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, s.q(`
				INSERT INTO moves (id, session_id, player_id, seq, word, placements, score, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
				mv.ID, mv.SessionID, mv.PlayerID, mv.Seq, mv.Word, string(placements), mv.Score,
				toNanos(mv.CreatedAt))
			if err != nil {
				return err
			}
		}
		return nil
	})
}
