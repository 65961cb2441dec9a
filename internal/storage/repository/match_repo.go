package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/spellduel/internal/storage/models"
)

// MatchRepository handles database operations for match records.
type MatchRepository interface {
	// Create inserts a new match.
	Create(ctx context.Context, match *models.Match) error

	// GetByID retrieves a match by its ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.Match, error)

	// SetStatus moves an unfinished match to status.
	SetStatus(ctx context.Context, id string, status models.MatchStatus) error

	// Finish records the winner. Finishing a finished match changes nothing
	// and reports false.
	Finish(ctx context.Context, id, winnerID string, at time.Time) (bool, error)

	// ListByStatus retrieves matches in a given status, newest first.
	ListByStatus(ctx context.Context, status models.MatchStatus, limit int) ([]*models.Match, error)
}

type matchRepository struct {
	db DBTX
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db DBTX) MatchRepository {
	return &matchRepository{db: db}
}

const matchColumns = `id, player1_id, player2_id, player1_deck_id, player2_deck_id, status, winner_id, created_at, finished_at, pools`

func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	if match.Status == "" {
		match.Status = models.MatchWaiting
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (id, player1_id, player2_id, player1_deck_id, player2_deck_id, status, created_at, pools)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		match.ID, match.Player1ID, match.Player2ID, match.Player1DeckID, match.Player2DeckID,
		string(match.Status), match.CreatedAt, string(match.Pools),
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

func (r *matchRepository) SetStatus(ctx context.Context, id string, status models.MatchStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = ? WHERE id = ? AND status != 'finished'`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}
	return requireAffected(result, "match", id)
}

func (r *matchRepository) Finish(ctx context.Context, id, winnerID string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE matches SET status = 'finished', winner_id = ?, finished_at = ?
		WHERE id = ? AND status != 'finished'`,
		winnerID, at.UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to finish match: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *matchRepository) ListByStatus(ctx context.Context, status models.MatchStatus, limit int) ([]*models.Match, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE status = ? ORDER BY created_at DESC LIMIT ?`,
		string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}

func scanMatch(s scanner) (*models.Match, error) {
	var (
		m        models.Match
		status   string
		winner   sql.NullString
		finished sql.NullTime
		pools    string
	)
	if err := s.Scan(&m.ID, &m.Player1ID, &m.Player2ID, &m.Player1DeckID, &m.Player2DeckID,
		&status, &winner, &m.CreatedAt, &finished, &pools); err != nil {
		return nil, err
	}
	if pools != "" {
		m.Pools = []byte(pools)
	}
	m.Status = models.MatchStatus(status)
	if winner.Valid {
		m.WinnerID = &winner.String
	}
	if finished.Valid {
		t := finished.Time
		m.FinishedAt = &t
	}
	return &m, nil
}
