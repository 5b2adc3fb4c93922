package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/robocombat/internal/match"
	"github.com/udisondev/robocombat/internal/robot"
)

// MatchSummary is a persisted match without per-game detail.
type MatchSummary struct {
	ID         uuid.UUID
	Name       string
	Games      int
	Rounds     int
	Winner     *robot.Identity
	Wins       []match.Tally
	StartedAt  time.Time
	FinishedAt time.Time
}

// ErrMatchNotFound is returned by MatchRepository.Load for unknown ids.
var ErrMatchNotFound = errors.New("match not found")

// MatchRepository stores finished matches.
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository создаёт новый MatchRepository.
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// SaveResult inserts res and its win tally in one transaction.
func (r *MatchRepository) SaveResult(ctx context.Context, res *match.Result) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var winnerOwner, winnerRobot *string
	if res.Winner != nil {
		winnerOwner, winnerRobot = &res.Winner.Owner, &res.Winner.Name
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO match_results (id, name, games, rounds_per_game, winner_owner, winner_robot, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		res.ID, res.Name, len(res.Games), res.Rounds, winnerOwner, winnerRobot, res.Started, res.Finished,
	); err != nil {
		return fmt.Errorf("inserting match %s: %w", res.ID, err)
	}

	for i, t := range res.Wins {
		if _, err := tx.Exec(ctx, `
			INSERT INTO match_wins (match_id, position, owner, robot, wins)
			VALUES ($1, $2, $3, $4, $5)`,
			res.ID, i, t.Robot.Owner, t.Robot.Name, t.Wins,
		); err != nil {
			return fmt.Errorf("inserting wins of %s for match %s: %w", t.Robot, res.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing match %s: %w", res.ID, err)
	}
	return nil
}

// Load returns the summary of match id.
func (r *MatchRepository) Load(ctx context.Context, id uuid.UUID) (*MatchSummary, error) {
	s := &MatchSummary{ID: id}
	var winnerOwner, winnerRobot *string
	err := r.db.QueryRow(ctx, `
		SELECT name, games, rounds_per_game, winner_owner, winner_robot, started_at, finished_at
		FROM match_results WHERE id = $1`, id,
	).Scan(&s.Name, &s.Games, &s.Rounds, &winnerOwner, &winnerRobot, &s.StartedAt, &s.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("loading match %s: %w", id, ErrMatchNotFound)
		}
		return nil, fmt.Errorf("loading match %s: %w", id, err)
	}
	if winnerOwner != nil && winnerRobot != nil {
		s.Winner = &robot.Identity{Owner: *winnerOwner, Name: *winnerRobot}
	}

	rows, err := r.db.Query(ctx, `
		SELECT owner, robot, wins FROM match_wins
		WHERE match_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying wins for match %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t match.Tally
		if err := rows.Scan(&t.Robot.Owner, &t.Robot.Name, &t.Wins); err != nil {
			return nil, fmt.Errorf("scanning wins row: %w", err)
		}
		s.Wins = append(s.Wins, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating wins rows: %w", err)
	}
	return s, nil
}
