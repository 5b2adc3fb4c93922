package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/robocombat/internal/robot"
)

// RobotStats holds the match counters of one robot.
type RobotStats struct {
	Robot         robot.Identity
	MatchesPlayed int
	MatchesWon    int
	UpdatedAt     time.Time
}

// StatsRepository управляет статистикой роботов в БД.
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository создаёт новый StatsRepository.
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// RecordPlayed increments matches_played for every robot in one transaction.
func (r *StatsRepository) RecordPlayed(ctx context.Context, robots []robot.Identity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		// Rollback после Commit возвращает ошибку, это ожидаемо
		_ = tx.Rollback(ctx)
	}()

	for _, id := range robots {
		if _, err := tx.Exec(ctx, `
			INSERT INTO robot_stats (owner, robot, matches_played, matches_won)
			VALUES ($1, $2, 1, 0)
			ON CONFLICT (owner, robot) DO UPDATE
			SET matches_played = robot_stats.matches_played + 1, updated_at = now()`,
			id.Owner, id.Name,
		); err != nil {
			return fmt.Errorf("recording played for %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing played stats: %w", err)
	}
	return nil
}

// RecordWon increments matches_won for winner.
func (r *StatsRepository) RecordWon(ctx context.Context, winner robot.Identity) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO robot_stats (owner, robot, matches_played, matches_won)
		VALUES ($1, $2, 0, 1)
		ON CONFLICT (owner, robot) DO UPDATE
		SET matches_won = robot_stats.matches_won + 1, updated_at = now()`,
		winner.Owner, winner.Name,
	)
	if err != nil {
		return fmt.Errorf("recording win for %s: %w", winner, err)
	}
	return nil
}

// Get returns the counters of one robot. A robot that never played has
// zero counters.
func (r *StatsRepository) Get(ctx context.Context, id robot.Identity) (RobotStats, error) {
	st := RobotStats{Robot: id}
	err := r.db.QueryRow(ctx, `
		SELECT matches_played, matches_won, updated_at
		FROM robot_stats WHERE owner = $1 AND robot = $2`,
		id.Owner, id.Name,
	).Scan(&st.MatchesPlayed, &st.MatchesWon, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return st, nil
		}
		return st, fmt.Errorf("querying stats for %s: %w", id, err)
	}
	return st, nil
}

// ListByOwner returns the counters of every robot of owner, sorted by name.
func (r *StatsRepository) ListByOwner(ctx context.Context, owner string) ([]RobotStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT robot, matches_played, matches_won, updated_at
		FROM robot_stats WHERE owner = $1
		ORDER BY robot`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying stats for owner %q: %w", owner, err)
	}
	defer rows.Close()

	var out []RobotStats
	for rows.Next() {
		st := RobotStats{Robot: robot.Identity{Owner: owner}}
		if err := rows.Scan(&st.Robot.Name, &st.MatchesPlayed, &st.MatchesWon, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stats rows: %w", err)
	}
	return out, nil
}
