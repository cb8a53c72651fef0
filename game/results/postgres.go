package results

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/connect-n/game/engine"
	"github.com/wricardo/connect-n/game/service"
)

// PostgresStore persists finished games in the game_results table
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore connects to dsn and verifies the connection
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not connect to postgres: %w", err)
	}

	return &PostgresStore{
		pool:   pool,
		logger: log.With().Str("component", "PostgresStore").Logger(),
	}, nil
}

const createResultsTable = `
	CREATE TABLE IF NOT EXISTS game_results (
		id            UUID PRIMARY KEY,
		session_id    TEXT NOT NULL,
		config_name   TEXT NOT NULL,
		winner        TEXT NOT NULL,
		winning_rule  TEXT NOT NULL,
		moves         INTEGER NOT NULL,
		board_columns INTEGER NOT NULL,
		board_rows    INTEGER NOT NULL,
		win_condition INTEGER NOT NULL,
		finished_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_game_results_finished_at ON game_results(finished_at);
`

// AutoMigrate creates the results table when missing
func (s *PostgresStore) AutoMigrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createResultsTable); err != nil {
		return fmt.Errorf("failed to migrate game_results: %w", err)
	}
	return nil
}

// Record upserts a finished game
func (s *PostgresStore) Record(ctx context.Context, result *service.GameResult) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_results (id, session_id, config_name, winner, winning_rule,
			moves, board_columns, board_rows, win_condition, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			winner       = EXCLUDED.winner,
			winning_rule = EXCLUDED.winning_rule,
			moves        = EXCLUDED.moves,
			finished_at  = EXCLUDED.finished_at
	`, result.ID, result.SessionID, result.ConfigName, result.Winner.String(), string(result.WinningRule),
		result.Moves, result.Columns, result.Rows, result.WinCondition, result.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to record result %s: %w", result.ID, err)
	}

	s.logger.Debug().Str("session", result.SessionID).Str("winner", result.Winner.String()).Msg("result recorded")
	return nil
}

// Recent returns the latest results, newest first
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*service.GameResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, session_id, config_name, winner, winning_rule,
			moves, board_columns, board_rows, win_condition, finished_at
		FROM game_results
		ORDER BY finished_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	out := []*service.GameResult{}
	for rows.Next() {
		var (
			r      service.GameResult
			winner string
			rule   string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ConfigName, &winner, &rule,
			&r.Moves, &r.Columns, &r.Rows, &r.WinCondition, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.Winner, err = engine.ParsePlayer(winner)
		if err != nil {
			return nil, err
		}
		r.WinningRule = engine.RuleKind(rule)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}
