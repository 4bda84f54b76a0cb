// Package sqlite provides a SQLite-backed ports.StateStore for single-node
// deployments that need games to survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
	_ "modernc.org/sqlite"
)

var _ ports.StateStore = (*Store)(nil)

//go:embed schema.sql
var schema string

// Store persists game states in SQLite, one row per game.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts or replaces the game row.
func (s *Store) Save(ctx context.Context, gameID string, state *domain.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(gameID) == "" {
		return fmt.Errorf("game id is required")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO games (id, state, sequence, finished, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   state = excluded.state,
		   sequence = excluded.sequence,
		   finished = excluded.finished,
		   updated_at = excluded.updated_at`,
		gameID, string(data), state.Sequence, state.Finished, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save game %s: %w", gameID, err)
	}
	return nil
}

// Load reads and decodes the game row.
func (s *Store) Load(ctx context.Context, gameID string) (*domain.GameState, error) {
	var data string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT state FROM games WHERE id = ?`, gameID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	var state domain.GameState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

// Delete removes the game row.
func (s *Store) Delete(ctx context.Context, gameID string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, gameID); err != nil {
		return fmt.Errorf("delete game %s: %w", gameID, err)
	}
	return nil
}

// List returns the stored game IDs, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id FROM games ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		games = append(games, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}
