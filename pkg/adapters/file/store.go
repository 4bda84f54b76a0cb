// Package file provides a ports.StateStore keeping one JSON document per game
// on the local filesystem.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
)

var _ ports.StateStore = (*Store)(nil)

// ErrInvalidID is returned for IDs that are empty or would escape the base directory.
var ErrInvalidID = errors.New("invalid game id")

const ext = ".json"

// Store implements ports.StateStore using the local filesystem.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".tabula/games".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".tabula", "games")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(gameID string) (string, error) {
	if gameID == "" || strings.ContainsAny(gameID, `/\`) || gameID == "." || gameID == ".." {
		return "", fmt.Errorf("%q: %w", gameID, ErrInvalidID)
	}
	return filepath.Join(s.BasePath, gameID+ext), nil
}

// Save persists the game state to a JSON file atomically.
// It writes to a temporary file first, syncs it, and then renames it over the destination.
func (s *Store) Save(ctx context.Context, gameID string, state *domain.GameState) error {
	destPath, err := s.path(gameID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure game directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+gameID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing game file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// Load retrieves the game state from its JSON file.
func (s *Store) Load(ctx context.Context, gameID string) (*domain.GameState, error) {
	filePath, err := s.path(gameID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to read game file: %w", err)
	}

	var state domain.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &state, nil
}

// Delete removes the game file. Deleting a missing game is not an error.
func (s *Store) Delete(ctx context.Context, gameID string) error {
	filePath, err := s.path(gameID)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete game file: %w", err)
	}
	return nil
}

// List returns all stored game IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	games := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		games = append(games, strings.TrimSuffix(name, ext))
	}
	slices.Sort(games)
	return games, nil
}
