package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tabula/internal/logging"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates game access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	engine ports.GameEngine
	store  ports.StateStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger

	listenersMu sync.RWMutex
	listeners   []AppliedFunc
}

// AppliedFunc observes an accepted move once its result is persisted.
// It runs while the game is still locked, so calls for one game are ordered.
type AppliedFunc func(ctx context.Context, gameID string, move domain.Move, before, after *domain.GameState)

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager running games on engine and persisting them in store.
func NewManager(engine ports.GameEngine, store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		engine:  engine,
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(gameID) after unlocking.
func (m *Manager) acquire(gameID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[gameID]
	if !exists {
		entry = &lockEntry{}
		m.locks[gameID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[gameID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, gameID)
	}
}

// Create starts a new game under a fresh ID and persists its first snapshot.
func (m *Manager) Create(ctx context.Context, setup domain.SetupState) (string, *domain.GameState, error) {
	id := uuid.NewString()
	var state *domain.GameState
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		state, err = m.engine.Start(ctx, setup)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, id, state); err != nil {
			return fmt.Errorf("failed to persist new game: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	m.logger.Info("game created", "game_id", id, "players", len(setup.Players))
	return id, state, nil
}

// Load retrieves an existing game from the store.
func (m *Manager) Load(ctx context.Context, gameID string) (*domain.GameState, error) {
	var state *domain.GameState
	err := m.WithLock(ctx, gameID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, gameID)
		return err
	})
	return state, err
}

// Save persists the game state.
func (m *Manager) Save(ctx context.Context, gameID string, state *domain.GameState) error {
	return m.WithLock(ctx, gameID, func(ctx context.Context) error {
		return m.store.Save(ctx, gameID, state)
	})
}

// Delete removes the game from the store.
func (m *Manager) Delete(ctx context.Context, gameID string) error {
	return m.WithLock(ctx, gameID, func(ctx context.Context) error {
		return m.store.Delete(ctx, gameID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Selection loads a game and computes the prompt for a player.
func (m *Manager) Selection(ctx context.Context, gameID string, player int) (*domain.MoveResponse, error) {
	state, err := m.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return m.engine.CurrentSelection(ctx, state, player)
}

// PlayerState loads a game and returns the view of one player.
func (m *Manager) PlayerState(ctx context.Context, gameID string, player int) (*domain.PlayerState, error) {
	state, err := m.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	views, err := m.engine.PlayerStates(ctx, state)
	if err != nil {
		return nil, err
	}
	for i := range views {
		if views[i].Position == player {
			return &views[i], nil
		}
	}
	return nil, fmt.Errorf("game %s: %w", gameID, domain.ErrInvalidPlayer)
}

// Move loads the game, processes the move and persists the result when it was
// accepted, all while holding the game's lock. Rejections are returned in-band
// and leave the stored state untouched.
func (m *Manager) Move(ctx context.Context, gameID string, move domain.Move) (*domain.MoveResult, error) {
	var result *domain.MoveResult
	err := m.WithLock(ctx, gameID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, gameID)
		if err != nil {
			return err
		}
		result, err = m.engine.ProcessMove(ctx, state, move)
		if err != nil {
			return err
		}
		if !result.Accepted() {
			return nil
		}
		if err := m.store.Save(ctx, gameID, result.State); err != nil {
			return fmt.Errorf("failed to persist move: %w", err)
		}
		m.notify(ctx, gameID, result.Response.Move, state, result.State)
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrGameNotFound) {
			m.logger.Error("move failed", "game_id", gameID, "action", move.Action, "player", move.Player, "err", err)
		}
		return nil, err
	}
	return result, nil
}

// OnApplied registers fn to observe every accepted move.
func (m *Manager) OnApplied(fn AppliedFunc) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify(ctx context.Context, gameID string, move domain.Move, before, after *domain.GameState) {
	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	for _, fn := range m.listeners {
		fn(ctx, gameID, move, before, after)
	}
}

// WithLock executes a function while holding the lock for the game.
func (m *Manager) WithLock(ctx context.Context, gameID string, fn func(context.Context) error) error {
	entry := m.acquire(gameID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(gameID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, gameID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"game_id", gameID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
