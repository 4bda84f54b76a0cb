package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
)

type mirrorMiddleware struct {
	next   ports.StateStore
	mirror ports.StateStore
}

// NewMirrorMiddleware copies every save and delete to mirror after the
// wrapped store succeeded. Reads are served by the wrapped store only.
func NewMirrorMiddleware(mirror ports.StateStore) Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &mirrorMiddleware{next: next, mirror: mirror}
	}
}

func (m *mirrorMiddleware) Save(ctx context.Context, gameID string, state *domain.GameState) error {
	if err := m.next.Save(ctx, gameID, state); err != nil {
		return err
	}
	if err := m.mirror.Save(ctx, gameID, state); err != nil {
		return fmt.Errorf("mirror save: %w", err)
	}
	return nil
}

func (m *mirrorMiddleware) Load(ctx context.Context, gameID string) (*domain.GameState, error) {
	return m.next.Load(ctx, gameID)
}

func (m *mirrorMiddleware) Delete(ctx context.Context, gameID string) error {
	if err := m.next.Delete(ctx, gameID); err != nil {
		return err
	}
	if err := m.mirror.Delete(ctx, gameID); err != nil && !errors.Is(err, domain.ErrGameNotFound) {
		return fmt.Errorf("mirror delete: %w", err)
	}
	return nil
}

func (m *mirrorMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
