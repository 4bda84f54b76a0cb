package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
)

// Mask replaces masked values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks player attributes and
// settings whose keys match one of the patterns. Masking is one-way: use it
// for audit or analytics stores, never for the store the engine replays from.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, gameID string, state *domain.GameState) error {
	// The engine may still hold state, so mask a copy.
	cloned := state.Snapshot()
	cloned.Settings = deepCopyMap(cloned.Settings)
	maskMap(cloned.Settings, m.patterns)
	for i := range cloned.Players {
		cloned.Players[i].Attributes = deepCopyMap(cloned.Players[i].Attributes)
		maskMap(cloned.Players[i].Attributes, m.patterns)
	}
	return m.next.Save(ctx, gameID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, gameID string) (*domain.GameState, error) {
	return m.next.Load(ctx, gameID)
}

func (m *piiMiddleware) Delete(ctx context.Context, gameID string) error {
	return m.next.Delete(ctx, gameID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if sub, ok := v.(map[string]any); ok && !masked {
			maskMap(sub, patterns)
		}
	}
}
