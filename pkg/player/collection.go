// Package player provides the reference player roster.
package player

import (
	"fmt"
	"slices"

	"github.com/aretw0/tabula/pkg/domain"
)

// Collection is an ordered roster of seated players.
// Turn order follows seating order.
type Collection struct {
	players []domain.Player
	current int
}

// NewCollection seats players. Positions must be positive and unique.
func NewCollection(players []domain.Player) (*Collection, error) {
	seen := make(map[int]bool, len(players))
	for _, p := range players {
		if p.Position <= 0 {
			return nil, fmt.Errorf("player %q: position %d: %w", p.Name, p.Position, domain.ErrInvalidPlayer)
		}
		if seen[p.Position] {
			return nil, fmt.Errorf("duplicate position %d: %w", p.Position, domain.ErrInvalidPlayer)
		}
		seen[p.Position] = true
	}
	sorted := domain.ClonePlayers(players)
	slices.SortFunc(sorted, func(a, b domain.Player) int { return a.Position - b.Position })
	return &Collection{players: sorted}, nil
}

// Len returns the number of seated players.
func (c *Collection) Len() int { return len(c.players) }

// All returns a copy of the seated players in seating order.
func (c *Collection) All() []domain.Player {
	return domain.ClonePlayers(c.players)
}

// AtPosition looks a player up by table position.
func (c *Collection) AtPosition(position int) (domain.Player, bool) {
	for _, p := range c.players {
		if p.Position == position {
			return p, true
		}
	}
	return domain.Player{}, false
}

// Current returns the player whose turn it is.
func (c *Collection) Current() (domain.Player, bool) {
	if c.current == 0 {
		return domain.Player{}, false
	}
	return c.AtPosition(c.current)
}

// CurrentPosition returns the current player's position, or 0.
func (c *Collection) CurrentPosition() int { return c.current }

// SetCurrent makes the player at position current. Position 0 clears it.
func (c *Collection) SetCurrent(position int) error {
	if position == 0 {
		c.current = 0
		return nil
	}
	if _, ok := c.AtPosition(position); !ok {
		return fmt.Errorf("set current %d: %w", position, domain.ErrInvalidPlayer)
	}
	c.current = position
	return nil
}

// TurnOrder returns positions in seating order.
func (c *Collection) TurnOrder() []int {
	out := make([]int, len(c.players))
	for i, p := range c.players {
		out[i] = p.Position
	}
	return out
}

// Next returns the position seated after the given one, wrapping around.
func (c *Collection) Next(position int) int {
	order := c.TurnOrder()
	i := slices.Index(order, position)
	if i < 0 || len(order) == 0 {
		return 0
	}
	return order[(i+1)%len(order)]
}

// Others returns every player except the one at position.
func (c *Collection) Others(position int) []domain.Player {
	var out []domain.Player
	for _, p := range c.players {
		if p.Position != position {
			out = append(out, p)
		}
	}
	return out
}
