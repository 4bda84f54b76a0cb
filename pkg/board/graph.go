// Package board provides a reference board: named spaces joined by an
// undirected adjacency graph, pieces placed on them and free-form variables.
package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/ports"
)

var _ ports.Board = (*Graph)(nil)

var (
	ErrUnknownSpace = errors.New("unknown space")
	ErrUnknownPiece = errors.New("unknown piece")
	ErrDuplicate    = errors.New("duplicate element")
)

// Space is a location on the board.
type Space struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Neighbors []string `json:"neighbors,omitempty"`
}

// Piece is a movable element. Hidden pieces are only visible to their owner.
type Piece struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Owner  int    `json:"owner,omitempty"`
	Space  string `json:"space,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

type snapshot struct {
	Spaces []Space       `json:"spaces"`
	Pieces []Piece       `json:"pieces"`
	Vars   domain.Values `json:"vars,omitempty"`
}

// Graph is the reference ports.Board implementation.
type Graph struct {
	spaces []*Space
	pieces []*Piece
	vars   domain.Values
}

// New returns an empty board.
func New() *Graph {
	return &Graph{vars: domain.Values{}}
}

// AddSpace adds a space.
func (g *Graph) AddSpace(id, name string) error {
	if g.space(id) != nil {
		return fmt.Errorf("space %s: %w", id, ErrDuplicate)
	}
	g.spaces = append(g.spaces, &Space{ID: id, Name: name})
	return nil
}

// Connect joins two spaces in both directions.
func (g *Graph) Connect(a, b string) error {
	sa, sb := g.space(a), g.space(b)
	if sa == nil {
		return fmt.Errorf("connect %s: %w", a, ErrUnknownSpace)
	}
	if sb == nil {
		return fmt.Errorf("connect %s: %w", b, ErrUnknownSpace)
	}
	if !slices.Contains(sa.Neighbors, b) {
		sa.Neighbors = append(sa.Neighbors, b)
	}
	if !slices.Contains(sb.Neighbors, a) {
		sb.Neighbors = append(sb.Neighbors, a)
	}
	return nil
}

// Space returns a copy of the space with id.
func (g *Graph) Space(id string) (Space, bool) {
	s := g.space(id)
	if s == nil {
		return Space{}, false
	}
	return cloneSpace(s), true
}

// SpaceIDs lists spaces in insertion order.
func (g *Graph) SpaceIDs() []string {
	out := make([]string, len(g.spaces))
	for i, s := range g.spaces {
		out[i] = s.ID
	}
	return out
}

// Neighbors lists the spaces adjacent to id.
func (g *Graph) Neighbors(id string) []string {
	s := g.space(id)
	if s == nil {
		return nil
	}
	return slices.Clone(s.Neighbors)
}

// Adjacent reports whether two spaces are connected.
func (g *Graph) Adjacent(a, b string) bool {
	return slices.Contains(g.Neighbors(a), b)
}

// AddPiece places a new piece.
func (g *Graph) AddPiece(p Piece) error {
	if g.piece(p.ID) != nil {
		return fmt.Errorf("piece %s: %w", p.ID, ErrDuplicate)
	}
	if p.Space != "" && g.space(p.Space) == nil {
		return fmt.Errorf("piece %s on %s: %w", p.ID, p.Space, ErrUnknownSpace)
	}
	g.pieces = append(g.pieces, &p)
	return nil
}

// Piece returns a copy of the piece with id.
func (g *Graph) Piece(id string) (Piece, bool) {
	p := g.piece(id)
	if p == nil {
		return Piece{}, false
	}
	return *p, true
}

// MovePiece moves a piece onto a space.
func (g *Graph) MovePiece(id, space string) error {
	p := g.piece(id)
	if p == nil {
		return fmt.Errorf("move %s: %w", id, ErrUnknownPiece)
	}
	if g.space(space) == nil {
		return fmt.Errorf("move %s to %s: %w", id, space, ErrUnknownSpace)
	}
	p.Space = space
	return nil
}

// RemovePiece takes a piece off the board entirely.
func (g *Graph) RemovePiece(id string) error {
	i := slices.IndexFunc(g.pieces, func(p *Piece) bool { return p.ID == id })
	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, ErrUnknownPiece)
	}
	g.pieces = slices.Delete(g.pieces, i, i+1)
	return nil
}

// Pieces returns the pieces matching every filter, in placement order.
func (g *Graph) Pieces(filters ...func(Piece) bool) []Piece {
	var out []Piece
	for _, p := range g.pieces {
		keep := true
		for _, f := range filters {
			if !f(*p) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, *p)
		}
	}
	return out
}

// On filters pieces by space.
func On(space string) func(Piece) bool {
	return func(p Piece) bool { return p.Space == space }
}

// OwnedBy filters pieces by owner.
func OwnedBy(owner int) func(Piece) bool {
	return func(p Piece) bool { return p.Owner == owner }
}

// OfKind filters pieces by kind.
func OfKind(kind string) func(Piece) bool {
	return func(p Piece) bool { return p.Kind == kind }
}

// Refs converts ids into element references.
func Refs(ids ...string) []domain.ElementRef {
	out := make([]domain.ElementRef, len(ids))
	for i, id := range ids {
		out[i] = domain.ElementRef{ID: id}
	}
	return out
}

// Vars exposes the board variables.
func (g *Graph) Vars() domain.Values { return g.vars }

// SetVar stores a board variable.
func (g *Graph) SetVar(key string, v any) {
	if g.vars == nil {
		g.vars = domain.Values{}
	}
	g.vars[key] = domain.NormalizeArg(v)
}

// Serialize implements ports.Board. Hidden pieces of other players lose their
// location when seen from a player's perspective.
func (g *Graph) Serialize(perspective int) (json.RawMessage, error) {
	snap := snapshot{Spaces: make([]Space, len(g.spaces)), Pieces: make([]Piece, 0, len(g.pieces)), Vars: g.vars}
	for i, s := range g.spaces {
		snap.Spaces[i] = cloneSpace(s)
	}
	for _, p := range g.pieces {
		piece := *p
		if perspective != 0 && piece.Hidden && piece.Owner != perspective {
			piece.Space = ""
		}
		snap.Pieces = append(snap.Pieces, piece)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize board: %w", err)
	}
	return data, nil
}

// Deserialize implements ports.Board.
func (g *Graph) Deserialize(data json.RawMessage) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to deserialize board: %w", err)
	}
	g.spaces = g.spaces[:0]
	for _, s := range snap.Spaces {
		g.spaces = append(g.spaces, &s)
	}
	g.pieces = g.pieces[:0]
	for _, p := range snap.Pieces {
		g.pieces = append(g.pieces, &p)
	}
	g.vars = snap.Vars
	if g.vars == nil {
		g.vars = domain.Values{}
	}
	return nil
}

func (g *Graph) space(id string) *Space {
	for _, s := range g.spaces {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (g *Graph) piece(id string) *Piece {
	for _, p := range g.pieces {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func cloneSpace(s *Space) Space {
	c := *s
	c.Neighbors = slices.Clone(s.Neighbors)
	return c
}
