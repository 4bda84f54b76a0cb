package flow

import (
	"fmt"
	"strconv"

	"github.com/aretw0/tabula/pkg/domain"
)

// Tree is a built, immutable flow with stable node IDs.
type Tree struct {
	root  *Node
	nodes map[string]*Node
	order []*Node
}

// Build freezes a flow. Nodes without an explicit name get "<kind>.<n>",
// numbered per kind in depth-first order, so the same definition always yields
// the same IDs.
func Build(root *Node) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrInvalidNode)
	}
	t := &Tree{root: root, nodes: make(map[string]*Node)}
	seen := make(map[*Node]bool)
	counters := make(map[Kind]int)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if n == nil {
			return fmt.Errorf("%w: nil child", ErrInvalidNode)
		}
		if seen[n] {
			return fmt.Errorf("%w: node %q appears twice", ErrDuplicateNode, n.id)
		}
		seen[n] = true
		counters[n.kind]++
		if n.id == "" {
			n.id = string(n.kind) + "." + strconv.Itoa(counters[n.kind])
		}
		if _, dup := t.nodes[n.id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateNode, n.id)
		}
		if err := n.validate(); err != nil {
			return err
		}
		t.nodes[n.id] = n
		t.order = append(t.order, n)
		for _, c := range n.children {
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}
	return t, nil
}

// MustBuild is Build for flows declared at package initialization.
func MustBuild(root *Node) *Tree {
	t, err := Build(root)
	if err != nil {
		panic(err)
	}
	return t
}

func (n *Node) validate() error {
	missing := func(what string) error {
		return fmt.Errorf("%w: %s %q has no %s", ErrInvalidNode, n.kind, n.id, what)
	}
	switch n.kind {
	case KindIfElse, KindWhileLoop:
		if n.test == nil {
			return missing("test")
		}
	case KindSwitchCase:
		if n.on == nil {
			return missing("expression")
		}
	case KindForLoop:
		if n.while == nil {
			return missing("condition")
		}
	case KindForEach:
		if n.collection == nil {
			return missing("collection")
		}
	case KindPlayerAction:
		if len(n.actions) == 0 {
			return missing("actions")
		}
	case KindStep:
		if n.step == nil {
			return missing("function")
		}
	case KindSequence, KindEachPlayer:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidNode, n.kind)
	}
	return nil
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Node looks a node up by ID.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Nodes returns every node in depth-first order.
func (t *Tree) Nodes() []*Node { return append([]*Node(nil), t.order...) }

// ActionNames returns every action referenced by a player action node.
func (t *Tree) ActionNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range t.order {
		for _, a := range n.actions {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	return out
}

// child returns the child a frame points into, validating the frame.
func (t *Tree) child(n *Node, f domain.Frame) (*Node, error) {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %q: %s", domain.ErrInvalidPosition, n.id, fmt.Sprintf(format, args...))
	}
	switch n.kind {
	case KindSequence, KindIfElse, KindSwitchCase:
		if f.Index < 0 || f.Index >= len(n.children) {
			return nil, bad("index %d out of range", f.Index)
		}
		return n.children[f.Index], nil
	case KindWhileLoop, KindForLoop:
		if f.Index < 0 {
			return nil, bad("negative iteration")
		}
		return n.children[0], nil
	case KindEachPlayer:
		if _, ok := f.Value.(domain.PlayerRef); !ok || f.Index < 0 {
			return nil, bad("iteration is not bound to a player")
		}
		return n.children[0], nil
	case KindForEach:
		if f.Index < 0 || f.Index >= len(f.Items) {
			return nil, bad("iteration %d outside collection of %d", f.Index, len(f.Items))
		}
		return n.children[0], nil
	}
	return nil, bad("%s cannot contain a suspended child", n.kind)
}
