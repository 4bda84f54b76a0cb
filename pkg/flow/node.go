package flow

import (
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/rules"
)

// Kind is the variant of a flow node.
type Kind string

const (
	KindSequence     Kind = "sequence"
	KindIfElse       Kind = "if_else"
	KindSwitchCase   Kind = "switch_case"
	KindWhileLoop    Kind = "while_loop"
	KindForLoop      Kind = "for_loop"
	KindForEach      Kind = "for_each"
	KindEachPlayer   Kind = "each_player"
	KindPlayerAction Kind = "player_action"
	KindStep         Kind = "step"
)

// IsLoop reports whether the kind catches repeat and skip signals.
func (k Kind) IsLoop() bool {
	switch k {
	case KindWhileLoop, KindForLoop, KindForEach, KindEachPlayer:
		return true
	}
	return false
}

// Predicate is evaluated against live state.
type Predicate func(env *rules.Env) bool

// StepFunc runs game logic that needs no player input.
type StepFunc func(env *rules.Env) (rules.Signal, error)

// Node is one node of a flow tree. Nodes are created with the constructors of
// this package and become immutable once passed to Build.
type Node struct {
	id       string
	kind     Kind
	children []*Node

	test       Predicate
	on         func(env *rules.Env) domain.Argument
	cases      []domain.Argument
	hasDefault bool

	varName    string
	initial    func(env *rules.Env) int
	next       func(v int) int
	while      func(env *rules.Env, v int) bool
	collection func(env *rules.Env) []domain.Argument

	actions []string
	prompt  string
	step    StepFunc
}

func (n *Node) ID() string      { return n.id }
func (n *Node) Kind() Kind      { return n.kind }
func (n *Node) Prompt() string  { return n.prompt }
func (n *Node) VarName() string { return n.varName }

// Children returns the direct children. Multi-node bodies appear wrapped in a sequence.
func (n *Node) Children() []*Node { return append([]*Node(nil), n.children...) }

// Actions returns the action allow-list of a player action node.
func (n *Node) Actions() []string { return append([]string(nil), n.actions...) }

// Cases returns the values matched by a switch node, in order.
func (n *Node) Cases() []domain.Argument { return append([]domain.Argument(nil), n.cases...) }

// HasDefault reports whether a switch node has a default branch.
func (n *Node) HasDefault() bool { return n.hasDefault }

// Named sets an explicit ID, overriding the generated one.
func (n *Node) Named(id string) *Node {
	n.id = id
	return n
}

// body collapses a list of nodes into one, wrapping several in a sequence.
func body(nodes []*Node) *Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return &Node{kind: KindSequence, children: nodes}
}

// Sequence runs its children in order.
func Sequence(children ...*Node) *Node {
	return &Node{kind: KindSequence, children: children}
}

// If configures an IfElse node.
type If struct {
	Name string
	Test Predicate
	Then []*Node
	Else []*Node
}

// IfElse evaluates its test once per entry and runs exactly one branch.
// Without Else, a false test passes straight through.
func IfElse(cfg If) *Node {
	n := &Node{id: cfg.Name, kind: KindIfElse, test: cfg.Test, children: []*Node{body(cfg.Then)}}
	if len(cfg.Else) > 0 {
		n.children = append(n.children, body(cfg.Else))
	}
	return n
}

// Case is one branch of a switch.
type Case struct {
	Eq domain.Argument
	Do []*Node
}

// Switch configures a SwitchCase node.
type Switch struct {
	Name    string
	On      func(env *rules.Env) domain.Argument
	Cases   []Case
	Default []*Node
}

// SwitchCase evaluates On once per entry and runs the first matching case.
// With no match and no default it passes straight through.
func SwitchCase(cfg Switch) *Node {
	n := &Node{id: cfg.Name, kind: KindSwitchCase, on: cfg.On}
	for _, c := range cfg.Cases {
		n.cases = append(n.cases, domain.NormalizeArg(c.Eq))
		n.children = append(n.children, body(c.Do))
	}
	if len(cfg.Default) > 0 {
		n.hasDefault = true
		n.children = append(n.children, body(cfg.Default))
	}
	return n
}

// While configures a WhileLoop node.
type While struct {
	Name string
	Test Predicate
	Do   []*Node
}

// WhileLoop runs its body while Test holds. The test is evaluated at the top of
// each iteration, never while the body is suspended.
func WhileLoop(cfg While) *Node {
	return &Node{id: cfg.Name, kind: KindWhileLoop, test: cfg.Test, children: []*Node{body(cfg.Do)}}
}

// For configures a ForLoop node.
type For struct {
	Name string
	// Var names the loop variable. It is bound as an int.
	Var string
	// Initial defaults to 0.
	Initial func(env *rules.Env) int
	// Next defaults to v+1.
	Next  func(v int) int
	While func(env *rules.Env, v int) bool
	Do    []*Node
}

// ForLoop runs its body for each value of its variable.
func ForLoop(cfg For) *Node {
	return &Node{
		id: cfg.Name, kind: KindForLoop, varName: cfg.Var,
		initial: cfg.Initial, next: cfg.Next, while: cfg.While,
		children: []*Node{body(cfg.Do)},
	}
}

// Each configures a ForEach node.
type Each struct {
	Name       string
	Var        string
	Collection func(env *rules.Env) []domain.Argument
	Do         []*Node
}

// ForEach runs its body once per item. The collection is captured when the
// loop is entered; later board changes do not alter the iteration.
func ForEach(cfg Each) *Node {
	return &Node{id: cfg.Name, kind: KindForEach, varName: cfg.Var, collection: cfg.Collection, children: []*Node{body(cfg.Do)}}
}

// Turns configures an EachPlayer node.
type Turns struct {
	Name string
	// Var defaults to "player". It is bound as a domain.PlayerRef.
	Var string
	Do  []*Node
}

// EachPlayer runs its body once per player in turn order, making each the
// roster's current player for the duration of its iteration.
func EachPlayer(cfg Turns) *Node {
	v := cfg.Var
	if v == "" {
		v = "player"
	}
	return &Node{id: cfg.Name, kind: KindEachPlayer, varName: v, children: []*Node{body(cfg.Do)}}
}

// Actions configures a PlayerAction node.
type Actions struct {
	Name    string
	Prompt  string
	Actions []string
}

// PlayerAction suspends the flow until a move resolves against one of the actions.
func PlayerAction(cfg Actions) *Node {
	return &Node{id: cfg.Name, kind: KindPlayerAction, prompt: cfg.Prompt, actions: append([]string(nil), cfg.Actions...)}
}

// Step runs fn and continues. fn may return a loop signal.
func Step(name string, fn StepFunc) *Node {
	return &Node{id: name, kind: KindStep, step: fn}
}

// Signal returns a step that only raises sig.
func Signal(name string, sig rules.Signal) *Node {
	return Step(name, func(*rules.Env) (rules.Signal, error) { return sig, nil })
}
