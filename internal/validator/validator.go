package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/game"
)

// ValidateDefinition freezes def and then looks for mistakes that still
// compile: actions no node ever offers, a flow that never waits for a player,
// and while loops whose body cannot change anything their test reads.
func ValidateDefinition(def *game.Definition) error {
	if err := def.Freeze(); err != nil {
		return err
	}
	tree := def.Tree()

	offered := make(map[string]bool)
	var problems []string

	// Crawl from the root so the report follows flow order.
	queue := []*flow.Node{tree.Root()}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		switch current.Kind() {
		case flow.KindPlayerAction:
			for _, name := range current.Actions() {
				offered[name] = true
			}
		case flow.KindWhileLoop:
			if !mutates(current) {
				problems = append(problems, fmt.Sprintf("while loop %q has no step or player action, its test can never change", current.ID()))
			}
		}
		queue = append(queue, current.Children()...)
	}

	if len(offered) == 0 {
		problems = append(problems, "flow never waits for a player")
	}
	for _, name := range def.Registry().Names() {
		if !offered[name] {
			problems = append(problems, fmt.Sprintf("action %q is never offered", name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("found %d problems:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

// mutates reports whether anything under n can change game state.
func mutates(n *flow.Node) bool {
	for _, c := range n.Children() {
		if c.Kind() == flow.KindStep || c.Kind() == flow.KindPlayerAction || mutates(c) {
			return true
		}
	}
	return false
}
