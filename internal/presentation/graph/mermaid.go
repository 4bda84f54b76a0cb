// Package graph renders flow trees as Mermaid diagrams.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
)

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	// Position highlights the path from the root to the suspended node.
	Position domain.Position
}

// GenerateMermaid produces a Mermaid flowchart of a flow tree.
// It applies semantic styling:
// - Root: ((Circle))
// - Branch (if/switch): {Rhombus}
// - Loop: {{Hexagon}}
// - Player action: [/Parallelogram/]
// - Step: [[Subroutine]]
// - Sequence: [Rectangle]
// Branch edges carry their condition; the overlay marks the active path.
func GenerateMermaid(tree *flow.Tree, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	root := tree.Root()
	for _, n := range tree.Nodes() {
		safeID := sanitizeMermaidID(n.ID())
		opener, closer := shape(n)
		if n == root {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label(n), closer)

		for i, child := range n.Children() {
			arrow := "-->"
			if l := edgeLabel(n, i); l != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escape(l))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(child.ID()))
		}
	}

	if overlay != nil && len(overlay.Position) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		last := len(overlay.Position) - 1
		for i, f := range overlay.Position {
			class := "visited"
			if i == last {
				class = "current"
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(f.Node), class)
		}
	}

	return sb.String()
}

func shape(n *flow.Node) (string, string) {
	switch {
	case n.Kind() == flow.KindIfElse || n.Kind() == flow.KindSwitchCase:
		return "{", "}"
	case n.Kind().IsLoop():
		return "{{", "}}"
	case n.Kind() == flow.KindPlayerAction:
		return "[/", "/]"
	case n.Kind() == flow.KindStep:
		return "[[", "]]"
	}
	return "[", "]"
}

func label(n *flow.Node) string {
	text := n.ID()
	switch n.Kind() {
	case flow.KindPlayerAction:
		text += " <br/> " + strings.Join(n.Actions(), ", ")
	case flow.KindForLoop, flow.KindForEach, flow.KindEachPlayer:
		if v := n.VarName(); v != "" {
			text += " <br/> ↻ " + v
		}
	case flow.KindWhileLoop:
		text += " <br/> ↻"
	}
	return escape(text)
}

func edgeLabel(n *flow.Node, child int) string {
	switch n.Kind() {
	case flow.KindIfElse:
		if child == 0 {
			return "then"
		}
		return "else"
	case flow.KindSwitchCase:
		cases := n.Cases()
		if child < len(cases) {
			return "= " + domain.FormatArg(cases[child])
		}
		return "default"
	case flow.KindSequence:
		if len(n.Children()) > 1 {
			return fmt.Sprint(child + 1)
		}
	}
	return ""
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
