package rules

// Signal is a control transfer requested by a step or an action effect.
type Signal int

const (
	// Continue proceeds normally.
	Continue Signal = iota
	// Repeat restarts the current iteration of the nearest enclosing loop.
	Repeat
	// Skip abandons the rest of the current iteration of the nearest enclosing loop.
	Skip
)

func (s Signal) String() string {
	switch s {
	case Continue:
		return "continue"
	case Repeat:
		return "repeat"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}
