package runtime

import (
	"errors"
	"fmt"
)

// ErrMoveRejected is returned by Replay when a recorded move no longer applies.
var ErrMoveRejected = errors.New("move rejected")

// InvariantError signals that what the engine offered a player and what it can
// resolve disagree. It is never a player mistake.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.Op, e.Detail)
}
