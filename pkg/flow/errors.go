package flow

import "errors"

var (
	// ErrDuplicateNode is returned by Build when two nodes share an ID or a node is reused.
	ErrDuplicateNode = errors.New("duplicate flow node")
	// ErrInvalidNode is returned by Build for a node missing its control data.
	ErrInvalidNode = errors.New("invalid flow node")
	// ErrUnknownAction is returned when a player action names an unregistered action.
	ErrUnknownAction = errors.New("unknown action")
	// ErrSignalOutsideLoop is returned when repeat or skip reaches the root.
	ErrSignalOutsideLoop = errors.New("repeat or skip outside of a loop")
	// ErrRunaway is returned when a walk enters too many nodes without suspending.
	ErrRunaway = errors.New("flow did not suspend")
	// ErrNotStarted is returned when a move is processed before the flow was started.
	ErrNotStarted = errors.New("flow not started")
)
