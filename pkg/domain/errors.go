package domain

import "errors"

// ErrGameNotFound is returned when a game ID cannot be found in the store.
var ErrGameNotFound = errors.New("game not found")

// ErrNoPlayers is returned when a game is started without any seated player.
var ErrNoPlayers = errors.New("no players")

// ErrInvalidPosition is returned when a serialized flow position does not match the flow definition.
var ErrInvalidPosition = errors.New("invalid flow position")

// ErrUnsupportedArgument is returned when a value cannot be used as a move argument.
var ErrUnsupportedArgument = errors.New("unsupported argument")

// ErrInvalidPlayer is returned when a position does not name a seated player.
var ErrInvalidPlayer = errors.New("invalid player")

// ErrPlayerCount is returned when a game is started with too few or too many players.
var ErrPlayerCount = errors.New("player count out of range")

// ErrGameFinished is returned when an operation needs a game that is still running.
var ErrGameFinished = errors.New("game finished")
