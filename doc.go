/*
Package tabula is a stateless, replayable rules engine for turn-based games.

A game is declared once as a game.Definition: a board, a control flow built from
nested nodes (sequences, conditionals, loops, per-player turns and player-action
suspension points) and a set of actions, each an ordered list of argument
selections plus an effect.

# Concept

The engine keeps nothing between calls. Every request carries the full
serialized GameState; the engine rehydrates it, resumes the flow exactly where
it stopped, applies one move and walks forward to the next point where a
player must act. Given the same state and the same move, the result is always
the same, so any replica can serve any request.

# Key Features

  - Deterministic Execution: flow positions, board snapshots and a seeded random stream replay identically.
  - Incremental Moves: partial moves are answered with the next selection the player must make.
  - In-band Validation: illegal moves are reported in the response, never as Go errors.
  - Hexagonal Architecture: storage (memory, file, Redis, SQLite), transport (HTTP, MCP) and the board are adapters.

# Usage

	eng, err := tabula.New(def)
	if err != nil {
		log.Fatal(err)
	}

	state, err := eng.Start(ctx, domain.SetupState{Players: players, Seed: "table-7"})
	if err != nil {
		log.Fatal(err)
	}

	// Ask the current player what to do.
	prompt, err := eng.CurrentSelection(ctx, state, state.CurrentPlayerPosition)

	// Send a move back; a nil State means more input is needed.
	res, err := eng.ProcessMove(ctx, state, domain.Move{Action: "move", Player: 1, Args: args})
	if res.Accepted() {
		state = res.State
	}
*/
package tabula
