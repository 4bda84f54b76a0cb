/*
Package domain contains the core data model of the Tabula rules engine.

It defines the serializable shapes that cross the engine boundary: the game
snapshot, the flow position that pins where execution is paused, moves and
their arguments, and the resolved selections presented to a player. The package
is kept pure and free of I/O so that every adapter (HTTP, MCP, stores) can share
the same vocabulary.

# Key Entities

  - GameState: the full serialized snapshot (players, settings, board, position).
  - Position: the ordered list of Frames from the flow root to the suspended leaf.
  - Move: an action name, the acting player position and ordered arguments.
  - ResolvedSelection: the next argument a player has to provide, with its legal values.
  - MoveResponse: the in-band answer to a move attempt or a prompt request.
*/
package domain
