/*
Package ports defines the interfaces between the rules engine and its collaborators.

The engine never reaches for a concrete board, roster or storage backend; it is
handed implementations of these interfaces.

# Key Interfaces

  - Board: The game board, consumed through its serialize/deserialize contract.
  - Roster: Seated players and the "current player" bookkeeping.
  - GameEngine: The stateless engine consumed by transport adapters (HTTP, MCP).
  - StateStore: Responsible for persisting and loading serialized GameState.
  - DistributedLocker: Provides distributed locking for handling concurrent game access.
*/
package ports
