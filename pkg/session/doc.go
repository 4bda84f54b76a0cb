/*
Package session implements game management and persistence orchestration.

The engine itself is stateless; a Manager pairs it with a ports.StateStore and
serializes every read-modify-write on one game, so a move is processed and
persisted before the next one for the same game is looked at. Across replicas,
an optional ports.DistributedLocker extends that guarantee.
*/
package session
