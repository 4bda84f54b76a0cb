// Package runtime is the orchestrator between a stored GameState and the flow
// interpreter. Every operation rehydrates a private Game from the snapshot,
// acts as the requesting player for the duration of the call and either
// returns a complete new snapshot or leaves the input untouched.
package runtime
