// Package rules holds the explicit context threaded through flow predicates,
// selection constraints and action effects.
//
// An Env replaces any notion of ambient "current player" state: each engine
// call builds one, binds the acting player and loop variables into it, and
// drops it when the call returns.
package rules
