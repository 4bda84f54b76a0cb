// Package middleware wraps a ports.StateStore with cross-cutting persistence
// behavior such as encryption at rest and masking of personal data.
package middleware

import "github.com/aretw0/tabula/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
