package cli

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// SignalContext is cancelled on SIGINT or SIGTERM. Unlike
// signal.NotifyContext it remembers which signal arrived, so a game
// interrupted with Ctrl+C can still be reported as saved rather than failed.
type SignalContext struct {
	context.Context
	cancel context.CancelFunc
	caught atomic.Value
}

// NewSignalContext starts listening for termination signals until parent
// is done or Cancel is called.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.caught.Store(sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Cancel stops listening and cancels the context.
func (sc *SignalContext) Cancel() { sc.cancel() }

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sig, _ := sc.caught.Load().(os.Signal)
	return sig
}
