// sim/latch.go
package sim

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// InterruptLatch is a one-bit stop request shared between the signal relay and
// the Driver. It is set asynchronously and only ever read by the loop.
type InterruptLatch struct {
	set atomic.Bool
}

// Set requests a stop. Safe to call from any goroutine, any number of times.
func (l *InterruptLatch) Set() {
	l.set.Store(true)
}

// IsSet reports whether a stop was requested.
func (l *InterruptLatch) IsSet() bool {
	return l.set.Load()
}

// Install relays the given signals (os.Interrupt when none are given) to the
// latch. The relay goroutine does nothing but set the latch.
// The returned function unregisters the signals and stops the relay; it is
// safe to call more than once.
func (l *InterruptLatch) Install(sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				l.Set()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}

// WatchContext sets the latch when ctx is done. The returned function detaches
// the watcher.
func (l *InterruptLatch) WatchContext(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, l.Set)
}
