// Package monitor polls campaign progress for the dashboard.
package monitor

import (
	"context"
	"sync"

	"github.com/bingotables/bulkmsg/internal/metrics"
)

// Gate is the pause flag shared by the poller and campaign sensitive
// operations. While any hold is active no poll starts, and a hold only
// takes effect once the poll in flight has finished.
type Gate struct {
	mu       sync.Mutex
	holds    int
	polling  int
	open     chan struct{} // closed while holds == 0
	idle     chan struct{} // closed while polling == 0
	external map[string]func()
}

// NewGate creates an open gate
func NewGate() *Gate {
	g := &Gate{
		open:     make(chan struct{}),
		idle:     make(chan struct{}),
		external: make(map[string]func()),
	}
	close(g.open)
	close(g.idle)
	return g
}

// Hold pauses polling until the returned release is called. Holds nest.
// Hold waits for a poll in flight to complete; if ctx ends first the hold
// is dropped and ctx.Err() is returned.
func (g *Gate) Hold(ctx context.Context) (release func(), err error) {
	g.mu.Lock()
	g.holds++
	if g.holds == 1 {
		g.open = make(chan struct{})
		metrics.SetPollPaused(true)
	}
	idle := g.idle
	g.mu.Unlock()

	var once sync.Once
	release = func() { once.Do(g.release) }

	select {
	case <-idle:
		return release, nil
	case <-ctx.Done():
		release()
		return nil, ctx.Err()
	}
}

func (g *Gate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.holds--
	if g.holds == 0 {
		close(g.open)
		metrics.SetPollPaused(false)
	}
}

// Paused reports whether any hold is active
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holds > 0
}

// Wait blocks until no hold is active
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	open := g.open
	g.mu.Unlock()

	select {
	case <-open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause takes a hold on behalf of an external caller identified by key,
// at most one per key. It reports whether a new hold was taken.
func (g *Gate) Pause(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	if _, ok := g.external[key]; ok {
		g.mu.Unlock()
		return false, nil
	}
	g.mu.Unlock()

	release, err := g.Hold(ctx)
	if err != nil {
		return false, err
	}

	g.mu.Lock()
	if _, ok := g.external[key]; ok {
		// lost a race with another Pause
		g.mu.Unlock()
		release()
		return false, nil
	}
	g.external[key] = release
	g.mu.Unlock()
	return true, nil
}

// Resume releases the hold taken by Pause for key. It reports whether there was one.
func (g *Gate) Resume(key string) bool {
	g.mu.Lock()
	release, ok := g.external[key]
	delete(g.external, key)
	g.mu.Unlock()

	if !ok {
		return false
	}
	release()
	return true
}

// enter registers a poll. It fails while a hold is active.
func (g *Gate) enter() (leave func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holds > 0 {
		return nil, false
	}
	g.polling++
	if g.polling == 1 {
		g.idle = make(chan struct{})
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.polling--
			if g.polling == 0 {
				close(g.idle)
			}
		})
	}, true
}
