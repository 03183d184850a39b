package bridge

import (
	"context"
	"sync"
	"time"
)

// debouncer lets only the last of a burst of calls per key through.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, pending: make(map[string]chan struct{})}
}

// wait blocks for the debounce delay and reports whether no newer call for
// key arrived meanwhile. It returns false when ctx is done first.
func (d *debouncer) wait(ctx context.Context, key string) bool {
	if d.delay <= 0 {
		return true
	}

	superseded := make(chan struct{})
	d.mu.Lock()
	if prev, ok := d.pending[key]; ok {
		close(prev)
	}
	d.pending[key] = superseded
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-superseded:
		return false
	case <-ctx.Done():
		d.release(key, superseded)
		return false
	case <-timer.C:
	}

	// The timer and a newer call can race; the map decides.
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending[key] != superseded {
		return false
	}
	delete(d.pending, key)
	return true
}

func (d *debouncer) release(key string, ch chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending[key] == ch {
		delete(d.pending, key)
	}
}
