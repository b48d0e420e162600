package vector

import "sync"

// lazyInit runs a setup function at most once successfully. Unlike
// sync.Once it does not memoize failures: a failed attempt (for example
// under an already-cancelled context) leaves the gate open, so the next
// call retries with its own context. Concurrent callers serialize on
// the mutex, keeping a single attempt in flight at a time.
type lazyInit struct {
	mu   sync.Mutex
	done bool
}

func (g *lazyInit) do(fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.done {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	g.done = true
	return nil
}
