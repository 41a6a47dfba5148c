package webhook

import (
	"context"
	"log/slog"
	"sync"
)

// registry keeps exactly one running Dispatcher per Store instance, so that
// multiple callers asking for a dispatcher over the same store share the
// same cache, queue and failure counters instead of each spinning up their
// own worker pool.
type registry struct {
	mu          sync.Mutex
	dispatchers map[Store]*Dispatcher
}

var global = &registry{dispatchers: make(map[Store]*Dispatcher)}

// GetDispatcher returns the running Dispatcher for store, creating and
// starting one with cfg if none exists yet. Subsequent calls for the same
// store instance ignore cfg and return the already-running dispatcher.
func GetDispatcher(ctx context.Context, store Store, cfg Config, log *slog.Logger) (*Dispatcher, error) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if d, ok := global.dispatchers[store]; ok {
		return d, nil
	}

	d, err := NewDispatcher(store, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := d.Start(ctx); err != nil {
		return nil, err
	}

	global.dispatchers[store] = d
	return d, nil
}

// Shutdown stops and forgets the dispatcher registered for store, if any.
// Calling Shutdown for a store with no registered dispatcher is a no-op.
func Shutdown(store Store) error {
	global.mu.Lock()
	d, ok := global.dispatchers[store]
	if ok {
		delete(global.dispatchers, store)
	}
	global.mu.Unlock()

	if !ok {
		return nil
	}
	return d.Stop()
}

// ShutdownAll stops and forgets every registered dispatcher. Intended for
// process shutdown and test teardown.
func ShutdownAll() error {
	global.mu.Lock()
	dispatchers := make([]*Dispatcher, 0, len(global.dispatchers))
	for store, d := range global.dispatchers {
		dispatchers = append(dispatchers, d)
		delete(global.dispatchers, store)
	}
	global.mu.Unlock()

	var firstErr error
	for _, d := range dispatchers {
		if err := d.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
