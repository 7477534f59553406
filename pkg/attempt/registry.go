package attempt

import (
	"context"
	"fmt"
	"sync"

	"mongolens-be/internal/pkg/logger"
)

// CleanupFunc releases a resource that was opened while the attempt was in
// flight (e.g. a partially-established client).
type CleanupFunc func() error

type entry struct {
	cancel  context.CancelFunc
	cleanup CleanupFunc
}

// Registry tracks in-flight cancellable attempts by caller-supplied id.
// One registry per attempt kind (connection, query).
type Registry struct {
	mu      sync.Mutex
	scope   string
	entries map[string]*entry
	log     logger.ILogger
}

func NewRegistry(scope string, log logger.ILogger) *Registry {
	return &Registry{
		scope:   scope,
		entries: make(map[string]*entry),
		log:     log,
	}
}

// Register tracks a new attempt under id and returns a context that Cancel
// will cancel. Registering an id that is already tracked cancels and
// replaces the stale entry.
func (r *Registry) Register(parent context.Context, id string) context.Context {
	ctx, cancel := context.WithCancel(parent)

	r.mu.Lock()
	if old, ok := r.entries[id]; ok {
		old.cancel()
	}
	r.entries[id] = &entry{cancel: cancel}
	r.mu.Unlock()

	return ctx
}

// SetCleanup attaches a cleanup action to a tracked attempt. No-op if the
// attempt already resolved.
func (r *Registry) SetCleanup(id string, fn CleanupFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		e.cleanup = fn
	}
}

// Remove drops a resolved attempt. Safe to call for unknown ids.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Cancel aborts a tracked attempt. It fires the cancellation, then runs the
// cleanup action if one was registered; a failing cleanup is logged and
// swallowed because the abort itself already succeeded. The entry is removed
// in every case. Returns false without side effects for unknown ids.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return false
	}

	defer r.Remove(id)

	e.cancel()

	if e.cleanup != nil {
		r.runCleanup(id, e.cleanup)
	}
	return true
}

// Len reports how many attempts are currently tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) runCleanup(id string, fn CleanupFunc) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("attempt", "cleanup panicked after cancellation", map[string]interface{}{
				"scope": r.scope,
				"id":    id,
				"error": fmt.Sprintf("%v", rec),
			})
		}
	}()

	if err := fn(); err != nil {
		r.log.Warn("attempt", "cleanup failed after cancellation", map[string]interface{}{
			"scope": r.scope,
			"id":    id,
			"error": err.Error(),
		})
	}
}
