// Package registry maps string keys to object pools and owns their lifetime.
package registry

import (
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/recycler/pkg/errors"
	"github.com/ajitpratap0/recycler/pkg/logger"
	"github.com/ajitpratap0/recycler/pkg/pool"
)

// Flusher is implemented by pools with work batched until the end of a
// frame. Flush reports whether anything was pending.
type Flusher interface {
	Flush() bool
}

// Registry manages named pools. Keys are unique; a pool is disposed when
// it is removed or when the registry shuts down.
type Registry struct {
	pools  map[string]pool.ObjectPool
	mu     sync.RWMutex
	logger *zap.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for registry events
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates an empty registry. Use Open for the process-wide instance.
func New(opts ...Option) *Registry {
	r := &Registry{
		pools: make(map[string]pool.ObjectPool),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get()
	}
	r.logger = r.logger.With(zap.String("component", "pool_registry"))
	return r
}

// Contains reports whether a pool is registered under key
func (r *Registry) Contains(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.pools[key]
	return exists
}

// Add registers p under key. An existing key is left untouched and a
// conflict error is logged and returned.
func (r *Registry) Add(key string, p pool.ObjectPool) error {
	if isNil(p) {
		return errors.New(errors.ErrorTypeValidation, "pool is nil").WithDetail("pool", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pools[key]; exists {
		r.logger.Error("cannot add pool because it already exists", zap.String("pool", key))
		return errors.Newf(errors.ErrorTypeConflict, "pool %s already exists", key).WithDetail("pool", key)
	}

	r.pools[key] = p
	r.logger.Debug("pool registered", zap.String("pool", key), zap.Int("capacity", p.Capacity()))
	return nil
}

// Remove disposes the pool under key and unregisters it. Absent keys are
// ignored.
func (r *Registry) Remove(key string) {
	r.mu.RLock()
	p, exists := r.pools[key]
	r.mu.RUnlock()
	if !exists {
		return
	}

	p.Dispose()

	r.mu.Lock()
	if r.pools[key] == p {
		delete(r.pools, key)
	}
	r.mu.Unlock()
	r.logger.Debug("pool removed", zap.String("pool", key))
}

// RemoveAll disposes every pool, then empties the registry. Pools are
// disposed while still registered.
func (r *Registry) RemoveAll() {
	r.mu.RLock()
	keys := r.sortedKeysLocked()
	pools := make([]pool.ObjectPool, len(keys))
	for i, key := range keys {
		pools[i] = r.pools[key]
	}
	r.mu.RUnlock()

	for _, p := range pools {
		p.Dispose()
	}

	r.mu.Lock()
	r.pools = make(map[string]pool.ObjectPool)
	r.mu.Unlock()

	if len(pools) > 0 {
		r.logger.Debug("all pools removed", zap.Int("count", len(pools)))
	}
}

// Names returns the registered keys in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedKeysLocked()
}

// Len returns the number of registered pools
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}

// Stats returns a snapshot of every pool's counters keyed by name
func (r *Registry) Stats() map[string]pool.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]pool.Stats, len(r.pools))
	for key, p := range r.pools {
		out[key] = p.Stats()
	}
	return out
}

// EndFrame flushes every pool that batches work per frame, in key order.
// It returns how many pools had pending work.
func (r *Registry) EndFrame() int {
	r.mu.RLock()
	keys := r.sortedKeysLocked()
	flushers := make([]Flusher, 0, len(keys))
	for _, key := range keys {
		if f, ok := r.pools[key].(Flusher); ok {
			flushers = append(flushers, f)
		}
	}
	r.mu.RUnlock()

	flushed := 0
	for _, f := range flushers {
		if f.Flush() {
			flushed++
		}
	}
	return flushed
}

func (r *Registry) sortedKeysLocked() []string {
	keys := make([]string, 0, len(r.pools))
	for key := range r.pools {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) load(key string) (pool.ObjectPool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[key]
	return p, ok
}

// isNil also catches a nil pointer stored in a non-nil interface
func isNil(p pool.ObjectPool) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
