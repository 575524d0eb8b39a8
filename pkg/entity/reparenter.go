package entity

import (
	"go.uber.org/zap"
)

// ReparenterCounters counts the work a Reparenter did or avoided
type ReparenterCounters struct {
	// Flushes is the number of batches that ran
	Flushes int64 `json:"flushes"`
	// Committed is the number of entities moved by those batches
	Committed int64 `json:"committed"`
	// Cancelled is the number of pending moves undone by a re-borrow
	Cancelled int64 `json:"cancelled"`
}

// Reparenter batches the move of returned entities into a container.
//
// The container is collapsed once when the Reparenter is created; every
// child attached later is hidden with it. Returned entities are queued on
// a stack. A borrow pops the top of the stack, which is always the entity
// being borrowed because the pool hands out the most recently returned
// object. Flush commits everything still queued.
//
// In immediate mode (the default) OnPooled attaches right away and Flush
// only settles the queue. In deferred mode the attach itself waits for
// Flush, so a return followed by a borrow in the same frame never touches
// the container.
type Reparenter[E comparable] struct {
	container Container[E]
	pending   []E
	deferred  bool
	counters  ReparenterCounters
	logger    *zap.Logger
}

// NewReparenter collapses container and returns a controller with room
// for capacity pending entities.
func NewReparenter[E comparable](container Container[E], capacity int, deferred bool, logger *zap.Logger) *Reparenter[E] {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	container.Collapse()
	return &Reparenter[E]{
		container: container,
		pending:   make([]E, 0, capacity),
		deferred:  deferred,
		logger:    logger,
	}
}

// OnPooled queues e for the next Flush. It does nothing after Dispose.
func (r *Reparenter[E]) OnPooled(e E) {
	if r.container == nil {
		return
	}
	r.pending = append(r.pending, e)
	if !r.deferred {
		r.container.Attach(e)
	}
}

// OnBorrowed undoes the pending move for e, or takes e out of the
// container if its move was already committed.
func (r *Reparenter[E]) OnBorrowed(e E) {
	if r.container == nil {
		return
	}
	n := len(r.pending)
	if n == 0 {
		r.container.Detach(e)
		return
	}

	top := r.pending[n-1]
	var zero E
	r.pending[n-1] = zero
	r.pending = r.pending[:n-1]
	r.counters.Cancelled++

	if top != e {
		r.logger.Warn("borrowed entity is not the most recently pooled one")
	}
	if !r.deferred {
		r.container.Detach(e)
	}
}

// Flush commits every pending move in one batch. It returns false, doing
// nothing, when no move is pending.
func (r *Reparenter[E]) Flush() bool {
	if len(r.pending) == 0 {
		return false
	}

	if r.deferred {
		for _, e := range r.pending {
			r.container.Attach(e)
		}
	}

	r.counters.Flushes++
	r.counters.Committed += int64(len(r.pending))
	clear(r.pending)
	r.pending = r.pending[:0]
	return true
}

// Pending returns the number of queued moves
func (r *Reparenter[E]) Pending() int {
	return len(r.pending)
}

// Deferred reports whether attaches wait for Flush
func (r *Reparenter[E]) Deferred() bool {
	return r.deferred
}

// Counters returns the work counters
func (r *Reparenter[E]) Counters() ReparenterCounters {
	return r.counters
}

// Dispose drops the queue and destroys the container
func (r *Reparenter[E]) Dispose() {
	clear(r.pending)
	r.pending = r.pending[:0]
	if r.container != nil {
		r.container.Destroy()
		r.container = nil
	}
}
