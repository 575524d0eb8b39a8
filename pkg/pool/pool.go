package pool

// Hooks are the lifecycle callbacks a Pool invokes. Every field is
// optional; a Pool built with zero Hooks has no side effects.
type Hooks[T any] struct {
	// Allocate creates a new object. Defaults to the zero value of T.
	Allocate func() T
	// OnPooled runs after an object has been pushed onto the store.
	OnPooled func(T)
	// OnBorrowed runs after an object has been popped from the store.
	OnBorrowed func(T)
	// OnUnableToReturn runs for an object returned into a full pool.
	// The object is not stored; the default drops it.
	OnUnableToReturn func(T)
}

// Stats is a point-in-time view of a pool's counters
type Stats struct {
	Capacity    int   `json:"capacity"`
	Stored      int   `json:"stored"`
	Allocations int64 `json:"allocations"`
	Borrows     int64 `json:"borrows"`
	Returns     int64 `json:"returns"`
	Misses      int64 `json:"misses"`
	Overflows   int64 `json:"overflows"`
}

// Pool is a capacity-bounded LIFO store of reusable objects.
//
// Borrow pops the most recently returned object, so a return followed by
// a borrow hands back the same instance. When the store is empty Borrow
// allocates instead of blocking; when it is full Return hands the object
// to OnUnableToReturn instead of growing.
//
// Pool is not safe for concurrent use. Callers sharing a pool across
// goroutines must guard every method with one mutex.
type Pool[T any] struct {
	stored   []T
	capacity int
	hooks    Hooks[T]
	dispose  func()
	disposed bool

	allocations int64
	borrows     int64
	returns     int64
	misses      int64
	overflows   int64
}

// New creates a pool holding at most capacity objects and eagerly
// allocates preAllocate of them. capacity is clamped to at least 1 and
// preAllocate to [0, capacity].
//
// Example:
//
//	p := pool.New(8, 4,
//	    pool.WithAllocator(func() *Particle { return &Particle{} }),
//	    pool.WithOnPooled(func(p *Particle) { p.Reset() }),
//	)
//	obj := p.Borrow()
//	defer p.Return(obj)
func New[T any](capacity, preAllocate int, opts ...Option[T]) *Pool[T] {
	if capacity < 1 {
		capacity = 1
	}
	if preAllocate > capacity {
		preAllocate = capacity
	}

	p := &Pool[T]{
		stored:   make([]T, 0, capacity),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.Allocate(preAllocate)
	return p
}

// NewOf creates a pool of *E whose default allocator is new(E)
func NewOf[E any](capacity, preAllocate int, opts ...Option[*E]) *Pool[*E] {
	opts = append([]Option[*E]{WithAllocator(func() *E { return new(E) })}, opts...)
	return New(capacity, preAllocate, opts...)
}

// Borrow removes and returns the most recently pooled object. An empty
// pool allocates a fresh object without running any hook.
func (p *Pool[T]) Borrow() T {
	p.borrows++
	if p.IsEmpty() {
		p.misses++
		return p.allocate()
	}

	last := len(p.stored) - 1
	obj := p.stored[last]
	var zero T
	p.stored[last] = zero
	p.stored = p.stored[:last]

	if p.hooks.OnBorrowed != nil {
		p.hooks.OnBorrowed(obj)
	}
	return obj
}

// Return gives obj back to the pool. A full pool passes it to
// OnUnableToReturn and keeps its size.
func (p *Pool[T]) Return(obj T) {
	if p.IsFull() {
		p.overflows++
		if p.hooks.OnUnableToReturn != nil {
			p.hooks.OnUnableToReturn(obj)
		}
		return
	}
	p.returns++
	p.push(obj)
}

// Allocate tops the store up by at most amount new objects, stopping
// early once the pool is full. amount is added to what is stored, it is
// not a target size.
func (p *Pool[T]) Allocate(amount int) {
	for i := 0; i < amount && !p.IsFull(); i++ {
		p.push(p.allocate())
	}
}

// Clear empties the store. No hook runs for the dropped objects, so
// objects that own external resources leak unless drained with Drain.
func (p *Pool[T]) Clear() {
	clear(p.stored)
	p.stored = p.stored[:0]
}

// Drain empties the store, passing each object to fn newest first. It
// runs no hook and leaves the counters untouched.
func (p *Pool[T]) Drain(fn func(T)) {
	for len(p.stored) > 0 {
		last := len(p.stored) - 1
		obj := p.stored[last]
		var zero T
		p.stored[last] = zero
		p.stored = p.stored[:last]
		fn(obj)
	}
}

// NumAllocated returns the number of objects currently stored, not the
// number ever created.
func (p *Pool[T]) NumAllocated() int {
	return len(p.stored)
}

// IsEmpty reports whether the store holds no objects
func (p *Pool[T]) IsEmpty() bool {
	return len(p.stored) == 0
}

// IsFull reports whether the store holds capacity objects
func (p *Pool[T]) IsFull() bool {
	return len(p.stored) == p.capacity
}

// Capacity returns the fixed maximum number of stored objects
func (p *Pool[T]) Capacity() int {
	return p.capacity
}

// Dispose runs the disposer registered with WithDisposer. Later calls
// are no-ops.
func (p *Pool[T]) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	if p.dispose != nil {
		p.dispose()
	}
}

// Disposed reports whether Dispose has been called
func (p *Pool[T]) Disposed() bool {
	return p.disposed
}

// Stats returns the pool counters
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Capacity:    p.capacity,
		Stored:      len(p.stored),
		Allocations: p.allocations,
		Borrows:     p.borrows,
		Returns:     p.returns,
		Misses:      p.misses,
		Overflows:   p.overflows,
	}
}

func (p *Pool[T]) allocate() T {
	p.allocations++
	if p.hooks.Allocate != nil {
		return p.hooks.Allocate()
	}
	var zero T
	return zero
}

// push stores obj and then runs OnPooled, so the hook sees it stored
func (p *Pool[T]) push(obj T) {
	p.stored = append(p.stored, obj)
	if p.hooks.OnPooled != nil {
		p.hooks.OnPooled(obj)
	}
}
