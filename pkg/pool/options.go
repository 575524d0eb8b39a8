package pool

// Option configures a Pool at construction
type Option[T any] func(*Pool[T])

// WithHooks replaces every hook at once. Nil fields stay no-ops.
func WithHooks[T any](h Hooks[T]) Option[T] {
	return func(p *Pool[T]) { p.hooks = h }
}

// WithAllocator sets the factory used for pre-allocation and empty borrows
func WithAllocator[T any](fn func() T) Option[T] {
	return func(p *Pool[T]) { p.hooks.Allocate = fn }
}

// WithOnPooled sets the hook run after an object is stored
func WithOnPooled[T any](fn func(T)) Option[T] {
	return func(p *Pool[T]) { p.hooks.OnPooled = fn }
}

// WithOnBorrowed sets the hook run after a stored object is handed out
func WithOnBorrowed[T any](fn func(T)) Option[T] {
	return func(p *Pool[T]) { p.hooks.OnBorrowed = fn }
}

// WithOnUnableToReturn sets the overflow hook
func WithOnUnableToReturn[T any](fn func(T)) Option[T] {
	return func(p *Pool[T]) { p.hooks.OnUnableToReturn = fn }
}

// WithDisposer sets the function Dispose runs once
func WithDisposer[T any](fn func()) Option[T] {
	return func(p *Pool[T]) { p.dispose = fn }
}
