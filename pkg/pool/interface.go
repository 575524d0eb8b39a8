package pool

// ObjectPool is the element-type-erased surface of a pool. The registry
// stores pools through it and callers recover the concrete type with a
// typed lookup.
type ObjectPool interface {
	// NumAllocated is the number of objects currently stored
	NumAllocated() int
	// IsEmpty reports whether nothing is stored
	IsEmpty() bool
	// IsFull reports whether NumAllocated equals Capacity
	IsFull() bool
	// Capacity is the fixed maximum number of stored objects
	Capacity() int
	// Clear drops every stored object without teardown
	Clear()
	// Allocate adds up to amount new objects
	Allocate(amount int)
	// Dispose releases resources owned by the pool
	Dispose()
	// Stats returns a snapshot of the pool counters
	Stats() Stats
}

var _ ObjectPool = (*Pool[any])(nil)
