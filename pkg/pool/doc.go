// Package pool implements a capacity-bounded, stack-ordered object pool
// with lifecycle hooks. It is the building block for every pool kept in
// a registry.
//
// # Architecture
//
// A Pool[T] owns a slice used as a stack. Borrow pops from the top and
// Return pushes onto the top, so the object handed out is always the one
// most recently returned. Higher layers rely on that ordering: the entity
// pool cancels pending storage moves by popping its own queue, trusting
// that the entity being borrowed is the last one pooled.
//
// Capacity is fixed at construction. The two boundary cases never fail:
//
//   - Borrow on an empty pool allocates a fresh object and runs no hook.
//   - Return on a full pool runs OnUnableToReturn and drops the object.
//
// # Hooks
//
// Customisation is done with Hooks rather than embedding:
//
//	p := pool.New(16, 4, pool.WithHooks(pool.Hooks[*Shell]{
//		Allocate:         func() *Shell { return newShell() },
//		OnPooled:         func(s *Shell) { s.Park() },
//		OnBorrowed:       func(s *Shell) { s.Wake() },
//		OnUnableToReturn: func(s *Shell) { s.Destroy() },
//	}))
//
// # Limitations
//
// Clear drops stored objects without running any hook. Pools of objects
// that own external resources should drain with Borrow instead.
//
// Pools are single-threaded. Nothing blocks, nothing suspends.
package pool
