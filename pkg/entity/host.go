// Package entity pools visual entities owned by an external scene host.
//
// Stored entities are parked under one storage container per pool. The
// container is collapsed as a unit, so individual entities never have
// their visibility toggled. The storage move is batched by a Reparenter
// and cancelled when the same entity is borrowed again before the batch
// runs.
package entity

// Host is the scene service that owns entity lifetimes and structure.
// The pool never constructs or destroys entities except through it.
type Host[E comparable] interface {
	// Instantiate creates a new entity from template
	Instantiate(template E) E
	// Destroy permanently removes e from the scene
	Destroy(e E)
	// NewContainer creates an empty storage container named name
	NewContainer(name string) Container[E]
}

// Container is shared storage for the stored entities of one pool
type Container[E comparable] interface {
	// Attach parents e under the container
	Attach(e E)
	// Detach takes e out of the container
	Detach(e E)
	// Collapse hides the container and every child it holds
	Collapse()
	// Destroy removes the container from the scene
	Destroy()
}
