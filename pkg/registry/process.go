package registry

import (
	"sync/atomic"

	"github.com/ajitpratap0/recycler/pkg/errors"
)

// live holds the registry claimed by Open until its Shutdown
var live atomic.Pointer[Registry]

// Open creates the process-wide registry. Only one may be live at a time:
// while another is open the call logs an error and returns a state error
// with no registry. The owner passes the returned handle to whoever needs
// it and calls Shutdown on exit.
func Open(opts ...Option) (*Registry, error) {
	r := New(opts...)
	if !live.CompareAndSwap(nil, r) {
		r.logger.Error("cannot have multiple instances of the pool registry")
		return nil, errors.New(errors.ErrorTypeState, "pool registry already open")
	}
	return r, nil
}

// Current returns the registry claimed by Open, or nil
func Current() *Registry {
	return live.Load()
}

// Shutdown removes and disposes every pool and, if r is the process-wide
// registry, releases it so Open can be called again.
func (r *Registry) Shutdown() {
	r.RemoveAll()
	if live.CompareAndSwap(r, nil) {
		r.logger.Debug("pool registry closed")
	}
}
