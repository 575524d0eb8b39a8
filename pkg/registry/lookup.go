package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ajitpratap0/recycler/pkg/errors"
	"github.com/ajitpratap0/recycler/pkg/pool"
)

// LookupStatus is the outcome of a typed lookup
type LookupStatus int

const (
	// Found means the key exists and holds the requested kind
	Found LookupStatus = iota
	// NotFound means nothing is registered under the key
	NotFound
	// KindMismatch means the key holds a pool of another kind
	KindMismatch
)

func (s LookupStatus) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case KindMismatch:
		return "kind_mismatch"
	default:
		return fmt.Sprintf("LookupStatus(%d)", int(s))
	}
}

// Lookup returns the pool under key if it is a P. A pool of any other
// kind is never coerced: the zero P is returned with KindMismatch.
func Lookup[P pool.ObjectPool](r *Registry, key string) (P, LookupStatus) {
	var zero P
	stored, ok := r.load(key)
	if !ok {
		return zero, NotFound
	}
	typed, ok := stored.(P)
	if !ok {
		return zero, KindMismatch
	}
	return typed, Found
}

// Get is Lookup with the status mapped to an error. A kind mismatch is
// also logged.
//
// Example:
//
//	bullets, err := registry.Get[*entity.Pool[*scene.Node]](reg, "Bullet")
//	if errors.IsType(err, errors.ErrorTypeNotFound) {
//	    // create it
//	}
func Get[P pool.ObjectPool](r *Registry, key string) (P, error) {
	p, status := Lookup[P](r, key)
	switch status {
	case Found:
		return p, nil
	case KindMismatch:
		stored, _ := r.load(key)
		want := fmt.Sprintf("%T", p)
		got := fmt.Sprintf("%T", stored)
		r.logger.Error("pool is not of requested type",
			zap.String("pool", key),
			zap.String("want", want),
			zap.String("got", got),
		)
		return p, errors.Newf(errors.ErrorTypeTypeMismatch, "pool %s is not of type %s", key, want).
			WithDetail("pool", key).
			WithDetail("actual", got)
	default:
		return p, errors.Newf(errors.ErrorTypeNotFound, "pool %s not found", key).WithDetail("pool", key)
	}
}

// GetOrCreate returns the P under key, or builds one with create and
// registers it when the key is free. A key holding another kind is a
// type mismatch and create is not called.
func GetOrCreate[P pool.ObjectPool](r *Registry, key string, create func() (P, error)) (P, error) {
	p, err := Get[P](r, key)
	if err == nil || !errors.IsType(err, errors.ErrorTypeNotFound) {
		return p, err
	}

	p, err = create()
	if err != nil {
		var zero P
		return zero, errors.Wrap(err, errors.GetType(err), fmt.Sprintf("failed to create pool %s", key))
	}
	if err := r.Add(key, p); err != nil {
		p.Dispose()
		var zero P
		return zero, err
	}
	return p, nil
}
