package entity

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/recycler/pkg/errors"
	"github.com/ajitpratap0/recycler/pkg/logger"
	"github.com/ajitpratap0/recycler/pkg/pool"
)

// Option configures an entity Pool
type Option func(*options)

type options struct {
	deferred bool
	logger   *zap.Logger
}

// WithDeferredAttach makes returned entities wait for the end-of-frame
// Flush before they are attached to the storage container.
func WithDeferredAttach(deferred bool) Option {
	return func(o *options) { o.deferred = deferred }
}

// WithLogger sets the logger for pool events
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Pool is a pool of entities created from one template. Stored entities
// live under a shared container; entities returned into a full pool are
// destroyed through the host.
type Pool[E comparable] struct {
	*pool.Pool[E]

	name       string
	template   E
	host       Host[E]
	reparenter *Reparenter[E]
	logger     *zap.Logger
}

// NewPool creates an entity pool named name. The storage container is
// named name+"Pool". A zero template or a nil host is rejected.
func NewPool[E comparable](name string, template E, host Host[E], capacity, preAllocate int, opts ...Option) (*Pool[E], error) {
	var zero E
	if template == zero {
		return nil, errors.New(errors.ErrorTypeValidation, "entity pool requires a template").WithDetail("pool", name)
	}
	if host == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "entity pool requires a host").WithDetail("pool", name)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get()
	}

	if capacity < 1 {
		capacity = 1
	}

	p := &Pool[E]{
		name:     name,
		template: template,
		host:     host,
		logger:   o.logger.With(zap.String("component", "entity_pool"), zap.String("pool", name)),
	}
	p.reparenter = NewReparenter(host.NewContainer(name+"Pool"), capacity, o.deferred, p.logger)

	p.Pool = pool.New(capacity, preAllocate,
		pool.WithHooks(pool.Hooks[E]{
			Allocate:         p.allocateEntity,
			OnPooled:         p.reparenter.OnPooled,
			OnBorrowed:       p.reparenter.OnBorrowed,
			OnUnableToReturn: p.destroyOverflow,
		}),
		pool.WithDisposer[E](p.release),
	)

	p.logger.Debug("entity pool created",
		zap.Int("capacity", p.Capacity()),
		zap.Int("pre_allocated", p.NumAllocated()),
		zap.Bool("deferred", o.deferred),
	)
	return p, nil
}

// Name returns the pool name
func (p *Pool[E]) Name() string {
	return p.name
}

// Template returns the entity new objects are instantiated from
func (p *Pool[E]) Template() E {
	return p.template
}

// Flush commits the storage moves batched since the last flush
func (p *Pool[E]) Flush() bool {
	return p.reparenter.Flush()
}

// Pending returns the number of returned entities whose storage move has
// not been committed yet
func (p *Pool[E]) Pending() int {
	return p.reparenter.Pending()
}

// Return gives e back to the pool. Once the pool is disposed e is
// destroyed through the host instead.
func (p *Pool[E]) Return(e E) {
	if p.Disposed() {
		p.host.Destroy(e)
		return
	}
	p.Pool.Return(e)
}

// Allocate tops the store up by at most amount entities. It does nothing
// once the pool is disposed.
func (p *Pool[E]) Allocate(amount int) {
	if p.Disposed() {
		return
	}
	p.Pool.Allocate(amount)
}

// Reparenter exposes the storage controller counters
func (p *Pool[E]) Reparenter() ReparenterCounters {
	return p.reparenter.Counters()
}

func (p *Pool[E]) allocateEntity() E {
	return p.host.Instantiate(p.template)
}

func (p *Pool[E]) destroyOverflow(e E) {
	p.logger.Debug("pool full, destroying returned entity")
	p.host.Destroy(e)
}

// release destroys every stored entity and the storage container.
// Entities borrowed after this are instantiated fresh and destroyed on
// Return.
func (p *Pool[E]) release() {
	destroyed := 0
	p.Drain(func(e E) {
		p.host.Destroy(e)
		destroyed++
	})
	p.reparenter.Dispose()
	p.logger.Debug("entity pool disposed", zap.Int("destroyed", destroyed))
}
