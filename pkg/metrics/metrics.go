// Package metrics exports pool statistics as Prometheus metrics.
//
// Pools are not safe for concurrent use, so the collector never reads a
// pool during a scrape. The frame loop hands it a snapshot instead:
//
//	c := metrics.NewCollector("recycler")
//	prometheus.MustRegister(c)
//
//	for frame := range frames {
//	    timer := metrics.NewTimer("frame")
//	    runFrame()
//	    c.ObserveFlushes(reg.EndFrame())
//	    c.ObserveFrame(timer.Stop())
//	    c.Observe(reg)
//	}
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ajitpratap0/recycler/pkg/pool"
)

// StatsSource is anything that can report per-pool statistics, typically
// a *registry.Registry.
type StatsSource interface {
	Stats() map[string]pool.Stats
}

// Collector is a prometheus.Collector over the last observed snapshot
type Collector struct {
	mu       sync.RWMutex
	snapshot map[string]pool.Stats

	stored      *prometheus.Desc
	capacity    *prometheus.Desc
	allocations *prometheus.Desc
	borrows     *prometheus.Desc
	returns     *prometheus.Desc
	misses      *prometheus.Desc
	overflows   *prometheus.Desc

	frameDuration prometheus.Histogram
	flushes       prometheus.Counter
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector whose metric names start with namespace
func NewCollector(namespace string) *Collector {
	labels := []string{"pool"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", name), help, labels, nil)
	}

	return &Collector{
		snapshot:    make(map[string]pool.Stats),
		stored:      desc("stored", "Objects currently stored in the pool"),
		capacity:    desc("capacity", "Maximum number of objects the pool stores"),
		allocations: desc("allocations_total", "Objects created by the pool"),
		borrows:     desc("borrows_total", "Borrow calls"),
		returns:     desc("returns_total", "Objects accepted back into the pool"),
		misses:      desc("misses_total", "Borrows served by a fresh allocation"),
		overflows:   desc("overflows_total", "Returns rejected because the pool was full"),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "duration_seconds",
			Help:      "Wall time of one simulated frame",
			Buckets: []float64{
				1e-6, // 1μs
				1e-5, // 10μs
				1e-4, // 100μs
				1e-3, // 1ms
				5e-3,
				1.6e-2, // one 60Hz frame
				1e-1,
			},
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "flushes_total",
			Help:      "Pools that committed batched work at the end of a frame",
		}),
	}
}

// Observe replaces the snapshot with the current statistics of src
func (c *Collector) Observe(src StatsSource) {
	stats := src.Stats()
	snapshot := make(map[string]pool.Stats, len(stats))
	for k, v := range stats {
		snapshot[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
}

// ObserveFrame records the duration of one frame
func (c *Collector) ObserveFrame(d time.Duration) {
	c.frameDuration.Observe(d.Seconds())
}

// ObserveFlushes adds the number of pools flushed at the end of a frame
func (c *Collector) ObserveFlushes(n int) {
	c.flushes.Add(float64(n))
}

// Snapshot returns a copy of the last observed statistics
func (c *Collector) Snapshot() map[string]pool.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]pool.Stats, len(c.snapshot))
	for k, v := range c.snapshot {
		out[k] = v
	}
	return out
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.stored
	ch <- c.capacity
	ch <- c.allocations
	ch <- c.borrows
	ch <- c.returns
	ch <- c.misses
	ch <- c.overflows
	c.frameDuration.Describe(ch)
	c.flushes.Describe(ch)
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	names := make([]string, 0, len(c.snapshot))
	for name := range c.snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := c.snapshot[name]
		ch <- prometheus.MustNewConstMetric(c.stored, prometheus.GaugeValue, float64(s.Stored), name)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity), name)
		ch <- prometheus.MustNewConstMetric(c.allocations, prometheus.CounterValue, float64(s.Allocations), name)
		ch <- prometheus.MustNewConstMetric(c.borrows, prometheus.CounterValue, float64(s.Borrows), name)
		ch <- prometheus.MustNewConstMetric(c.returns, prometheus.CounterValue, float64(s.Returns), name)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), name)
		ch <- prometheus.MustNewConstMetric(c.overflows, prometheus.CounterValue, float64(s.Overflows), name)
	}
	c.mu.RUnlock()

	c.frameDuration.Collect(ch)
	c.flushes.Collect(ch)
}

// Timer measures the duration of an operation from creation to Stop
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer name
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the time elapsed since the timer was created. It can be
// called more than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
