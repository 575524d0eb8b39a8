// Package recycler provides capacity-bounded object pools for frame-driven
// scenes, where creating and destroying entities every frame is too
// expensive.
//
// # Architecture
//
// Recycler is built from four layers, leaf to root:
//
// 1. Pool core (pkg/pool): a generic LIFO store with allocation, pooled,
// borrowed and overflow hooks. An empty pool allocates, a full pool hands
// the object to its overflow hook.
//
// 2. Registry (pkg/registry): pools keyed by name with typed lookup, owned
// lifetime and a single live registry per process.
//
// 3. Entity pools (pkg/entity): pools of scene entities created from a
// template. Stored entities are parked under one collapsed container.
//
// 4. Reparenter (pkg/entity): batches the move of returned entities into
// the container until the end of the frame, and cancels the move when the
// entity is borrowed again first.
//
// # Quick Start
//
//	reg, err := registry.Open()
//	if err != nil {
//	    return err
//	}
//	defer reg.Shutdown()
//
//	graph := scene.NewGraph()
//	bullets, err := registry.GetOrCreate(reg, "Bullet", func() (*entity.Pool[*scene.Node], error) {
//	    return entity.NewPool("Bullet", graph.NewNode("Bullet"), graph, 32, 8,
//	        entity.WithDeferredAttach(true))
//	})
//
//	b := bullets.Borrow()
//	bullets.Return(b)
//	reg.EndFrame()
//
// # Key Packages
//
//	pkg/pool          - Generic object pool
//	pkg/registry      - Named pools and end-of-frame flush
//	pkg/entity        - Entity pools and the deferred reparenter
//	pkg/config        - YAML configuration
//	pkg/metrics       - Prometheus collector over pool statistics
//	pkg/observability - Per-frame tracing
//	pkg/errors        - Structured error handling
//	pkg/logger        - Structured logging
//
// The recycler command lists configured pools and runs a seeded frame
// simulation that reports pool hit rates and reparenting work.
package recycler
