// Package scene is a minimal in-memory scene graph. It implements the
// entity host and container contracts so pools can be exercised without
// a renderer.
package scene

import (
	"github.com/ajitpratap0/recycler/pkg/entity"
)

// Node is a scene entity. Nodes form a tree through their parent.
type Node struct {
	id        uint64
	name      string
	parent    *Node
	children  map[uint64]*Node
	scale     float64
	destroyed bool
}

// ID returns the node identifier, unique within its Graph
func (n *Node) ID() uint64 { return n.id }

// Name returns the node name
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, or nil for a root node
func (n *Node) Parent() *Node { return n.parent }

// Scale returns the node's local scale
func (n *Node) Scale() float64 { return n.scale }

// Destroyed reports whether the node has been destroyed
func (n *Node) Destroyed() bool { return n.destroyed }

// ChildCount returns the number of direct children
func (n *Node) ChildCount() int { return len(n.children) }

// Visible reports whether the node and all its ancestors are alive and
// have a non-zero scale.
func (n *Node) Visible() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.destroyed || cur.scale == 0 {
			return false
		}
	}
	return true
}

// Counters record the structural work done on a Graph
type Counters struct {
	Instantiations int64 `json:"instantiations"`
	Destructions   int64 `json:"destructions"`
	Reparents      int64 `json:"reparents"`
	Collapses      int64 `json:"collapses"`
}

// Graph owns every node it creates
type Graph struct {
	nextID   uint64
	live     map[uint64]*Node
	counters Counters
}

// NewGraph creates an empty scene
func NewGraph() *Graph {
	return &Graph{live: make(map[uint64]*Node)}
}

var _ entity.Host[*Node] = (*Graph)(nil)

// NewNode creates a root node, typically used as a template
func (g *Graph) NewNode(name string) *Node {
	g.nextID++
	n := &Node{
		id:       g.nextID,
		name:     name,
		children: make(map[uint64]*Node),
		scale:    1,
	}
	g.live[n.id] = n
	return n
}

// Instantiate clones template as a new root node
func (g *Graph) Instantiate(template *Node) *Node {
	g.counters.Instantiations++
	n := g.NewNode(template.name)
	n.scale = template.scale
	return n
}

// Destroy removes n and its subtree from the scene
func (g *Graph) Destroy(n *Node) {
	if n == nil || n.destroyed {
		return
	}
	g.setParent(n, nil)
	g.destroyTree(n)
}

// NewContainer creates a storage container backed by a root node
func (g *Graph) NewContainer(name string) entity.Container[*Node] {
	return &Container{graph: g, node: g.NewNode(name)}
}

// Live returns the number of nodes that have not been destroyed
func (g *Graph) Live() int {
	return len(g.live)
}

// Counters returns the structural work counters
func (g *Graph) Counters() Counters {
	return g.counters
}

func (g *Graph) destroyTree(n *Node) {
	for _, child := range n.children {
		child.parent = nil
		g.destroyTree(child)
	}
	n.children = nil
	n.destroyed = true
	delete(g.live, n.id)
	g.counters.Destructions++
}

func (g *Graph) setParent(n, parent *Node) {
	if n.parent == parent {
		return
	}
	if n.parent != nil {
		delete(n.parent.children, n.id)
	}
	n.parent = parent
	if parent != nil {
		parent.children[n.id] = n
	}
	g.counters.Reparents++
}

// Container parks entities under a single node whose scale can be
// collapsed to hide them all at once.
type Container struct {
	graph *Graph
	node  *Node
}

var _ entity.Container[*Node] = (*Container)(nil)

// Node returns the container's backing node
func (c *Container) Node() *Node {
	return c.node
}

// Attach parents n under the container
func (c *Container) Attach(n *Node) {
	if n.destroyed || c.node.destroyed {
		return
	}
	c.graph.setParent(n, c.node)
}

// Detach moves n back to the scene root if it is held by the container
func (c *Container) Detach(n *Node) {
	if n.parent != c.node {
		return
	}
	c.graph.setParent(n, nil)
}

// Collapse scales the container to zero
func (c *Container) Collapse() {
	c.node.scale = 0
	c.graph.counters.Collapses++
}

// Destroy destroys the container and every entity it still holds
func (c *Container) Destroy() {
	c.graph.Destroy(c.node)
}
