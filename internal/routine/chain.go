package routine

import (
	"github.com/retroenv/gbdisasm/internal/content"
	"github.com/retroenv/gbdisasm/internal/opcode"
	"github.com/retroenv/gbdisasm/internal/refs"
)

// NodeID is a stable handle of a node in the arena.
type NodeID int

// Line is a decoded instruction.
type Line struct {
	Offset int
	Size   int // instruction size including the opcode
	Result opcode.Result
}

// Node is a part of a chain that starts at a label. Every node except the
// head of a chain is an internal label of that chain.
type Node struct {
	start int
	end   int
	chain *Chain
	state *session

	Lines []Line
}

// Start returns the global offset of the first instruction of the node.
func (n *Node) Start() int {
	return n.start
}

// End returns the global offset after the last instruction of the node.
func (n *Node) End() int {
	return n.end
}

// references returns the offsets of the instructions of the parsing session
// of the node that referenced the node start.
func (n *Node) references() []int {
	return n.state.locations[n.start]
}

// Chain is the ordered list of nodes that was decoded from one entry point.
type Chain struct {
	arena *arena
	nodes []NodeID
}

// Start returns the global offset of the chain entry point.
func (c *Chain) Start() int {
	return c.arena.node(c.nodes[0]).start
}

// End returns the global offset after the last instruction of the chain.
func (c *Chain) End() int {
	return c.arena.node(c.nodes[len(c.nodes)-1]).end
}

// Kind returns the content kind of a chain.
func (c *Chain) Kind() content.Kind {
	return content.Routine
}

// Nodes returns the nodes of the chain in address order.
func (c *Chain) Nodes() []*Node {
	nodes := make([]*Node, len(c.nodes))
	for i, id := range c.nodes {
		nodes[i] = c.arena.node(id)
	}
	return nodes
}

type arena struct {
	nodes []*Node
}

func (a *arena) node(id NodeID) *Node {
	return a.nodes[id]
}

// session holds the references of a chain that are not yet committed to the
// global classification while the chain is being parsed.
type session struct {
	internal  *refs.Map
	locations map[int][]int // referenced address to the instruction offsets that reference it
}

func newSession() *session {
	return &session{
		internal:  refs.New(),
		locations: map[int][]int{},
	}
}
