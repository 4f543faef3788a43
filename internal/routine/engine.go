// Package routine decodes routines by following the control flow. Each entry
// point produces a chain of nodes, nodes that are referenced from other chains
// get promoted to chains of their own.
package routine

import (
	"context"
	"fmt"
	"slices"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/analysis"
	"github.com/retroenv/gbdisasm/internal/content"
	"github.com/retroenv/gbdisasm/internal/refs"
	"github.com/retroenv/gbdisasm/internal/worklist"
	"github.com/retroenv/retrogolib/log"
)

// Engine parses routines into chains.
type Engine struct {
	ctx    *analysis.Context
	arena  *arena
	nodeAt map[int]NodeID
}

// New returns a new routine engine.
func New(ctx *analysis.Context) *Engine {
	return &Engine{
		ctx:    ctx,
		arena:  &arena{},
		nodeAt: map[int]NodeID{},
	}
}

// Process parses all entry locations of the queue up to the maximum generation.
// Cancellation is checked between entries, a chain is always parsed completely.
func (e *Engine) Process(ctx context.Context, queue *worklist.Queue, maxGeneration int) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("parsing routines: %w", err)
		}
		addr, ok := queue.Next(maxGeneration)
		if !ok {
			return nil
		}
		e.Enter(addr)
	}
}

// Enter parses a routine from an entry location. Parsing continues at the
// end of a chain that ran into another classified address that is not a
// routine entry.
func (e *Engine) Enter(addr int) {
	for {
		next, fork := e.enter(addr)
		if !fork {
			return
		}
		e.ctx.Logger.Debug("Continuing routine parsing at referenced address",
			log.String("address", address.InROM(next).String()))
		addr = next
	}
}

// Node returns the node that starts at the offset.
func (e *Engine) Node(offset int) (*Node, bool) {
	id, ok := e.nodeAt[offset]
	if !ok {
		return nil, false
	}
	return e.arena.node(id), true
}

func (e *Engine) enter(addr int) (int, bool) {
	if addr >= e.ctx.ROM.Len() {
		e.ctx.Warn("Routine entry is outside of the ROM", addr)
		return 0, false
	}

	if block, ok := e.ctx.Content.Has(addr); ok {
		if block.Kind() != content.Routine {
			e.ctx.Warn("Routine entry collides with existing block", addr, log.Stringer("existing", block.Kind()))
		} else {
			e.ctx.Logger.Debug("Routine already parsed", log.String("address", address.InROM(addr).String()))
		}
		return 0, false
	}

	class := e.ctx.ROMRefs.Get(addr)
	if class.Faulty {
		e.ctx.Logger.Debug("Skipping faulty routine entry",
			log.String("address", address.InROM(addr).String()), log.Stringer("class", class))
		return 0, false
	}
	if class.Is(refs.Sub) {
		e.promoteAt(addr)
		return 0, false
	}

	if block, ok := e.ctx.Content.Contains(addr); ok {
		if block.Kind() == content.Routine {
			e.trySplitExternal(addr, refs.Exec, -1)
		} else {
			e.ctx.Warn("Routine entry is inside of a block of another kind", addr, log.Stringer("existing", block.Kind()))
		}
		return 0, false
	}

	return e.parse(addr)
}

// newNode creates a node and inserts it into the chain at the position.
func (e *Engine) newNode(chain *Chain, state *session, start, position int) NodeID {
	id := NodeID(len(e.arena.nodes))
	e.arena.nodes = append(e.arena.nodes, &Node{
		start: start,
		chain: chain,
		state: state,
	})
	chain.nodes = slices.Insert(chain.nodes, position, id)
	e.nodeAt[start] = id
	return id
}

// split splits the node of the chain that contains the instruction at addr.
// It fails if addr is not the start of a decoded instruction.
func (e *Engine) split(chain *Chain, addr int) (NodeID, bool) {
	for i := len(chain.nodes) - 1; i >= 0; i-- {
		node := e.arena.node(chain.nodes[i])
		if node.start >= addr {
			continue
		}

		j := slices.IndexFunc(node.Lines, func(line Line) bool {
			return line.Offset == addr
		})
		if j < 0 {
			return 0, false
		}

		id := e.newNode(chain, node.state, addr, i+1)
		tail := e.arena.node(id)
		tail.end = node.end
		tail.Lines = slices.Clone(node.Lines[j:])
		node.Lines = node.Lines[:j:j]
		node.end = addr
		node.state.internal.Set(addr, refs.Sub)
		return id, true
	}
	return 0, false
}

// splitFailed marks a reference into the middle of an instruction as faulty.
func (e *Engine) splitFailed(addr int, rank refs.Rank, from int) {
	e.ctx.ROMRefs.SetFaulty(addr, rank)
	if rank == refs.Maybe {
		return
	}
	if from < 0 {
		e.ctx.Warn("Entry points to the middle of an instruction", addr)
		return
	}
	e.ctx.Warn("Reference points to the middle of an instruction", addr,
		log.String("referenced_at", address.InROM(from).String()))
}

// trySplitExternal splits a parsed chain at addr and promotes the new node.
func (e *Engine) trySplitExternal(addr int, rank refs.Rank, from int) bool {
	block, ok := e.ctx.Content.Contains(addr)
	if !ok {
		return false
	}
	chain, ok := block.(*Chain)
	if !ok {
		return false
	}

	id, ok := e.split(chain, addr)
	if !ok {
		e.splitFailed(addr, rank, from)
		return true
	}
	e.promote(id)
	return true
}

func (e *Engine) promoteAt(addr int) {
	if id, ok := e.nodeAt[addr]; ok {
		e.promote(id)
	}
}

// promote turns a node into the head of a new chain made of the node and all
// nodes that follow it. Neighbor nodes whose code crosses the new chain
// boundary get promoted as well.
func (e *Engine) promote(id NodeID) {
	node := e.arena.node(id)
	chain := node.chain
	i := slices.Index(chain.nodes, id)
	if i <= 0 {
		return
	}

	promoted := &Chain{
		arena: e.arena,
		nodes: slices.Clone(chain.nodes[i:]),
	}
	chain.nodes = chain.nodes[:i:i]
	for _, nid := range promoted.nodes {
		e.arena.node(nid).chain = promoted
	}

	e.ctx.ROMRefs.Set(node.start, refs.Main)
	if err := e.ctx.Content.Add(promoted); err != nil {
		e.ctx.Warn("Adding promoted chain failed", node.start, log.Err(err))
	}

	e.checkBackwards(chain, i-1, node.start)
	e.checkForwards(promoted, 1, node.start)
}

// checkBackwards promotes the last node before the boundary that references
// code at or after the boundary.
func (e *Engine) checkBackwards(chain *Chain, i, boundary int) {
	for ; i > 0; i-- {
		id := chain.nodes[i]
		if slices.ContainsFunc(e.arena.node(id).references(), func(at int) bool { return at >= boundary }) {
			e.promote(id)
			return
		}
	}
}

// checkForwards promotes the first node after the boundary that is referenced
// from code before the boundary.
func (e *Engine) checkForwards(chain *Chain, i, boundary int) {
	for ; i < len(chain.nodes); i++ {
		id := chain.nodes[i]
		if slices.ContainsFunc(e.arena.node(id).references(), func(at int) bool { return at < boundary }) {
			e.promote(id)
			return
		}
	}
}
