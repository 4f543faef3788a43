package routine

import (
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/analysis"
	"github.com/retroenv/gbdisasm/internal/mapper"
	"github.com/retroenv/gbdisasm/internal/opcode"
	"github.com/retroenv/gbdisasm/internal/refs"
	"github.com/retroenv/retrogolib/log"
)

// parser follows the control flow of one chain.
type parser struct {
	engine    *Engine
	ctx       *analysis.Context
	state     *session
	chain     *Chain
	current   NodeID
	offset    int
	bankStart int

	forkExternal bool // chain ended at an address that is not a routine entry
}

// parse decodes a new chain starting at start. It returns the offset that
// the chain ended at and whether parsing should continue there.
func (e *Engine) parse(start int) (int, bool) {
	p := &parser{
		engine:    e,
		ctx:       e.ctx,
		state:     newSession(),
		chain:     &Chain{arena: e.arena},
		offset:    start,
		bankStart: e.ctx.BankStart(start),
	}
	p.current = e.newNode(p.chain, p.state, start, 0)
	p.state.internal.Set(start, refs.Main)
	e.ctx.ROMRefs.Set(start, refs.Main)

	for {
		op := e.ctx.ROM.Byte(p.offset)
		if !p.decode(op) || !p.next(op) {
			break
		}
	}

	p.close()
	return p.offset, p.forkExternal
}

// decode decodes the instruction at the current offset and handles its reference.
func (p *parser) decode(op byte) bool {
	entry := opcode.Lookup(op)
	size := entry.Size
	rom := p.ctx.ROM

	if p.offset+size >= rom.Len() {
		p.ctx.Warn("End of ROM reached while decoding instruction", p.offset)
		return false
	}
	if mapper.CrossesBank(p.offset, size+1) {
		p.ctx.Warn("Instruction crosses the end of the bank", p.offset)
		return false
	}
	if p.hasIntermediateRef(size) {
		return false
	}

	var value int
	switch size {
	case 1:
		value = int(rom.Byte(p.offset + 1))
	case 2:
		value = int(rom.Word(p.offset + 1))
	}

	result := entry.Decode(value, p.bankStart, p.offset)
	for _, note := range result.Notes {
		p.ctx.Warn(note, p.offset)
	}

	ref := result.Ref
	if ref != nil && ref.Target.Space == address.ROM && ref.Target.Offset >= rom.Len() {
		p.ctx.Warn("Reference target is outside of the ROM", p.offset,
			log.String("target", address.Hex(ref.Target.Offset, 4)))
		result = opcode.Result{Text: fmt.Sprintf(result.Text, address.Hex(ref.Target.Window(), 4))}
		ref = nil
	}

	node := p.engine.arena.node(p.current)
	node.Lines = append(node.Lines, Line{
		Offset: p.offset,
		Size:   size + 1,
		Result: result,
	})

	if ref != nil {
		if ref.Target.Space == address.RAM {
			p.ctx.RAMRefs.Set(ref.Target.Offset, ref.Rank)
		} else {
			p.handleROMReference(ref.Target.Offset, ref.Rank)
		}
	}

	p.offset += size + 1
	return true
}

// hasIntermediateRef returns whether a referenced address lies inside the
// operand bytes of the instruction at the current offset. Ambiguous
// references are marked as faulty instead.
func (p *parser) hasIntermediateRef(size int) bool {
	for i := size; i > 0; i-- {
		addr := p.offset + i
		if !p.ctx.ROMRefs.Has(addr) {
			continue
		}

		class := p.ctx.ROMRefs.Get(addr)
		if class.Faulty {
			continue
		}
		if class.Rank == refs.Maybe {
			p.ctx.ROMRefs.SetFaulty(addr, refs.Maybe)
			continue
		}

		p.ctx.Warn("Instruction overlaps a referenced address", p.offset,
			log.String("target", address.InROM(addr).String()), log.Stringer("class", class))
		return true
	}
	return false
}

func (p *parser) handleROMReference(addr int, rank refs.Rank) {
	p.state.locations[addr] = append(p.state.locations[addr], p.offset)

	if p.ctx.ROMRefs.Has(addr) {
		if p.ctx.ROMRefs.Get(addr).Is(refs.Sub) {
			p.engine.promoteAt(addr)
			return
		}
		p.ctx.ROMRefs.Set(addr, rank)
		if rank == refs.Exec {
			p.ctx.Routines.Add(addr)
		}
		return
	}

	if p.state.internal.Has(addr) {
		p.state.internal.Set(addr, rank)
		return
	}
	if p.trySplitInternal(addr, rank) {
		return
	}
	if p.engine.trySplitExternal(addr, rank, p.offset) {
		return
	}
	p.state.internal.Set(addr, rank)
}

// trySplitInternal splits the chain that is being parsed if the address is
// an already decoded part of it.
func (p *parser) trySplitInternal(addr int, rank refs.Rank) bool {
	if addr <= p.chain.Start() || addr > p.offset {
		return false
	}

	id, ok := p.engine.split(p.chain, addr)
	if !ok {
		p.engine.splitFailed(addr, rank, p.offset)
		return true
	}
	if p.chain.nodes[len(p.chain.nodes)-1] == id {
		p.current = id
	}
	return true
}

// next decides whether decoding continues after the instruction.
func (p *parser) next(op byte) bool {
	if opcode.IsTerminal(op) && !p.state.internal.Get(p.offset).Is(refs.Exec) {
		return false
	}
	if p.offset == p.ctx.ROM.Len() {
		p.ctx.Warn("End of ROM reached", p.offset)
		return false
	}
	if p.offset%address.BankSize == 0 {
		p.ctx.Warn("End of bank reached", p.offset)
		return false
	}

	if p.state.internal.Has(p.offset) {
		p.fork()
		return true
	}
	if p.ctx.ROMRefs.Has(p.offset) {
		if !p.ctx.ROMRefs.Get(p.offset).Is(refs.Main) {
			p.forkExternal = true
		}
		return false
	}
	return true
}

// fork starts a new node of the chain at the current offset.
func (p *parser) fork() {
	p.engine.arena.node(p.current).end = p.offset
	p.current = p.engine.newNode(p.chain, p.state, p.offset, len(p.chain.nodes))
	p.state.internal.Set(p.offset, refs.Sub)
}

// close commits the references of the chain and adds it to the content index.
func (p *parser) close() {
	p.engine.arena.node(p.current).end = p.offset
	start := p.chain.Start()

	p.state.internal.Each(func(addr int, class refs.Class) {
		if class.Faulty {
			p.ctx.ROMRefs.SetFaulty(addr, class.Rank)
		} else {
			p.ctx.ROMRefs.Set(addr, class.Rank)
		}
		if class.Is(refs.Exec) {
			p.ctx.Routines.Add(addr)
		}
	})
	p.ctx.ROMRefs.Set(start, refs.Main)

	if p.chain.End() == start {
		p.ctx.Warn("Routine has no instructions", start)
		return
	}
	if err := p.ctx.Content.Add(p.chain); err != nil {
		p.ctx.Warn("Adding routine failed", start, log.Err(err))
	}
}
