// Package scanner implements the linear scanners that decode data, text and
// pointer table blocks.
package scanner

import (
	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/analysis"
	"github.com/retroenv/gbdisasm/internal/content"
	"github.com/retroenv/gbdisasm/internal/refs"
	"github.com/retroenv/gbdisasm/internal/worklist"
	"github.com/retroenv/retrogolib/log"
)

// Strategy decodes the units of one content kind.
type Strategy[T any] interface {
	Kind() content.Kind
	UnitSize() int

	// Decode decodes the unit at the offset. If ok is false the unit does not
	// belong to the block, if last is set the block ends after the unit.
	Decode(ctx *analysis.Context, offset int) (unit T, ok, last bool)
}

// Scanner decodes blocks of one content kind using a strategy.
type Scanner[T any] struct {
	ctx      *analysis.Context
	strategy Strategy[T]
}

// New returns a new scanner for the strategy.
func New[T any](ctx *analysis.Context, strategy Strategy[T]) *Scanner[T] {
	return &Scanner[T]{
		ctx:      ctx,
		strategy: strategy,
	}
}

// Process scans all entry locations of the queue up to the maximum generation.
func (s *Scanner[T]) Process(queue *worklist.Queue, maxGeneration int) {
	for {
		addr, ok := queue.Next(maxGeneration)
		if !ok {
			return
		}
		s.Enter(addr)
	}
}

// Enter scans a block from an entry location. An entry inside a block of the
// same kind splits that block.
func (s *Scanner[T]) Enter(addr int) {
	kind := s.strategy.Kind()
	if addr >= s.ctx.ROM.Len() {
		s.ctx.Warn("Entry is outside of the ROM", addr, log.Stringer("kind", kind))
		return
	}

	if block, ok := s.ctx.Content.Has(addr); ok {
		if block.Kind() != kind {
			s.ctx.Warn("Entry collides with existing block", addr,
				log.Stringer("kind", kind), log.Stringer("existing", block.Kind()))
		}
		return
	}

	if block, ok := s.ctx.Content.Contains(addr); ok {
		if block.Kind() != kind {
			s.ctx.Warn("Entry is inside of a block of another kind", addr,
				log.Stringer("kind", kind), log.Stringer("existing", block.Kind()))
			return
		}
		s.SplitAt(addr)
		return
	}

	s.Scan(addr)
}

// Scan decodes a block starting at start and continues with new blocks for
// as long as the scan stops at an address that is not authoritative.
func (s *Scanner[T]) Scan(start int) {
	for {
		next, fork := s.scan(start)
		if !fork {
			return
		}
		s.ctx.Logger.Debug("Continuing scan in new block",
			log.String("address", address.InROM(next).String()), log.Stringer("kind", s.strategy.Kind()))
		start = next
	}
}

func (s *Scanner[T]) scan(start int) (int, bool) {
	kind := s.strategy.Kind()
	size := s.strategy.UnitSize()
	block := NewBlock[T](kind, start, size)
	romLen := s.ctx.ROM.Len()

	offset := start
	classified := false
	for {
		if offset+size > romLen {
			s.ctx.Warn("End of ROM reached", offset, log.Stringer("kind", kind))
			break
		}
		if offset%address.BankSize+size > address.BankSize {
			s.ctx.Warn("Unit crosses the end of the bank", offset, log.Stringer("kind", kind))
			break
		}

		unit, ok, last := s.strategy.Decode(s.ctx, offset)
		if !ok {
			break
		}
		block.Units = append(block.Units, unit)
		offset += size
		if last {
			break
		}

		if offset == romLen {
			s.ctx.Warn("End of ROM reached", offset, log.Stringer("kind", kind))
			break
		}
		if offset%address.BankSize == 0 {
			s.ctx.Warn("End of bank reached", offset, log.Stringer("kind", kind))
			break
		}
		if s.ctx.ROMRefs.Has(offset) {
			classified = true
			break
		}
	}

	if len(block.Units) == 0 {
		s.ctx.Warn("No content decoded", start, log.Stringer("kind", kind))
		return 0, false
	}

	block.end = offset
	if err := s.ctx.Content.Add(block); err != nil {
		s.ctx.Warn("Adding block failed", start, log.Err(err))
		return 0, false
	}
	s.ctx.ROMRefs.Set(start, refs.Data)

	return offset, classified && s.canFork(offset)
}

// canFork returns whether a scan that stopped at a classified address can
// continue in a new block at that address.
func (s *Scanner[T]) canFork(offset int) bool {
	class := s.ctx.ROMRefs.Get(offset)
	if !class.Is(refs.Data) && !class.Is(refs.Maybe) {
		return false
	}
	if s.ctx.Declared.Contains(offset) {
		return false
	}
	_, exists := s.ctx.Content.Has(offset)
	return !exists
}

// SplitAt splits the block of the scanner kind that contains the offset.
func (s *Scanner[T]) SplitAt(offset int) bool {
	existing, ok := s.ctx.Content.Contains(offset)
	if !ok || existing.Start() == offset {
		return false
	}
	block, ok := existing.(*Block[T])
	if !ok || block.Kind() != s.strategy.Kind() {
		return false
	}

	tail, err := block.Split(offset)
	if err != nil {
		s.ctx.Warn("Splitting block failed", offset, log.Err(err))
		return false
	}
	if err := s.ctx.Content.Add(tail); err != nil {
		s.ctx.Warn("Adding split block failed", offset, log.Err(err))
		return false
	}
	s.ctx.ROMRefs.Set(offset, refs.Data)
	return true
}

// SplitReferenced splits the blocks of the scanner kind at every interior
// address that is referenced as data, so that every reference has a label.
func (s *Scanner[T]) SplitReferenced() {
	var targets []int
	s.ctx.ROMRefs.Each(func(addr int, class refs.Class) {
		if class.Is(refs.Data) || class.Is(refs.Maybe) && !s.ctx.IsNumber(addr) {
			targets = append(targets, addr)
		}
	})

	for _, addr := range targets {
		block, ok := s.ctx.Content.Contains(addr)
		if !ok || block.Start() == addr || block.Kind() != s.strategy.Kind() {
			continue
		}
		s.SplitAt(addr)
	}
}
