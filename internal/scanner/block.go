package scanner

import (
	"errors"
	"fmt"
	"slices"

	"github.com/retroenv/gbdisasm/internal/content"
)

var (
	errOutside    = errors.New("split address is outside of the block")
	errMisaligned = errors.New("split address is not on a unit boundary")
)

// Block is a linearly decoded content block made of units of a fixed size.
type Block[T any] struct {
	start    int
	end      int
	kind     content.Kind
	unitSize int

	Units []T
}

// NewBlock returns a block that holds the units decoded from start on.
func NewBlock[T any](kind content.Kind, start, unitSize int, units ...T) *Block[T] {
	return &Block[T]{
		start:    start,
		end:      start + len(units)*unitSize,
		kind:     kind,
		unitSize: unitSize,
		Units:    units,
	}
}

// Start returns the global offset of the first byte of the block.
func (b *Block[T]) Start() int {
	return b.start
}

// End returns the global offset after the last byte of the block.
func (b *Block[T]) End() int {
	return b.end
}

// Kind returns the content kind of the block.
func (b *Block[T]) Kind() content.Kind {
	return b.kind
}

// UnitSize returns the size of a unit in bytes.
func (b *Block[T]) UnitSize() int {
	return b.unitSize
}

// Split truncates the block at offset and returns a new block holding the
// units from offset on. The block is unchanged if an error is returned.
func (b *Block[T]) Split(offset int) (*Block[T], error) {
	if offset <= b.start || offset >= b.end {
		return nil, fmt.Errorf("%w: %04x not in [%04x,%04x)", errOutside, offset, b.start, b.end)
	}
	rel := offset - b.start
	if rel%b.unitSize != 0 {
		return nil, fmt.Errorf("%w: %04x in %s block at %04x", errMisaligned, offset, b.kind, b.start)
	}

	i := rel / b.unitSize
	tail := &Block[T]{
		start:    offset,
		end:      b.end,
		kind:     b.kind,
		unitSize: b.unitSize,
		Units:    slices.Clone(b.Units[i:]),
	}
	b.Units = b.Units[:i:i]
	b.end = offset
	return tail, nil
}
