// Package content implements the address ordered index of decoded content blocks.
package content

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOverlap is returned when a block would overlap an already indexed block.
var ErrOverlap = errors.New("block overlaps existing content")

// Kind is the type of content a block holds.
type Kind uint8

const (
	Data Kind = iota
	Text
	Table
	Routine
)

var kindNames = [...]string{"data", "text", "table", "routine"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Prefix returns the label prefix used for unnamed blocks of this kind.
func (k Kind) Prefix() string {
	switch k {
	case Data:
		return "Data"
	case Text:
		return "Text"
	case Table:
		return "Table"
	default:
		return "Function"
	}
}

// Block is a decoded byte range [Start, End) of the ROM.
type Block interface {
	Start() int
	End() int
	Kind() Kind
}

// Index is an ordered sequence of non overlapping blocks keyed by start offset.
type Index struct {
	blocks []Block
}

// NewIndex returns a new empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add inserts a block, keeping the index ordered by start offset.
func (idx *Index) Add(block Block) error {
	i := idx.search(block.Start())
	if i < len(idx.blocks) && idx.blocks[i].Start() < block.End() {
		return fmt.Errorf("%w: [%04x,%04x) and %s block at %04x",
			ErrOverlap, block.Start(), block.End(), idx.blocks[i].Kind(), idx.blocks[i].Start())
	}
	if i > 0 && idx.blocks[i-1].End() > block.Start() {
		return fmt.Errorf("%w: [%04x,%04x) and %s block at %04x",
			ErrOverlap, block.Start(), block.End(), idx.blocks[i-1].Kind(), idx.blocks[i-1].Start())
	}

	idx.blocks = append(idx.blocks, nil)
	copy(idx.blocks[i+1:], idx.blocks[i:])
	idx.blocks[i] = block
	return nil
}

// Has returns the block that starts exactly at the offset.
func (idx *Index) Has(offset int) (Block, bool) {
	i := idx.search(offset)
	if i < len(idx.blocks) && idx.blocks[i].Start() == offset {
		return idx.blocks[i], true
	}
	return nil, false
}

// Contains returns the block whose range contains the offset.
func (idx *Index) Contains(offset int) (Block, bool) {
	i := idx.search(offset + 1)
	if i == 0 {
		return nil, false
	}
	block := idx.blocks[i-1]
	if offset < block.End() {
		return block, true
	}
	return nil, false
}

// Blocks returns all blocks in ascending order.
func (idx *Index) Blocks() []Block {
	return idx.blocks
}

// Len returns the number of indexed blocks.
func (idx *Index) Len() int {
	return len(idx.blocks)
}

// search returns the position of the first block starting at or after offset.
func (idx *Index) search(offset int) int {
	return sort.Search(len(idx.blocks), func(i int) bool {
		return idx.blocks[i].Start() >= offset
	})
}
