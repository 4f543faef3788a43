package disasm

import (
	"fmt"
	"slices"
	"sort"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/content"
	"github.com/retroenv/gbdisasm/internal/refs"
	"github.com/retroenv/gbdisasm/internal/routine"
)

const unknownPrefix = "Unknown"

// collectLabels collects all offsets that start a block or a node of a chain.
func (dis *Disasm) collectLabels(blocks []content.Block) {
	dis.labels = dis.labels[:0]
	for _, block := range blocks {
		dis.labels = append(dis.labels, block.Start())

		chain, ok := block.(*routine.Chain)
		if !ok {
			continue
		}
		for _, node := range chain.Nodes() {
			dis.labels = append(dis.labels, node.Start())
		}
	}
	slices.Sort(dis.labels)
	dis.labels = slices.Compact(dis.labels)
}

func (dis *Disasm) isLabel(offset int) bool {
	_, ok := slices.BinarySearch(dis.labels, offset)
	return ok
}

// romName returns the name of a ROM offset. Generated names of label sites
// are bound so that they get cached in the shim.
func (dis *Disasm) romName(offset int) string {
	if name, ok := dis.ctx.ROMRefs.Name(offset); ok {
		return name
	}

	class := dis.ctx.ROMRefs.Get(offset)
	if class.Rank == refs.Maybe && (class.Faulty || dis.ctx.IsNumber(offset)) {
		return address.Hex(address.InROM(offset).Window(), 4)
	}

	if dis.isLabel(offset) {
		name := dis.generateName(offset, class)
		dis.ctx.ROMRefs.Link(name, offset)
		return name
	}

	if block, ok := dis.ctx.Content.Contains(offset); ok {
		if name, ok := dis.derivedName(block, offset); ok {
			return name
		}
	}

	name := dis.generateName(offset, class)
	dis.ctx.ROMRefs.Link(name, offset)
	return name
}

// derivedName names an offset inside a block relative to the closest
// preceding label of the block.
func (dis *Disasm) derivedName(block content.Block, offset int) (string, bool) {
	i := sort.SearchInts(dis.labels, offset+1) - 1
	if i < 0 || dis.labels[i] < block.Start() {
		return "", false
	}
	base := dis.labels[i]
	return fmt.Sprintf("%s+%d", dis.romName(base), offset-base), true
}

func (dis *Disasm) generateName(offset int, class refs.Class) string {
	prefix := unknownPrefix
	switch {
	case class.Faulty:
	case class.Rank == refs.Sub:
		prefix = ".sub_"
	case class.Rank >= refs.Exec:
		prefix = content.Routine.Prefix()
	default:
		if block, ok := dis.ctx.Content.Has(offset); ok {
			prefix = block.Kind().Prefix()
		}
	}
	return fmt.Sprintf("%s%04x", prefix, offset)
}

// ramName returns the name of a RAM address.
func (dis *Disasm) ramName(addr int) string {
	return dis.vars.Name(addr)
}

// operandName returns the name of an instruction or table operand.
func (dis *Disasm) operandName(target address.Address) string {
	if target.Space == address.RAM {
		return dis.ramName(target.Offset)
	}
	return dis.romName(target.Offset)
}
