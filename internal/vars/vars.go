// Package vars names the RAM addresses that are referenced by the program.
package vars

import (
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/consts"
	"github.com/retroenv/gbdisasm/internal/refs"
)

type region struct {
	start, end int // [start, end)
	prefix     string
}

var regions = []region{
	{0x8000, 0xa000, "v"},
	{0xa000, 0xc000, "s"},
	{0xc000, 0xe000, "w"},
	{0xfe00, 0xfea0, "o"},
	{0xff00, 0xff80, "r"},
	{0xff80, 0xffff, "h"},
}

const unknownRegion = "ram_"

// Options controls the naming of RAM addresses.
type Options struct {
	OffsetNaming       bool // name addresses relative to a preceding name of the same region
	PersistOffsetNames bool // bind offset names so that they get cached
}

// Vars generates names for RAM addresses.
type Vars struct {
	refs     *refs.Map
	consts   *consts.Consts // nil if hardware names are disabled
	options  Options
	isNumber func(addr int) bool
}

// New creates a new RAM naming manager.
func New(ramRefs *refs.Map, constants *consts.Consts, isNumber func(addr int) bool, options Options) *Vars {
	return &Vars{
		refs:     ramRefs,
		consts:   constants,
		options:  options,
		isNumber: isNumber,
	}
}

// Name returns the name of a RAM address. Generated names are bound to the
// address so that later references resolve to the same name.
func (v *Vars) Name(addr int) string {
	if name, ok := v.refs.Name(addr); ok {
		v.markConstant(addr, name)
		return name
	}

	if v.refs.Get(addr).Rank <= refs.Maybe && v.isNumber(addr) {
		return address.Hex(addr, 4)
	}

	if v.consts != nil {
		if name, ok := v.consts.Name(addr); ok {
			v.refs.Link(name, addr)
			return name
		}
	}

	if v.options.OffsetNaming {
		if base, ok := v.refs.FindPrev(addr); ok && Region(base.Address) == Region(addr) {
			name := fmt.Sprintf("%s+%d", base.Name, addr-base.Address)
			if v.options.PersistOffsetNames {
				v.refs.Link(name, addr)
			}
			return name
		}
	}

	name := fmt.Sprintf("%s%04x", Region(addr), addr)
	v.refs.Link(name, addr)
	return name
}

// markConstant marks a hardware register as used if a bound name was
// generated from it in a previous run.
func (v *Vars) markConstant(addr int, name string) {
	if v.consts == nil {
		return
	}
	if constant, ok := v.consts.Get(addr); ok && constant.Name == name {
		v.consts.MarkUsed(addr)
	}
}

// Region returns the name prefix of the memory region of a RAM address.
func Region(addr int) string {
	for _, r := range regions {
		if addr >= r.start && addr < r.end {
			return r.prefix
		}
	}
	return unknownRegion
}
