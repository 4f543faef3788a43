// Package program represents a disassembled Game Boy program.
package program

import (
	"github.com/retroenv/gbdisasm/internal/symbols"
)

// Line defines the content of an output line that can represent data or code.
type Line struct {
	Labels       []string // names bound to the offset, canonical name first
	LabelComment string

	Code        string // asm output of this line, empty for bundled data and label-only lines
	Data        []byte // data bytes that get bundled into db lines
	Offset      int
	OpcodeBytes []byte // all bytes that are part of the instruction or text
}

// Section is a run of contiguous content of one bank.
type Section struct {
	Name    string
	Bank    int
	Address int // CPU address of the first byte
	Lines   []Line
}

// Program defines a Game Boy program that contains code or data.
type Program struct {
	Banks    int
	Sections []*Section

	// hardware register names that are used by the code
	Constants map[string]int

	Shim       []symbols.Symbol // names to cache for the next run
	NewSymbols []symbols.Symbol // names of addresses first discovered in this run
}

// New creates a new program for a ROM with the given number of banks.
func New(banks int) *Program {
	return &Program{
		Banks:     banks,
		Constants: map[string]int{},
	}
}
