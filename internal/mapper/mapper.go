// Package mapper provides access to the banked ROM image.
package mapper

import (
	"errors"
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
)

// ErrInvalidSize is returned for ROM images that are not made of complete banks.
var ErrInvalidSize = errors.New("rom size is not a multiple of the bank size")

// Mapper provides bank aware access to a ROM image.
type Mapper struct {
	data []byte
}

// New returns a mapper for the ROM data after validating its size.
func New(data []byte) (*Mapper, error) {
	if len(data) == 0 || len(data)%address.BankSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, len(data))
	}
	return &Mapper{data: data}, nil
}

// Len returns the size of the ROM in bytes.
func (m *Mapper) Len() int {
	return len(m.data)
}

// Banks returns the number of banks of the ROM.
func (m *Mapper) Banks() int {
	return len(m.data) / address.BankSize
}

// Byte returns the byte at the global offset.
func (m *Mapper) Byte(offset int) byte {
	return m.data[offset]
}

// Word returns the little endian word at the global offset.
func (m *Mapper) Word(offset int) uint16 {
	return uint16(m.data[offset]) | uint16(m.data[offset+1])<<8
}

// Bytes returns the bytes of the range [start, end).
func (m *Mapper) Bytes(start, end int) []byte {
	return m.data[start:end]
}

// DefaultHomeBank returns the bank that code in the fixed bank is assumed to
// reference. It is only known for ROMs that have exactly one switchable bank.
func (m *Mapper) DefaultHomeBank() int {
	if m.Banks() == 2 {
		return 1
	}
	return 0
}

// CrossesBank returns whether size bytes starting at offset extend past the
// end of the bank of offset.
func CrossesBank(offset, size int) bool {
	return offset%address.BankSize+size > address.BankSize
}
