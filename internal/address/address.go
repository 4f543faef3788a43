// Package address converts between banked CPU addresses and global ROM offsets.
package address

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// BankSize is the size of a ROM bank in bytes.
	BankSize = 0x4000
	// WindowStart is the CPU address where the switchable bank is mapped.
	WindowStart = 0x4000
	// RAMStart is the first CPU address that is not backed by ROM.
	RAMStart = 0x8000
)

var errInvalidFormat = errors.New("invalid bank address format")

// Space is the address space that an address belongs to.
type Space uint8

const (
	ROM Space = iota
	RAM
)

func (s Space) String() string {
	if s == RAM {
		return "ram"
	}
	return "rom"
}

// Address is a global ROM offset or a RAM CPU address, tagged with its space.
// Bank and window values are derived from the offset.
type Address struct {
	Offset int
	Space  Space
}

// InROM returns a ROM address for the given global offset.
func InROM(offset int) Address {
	return Address{Offset: offset, Space: ROM}
}

// InRAM returns a RAM address for the given CPU address.
func InRAM(addr int) Address {
	return Address{Offset: addr, Space: RAM}
}

// Bank returns the ROM bank of the address, RAM addresses are always in bank 0.
func (a Address) Bank() int {
	if a.Space == RAM {
		return 0
	}
	return a.Offset / BankSize
}

// Window returns the CPU address that the address is visible at when its bank is mapped.
func (a Address) Window() int {
	if a.Space == RAM || a.Offset < BankSize {
		return a.Offset
	}
	return WindowStart + a.Offset%BankSize
}

// String returns the address in the BB:AAAA notation used by symbol files.
func (a Address) String() string {
	return fmt.Sprintf("%02x:%04x", a.Bank(), a.Window())
}

// ToGlobal converts a bank and CPU address pair to a global ROM offset.
func ToGlobal(bank, addr int) int {
	if bank == 0 {
		return addr
	}
	return bank*BankSize + (addr - WindowStart)
}

// BankStart returns the global offset of the start of the bank containing offset.
func BankStart(offset int) int {
	return offset - offset%BankSize
}

// GetAddr classifies a raw 16-bit operand. Values in the switchable window are
// assumed to target the bank that starts at bankStart, a bankStart of 0 means
// that no bank is known to be mapped.
func GetAddr(bankStart int, value uint16) Address {
	v := int(value)
	if v >= RAMStart {
		return InRAM(v)
	}
	if bankStart != 0 && v >= WindowStart {
		return InROM(bankStart + v - WindowStart)
	}
	return InROM(v)
}

// Parse parses an address in the BB:AAAA notation.
func Parse(s string) (Address, error) {
	bankPart, addrPart, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Address{}, fmt.Errorf("%w: '%s'", errInvalidFormat, s)
	}

	bank, err := strconv.ParseUint(bankPart, 16, 8)
	if err != nil {
		return Address{}, fmt.Errorf("parsing bank of '%s': %w", s, err)
	}
	addr, err := strconv.ParseUint(addrPart, 16, 16)
	if err != nil {
		return Address{}, fmt.Errorf("parsing address of '%s': %w", s, err)
	}

	switch {
	case addr >= RAMStart:
		return InRAM(int(addr)), nil
	case addr < WindowStart:
		return InROM(int(addr)), nil
	default:
		return InROM(ToGlobal(int(bank), int(addr))), nil
	}
}

// Hex formats a number as a lowercase assembler hex literal with at least
// the given number of digits.
func Hex(value, digits int) string {
	return fmt.Sprintf("$%0*x", digits, value)
}
