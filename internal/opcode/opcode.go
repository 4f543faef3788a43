// Package opcode contains the static decode tables of the SM83 instruction set.
package opcode

import (
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/refs"
)

// Prefix is the opcode that selects the secondary opcode table.
const Prefix = 0xcb

// Reference is an instruction operand that points to an address.
type Reference struct {
	Target address.Address
	Rank   refs.Rank // Data, Exec or Maybe
}

// Result is a decoded instruction.
// If Ref is set, Text contains a %s verb that gets replaced by the name of the target.
type Result struct {
	Text  string
	Ref   *Reference
	Notes []string // diagnostics about operands that could not be resolved
}

// Render returns the instruction text with the target name inserted.
func (r Result) Render(name string) string {
	if r.Ref == nil {
		return r.Text
	}
	return fmt.Sprintf(r.Text, name)
}

type decodeFunc func(value, bankStart, offset int) Result

// Opcode is an entry of the decode table.
type Opcode struct {
	Size   int // operand size in bytes
	decode decodeFunc
}

// Decode decodes the instruction at the global offset. The value is the little
// endian operand and bankStart the global offset of the currently mapped bank.
func (o Opcode) Decode(value, bankStart, offset int) Result {
	return o.decode(value, bankStart, offset)
}

// Lookup returns the primary table entry of an opcode byte.
func Lookup(b byte) Opcode {
	return primary[b]
}

// Secondary returns the mnemonic of a prefixed opcode.
func Secondary(b byte) string {
	return secondary[b]
}

// IsTerminal returns whether the opcode unconditionally transfers control elsewhere.
func IsTerminal(b byte) bool {
	switch b {
	case 0x18, 0xc3, 0xc9, 0xd9, 0xe9: // jr, jp, ret, reti, jp hl
		return true
	default:
		return false
	}
}

func implied(text string) Opcode {
	return Opcode{
		decode: func(int, int, int) Result {
			return Result{Text: text}
		},
	}
}

func immediate(format string) Opcode {
	return Opcode{
		Size: 1,
		decode: func(value, _, _ int) Result {
			return Result{Text: fmt.Sprintf(format, address.Hex(value, 2))}
		},
	}
}

// signedImmediate renders a signed 8 bit operand, the format has a %s verb
// that receives the sign and a second one for the magnitude.
func signedImmediate(format, plus string) Opcode {
	return Opcode{
		Size: 1,
		decode: func(value, _, _ int) Result {
			sign := plus
			if value >= 0x80 {
				sign = "-"
				value = 0x100 - value
			}
			return Result{Text: fmt.Sprintf(format, sign, address.Hex(value, 2))}
		},
	}
}

func prefixed() Opcode {
	return Opcode{
		Size: 1,
		decode: func(value, _, _ int) Result {
			return Result{Text: secondary[value]}
		},
	}
}

func stop() Opcode {
	return Opcode{
		Size: 1,
		decode: func(value, _, offset int) Result {
			if value == 0 {
				return Result{Text: "stop"}
			}
			text := fmt.Sprintf("db $10, %s", address.Hex(value, 2))
			return Result{
				Text:  text,
				Notes: []string{fmt.Sprintf("stop with non zero operand '%s' parsed at %s", text, address.InROM(offset))},
			}
		},
	}
}

func illegal(op byte) Opcode {
	text := fmt.Sprintf("db %s", address.Hex(int(op), 2))
	return Opcode{
		decode: func(_, _, offset int) Result {
			return Result{
				Text:  text,
				Notes: []string{fmt.Sprintf("non-opcode '%s' parsed at %s", text, address.InROM(offset))},
			}
		},
	}
}

// highRAM decodes ldh operands that address $ff00 + n.
func highRAM(format string) Opcode {
	return Opcode{
		Size: 1,
		decode: func(value, _, _ int) Result {
			return Result{
				Text: format,
				Ref: &Reference{
					Target: address.InRAM(0xff00 + value),
					Rank:   refs.Data,
				},
			}
		},
	}
}

// absolute decodes a 16 bit operand that can point into ROM or RAM.
func absolute(format string, rank refs.Rank) Opcode {
	return Opcode{
		Size: 2,
		decode: func(value, bankStart, offset int) Result {
			target := address.GetAddr(bankStart, uint16(value))
			if bankStart == 0 && target.Space == address.ROM && target.Offset >= address.WindowStart {
				number := address.Hex(value, 4)
				return Result{
					Text: fmt.Sprintf(format, number),
					Notes: []string{fmt.Sprintf("reference to %s at %s will not be considered a pointer",
						number, address.InROM(offset))},
				}
			}
			return Result{
				Text: format,
				Ref:  &Reference{Target: target, Rank: rank},
			}
		},
	}
}

// relative decodes jr instructions, the target is relative to the next instruction.
func relative(op byte, format string) Opcode {
	return Opcode{
		Size: 1,
		decode: func(value, bankStart, offset int) Result {
			displacement := int(int8(uint8(value)))
			target := offset + 2 + displacement
			location := address.InROM(offset)
			mnemonic := fmt.Sprintf(format, address.Hex(value, 2))

			if displacement < 0 {
				if target < 0 {
					return Result{
						Text:  fmt.Sprintf("db %s, %s", address.Hex(int(op), 2), address.Hex(value, 2)),
						Notes: []string{fmt.Sprintf("opcode '%s' at %s points below the start of memory", mnemonic, location)},
					}
				}
				ownBankStart := address.BankStart(offset)
				if ownBankStart != 0 && target < ownBankStart {
					return Result{
						Text: format,
						Ref: &Reference{
							Target: address.InROM(target % address.BankSize),
							Rank:   refs.Exec,
						},
						Notes: []string{fmt.Sprintf("opcode '%s' at %s points to the home bank", mnemonic, location)},
					}
				}
				return relativeResult(format, address.InROM(target), nil)
			}

			if target%address.BankSize >= offset%address.BankSize {
				return relativeResult(format, address.InROM(target), nil)
			}

			// the target crossed the end of the bank window
			if offset < address.BankSize {
				window := address.WindowStart + target%address.BankSize
				if bankStart == 0 {
					return Result{
						Text: fmt.Sprintf(format, address.Hex(window, 4)),
						Notes: []string{fmt.Sprintf("opcode '%s' at %s points to the switchable bank, reference to %s will not be considered a pointer",
							mnemonic, location, address.Hex(window, 4))},
					}
				}
				return relativeResult(format, address.InROM(bankStart+target%address.BankSize),
					[]string{fmt.Sprintf("opcode '%s' at %s points to the switchable bank", mnemonic, location)})
			}

			return relativeResult(format, address.InRAM(target-(bankStart-address.WindowStart)),
				[]string{fmt.Sprintf("opcode '%s' at %s points to a RAM value", mnemonic, location)})
		},
	}
}

func relativeResult(format string, target address.Address, notes []string) Result {
	return Result{
		Text:  format,
		Ref:   &Reference{Target: target, Rank: refs.Exec},
		Notes: notes,
	}
}
