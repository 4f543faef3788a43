package opcode

import (
	"fmt"

	"github.com/retroenv/gbdisasm/internal/refs"
)

var registers = [8]string{"b", "c", "d", "e", "h", "l", "[hl]", "a"}

var (
	primary   [256]Opcode
	secondary [256]string
)

// irregular contains all opcodes outside of the register load and arithmetic blocks.
var irregular = map[byte]Opcode{
	0x00: implied("nop"),
	0x01: absolute("ld bc, %s", refs.Maybe),
	0x02: implied("ld [bc], a"),
	0x03: implied("inc bc"),
	0x04: implied("inc b"),
	0x05: implied("dec b"),
	0x06: immediate("ld b, %s"),
	0x07: implied("rlca"),
	0x08: absolute("ld [%s], sp", refs.Data),
	0x09: implied("add hl, bc"),
	0x0a: implied("ld a, [bc]"),
	0x0b: implied("dec bc"),
	0x0c: implied("inc c"),
	0x0d: implied("dec c"),
	0x0e: immediate("ld c, %s"),
	0x0f: implied("rrca"),

	0x10: stop(),
	0x11: absolute("ld de, %s", refs.Maybe),
	0x12: implied("ld [de], a"),
	0x13: implied("inc de"),
	0x14: implied("inc d"),
	0x15: implied("dec d"),
	0x16: immediate("ld d, %s"),
	0x17: implied("rla"),
	0x18: relative(0x18, "jr %s"),
	0x19: implied("add hl, de"),
	0x1a: implied("ld a, [de]"),
	0x1b: implied("dec de"),
	0x1c: implied("inc e"),
	0x1d: implied("dec e"),
	0x1e: immediate("ld e, %s"),
	0x1f: implied("rra"),

	0x20: relative(0x20, "jr nz, %s"),
	0x21: absolute("ld hl, %s", refs.Maybe),
	0x22: implied("ld [hli], a"),
	0x23: implied("inc hl"),
	0x24: implied("inc h"),
	0x25: implied("dec h"),
	0x26: immediate("ld h, %s"),
	0x27: implied("daa"),
	0x28: relative(0x28, "jr z, %s"),
	0x29: implied("add hl, hl"),
	0x2a: implied("ld a, [hli]"),
	0x2b: implied("dec hl"),
	0x2c: implied("inc l"),
	0x2d: implied("dec l"),
	0x2e: immediate("ld l, %s"),
	0x2f: implied("cpl"),

	0x30: relative(0x30, "jr nc, %s"),
	0x31: absolute("ld sp, %s", refs.Data),
	0x32: implied("ld [hld], a"),
	0x33: implied("inc sp"),
	0x34: implied("inc [hl]"),
	0x35: implied("dec [hl]"),
	0x36: immediate("ld [hl], %s"),
	0x37: implied("scf"),
	0x38: relative(0x38, "jr c, %s"),
	0x39: implied("add hl, sp"),
	0x3a: implied("ld a, [hld]"),
	0x3b: implied("dec sp"),
	0x3c: implied("inc a"),
	0x3d: implied("dec a"),
	0x3e: immediate("ld a, %s"),
	0x3f: implied("ccf"),

	0x76: implied("halt"),

	0xc0: implied("ret nz"),
	0xc1: implied("pop bc"),
	0xc2: absolute("jp nz, %s", refs.Exec),
	0xc3: absolute("jp %s", refs.Exec),
	0xc4: absolute("call nz, %s", refs.Exec),
	0xc5: implied("push bc"),
	0xc6: immediate("add %s"),
	0xc7: implied("rst $00"),
	0xc8: implied("ret z"),
	0xc9: implied("ret"),
	0xca: absolute("jp z, %s", refs.Exec),
	0xcb: prefixed(),
	0xcc: absolute("call z, %s", refs.Exec),
	0xcd: absolute("call %s", refs.Exec),
	0xce: immediate("adc %s"),
	0xcf: implied("rst $08"),

	0xd0: implied("ret nc"),
	0xd1: implied("pop de"),
	0xd2: absolute("jp nc, %s", refs.Exec),
	0xd4: absolute("call nc, %s", refs.Exec),
	0xd5: implied("push de"),
	0xd6: immediate("sub %s"),
	0xd7: implied("rst $10"),
	0xd8: implied("ret c"),
	0xd9: implied("reti"),
	0xda: absolute("jp c, %s", refs.Exec),
	0xdc: absolute("call c, %s", refs.Exec),
	0xde: immediate("sbc %s"),
	0xdf: implied("rst $18"),

	0xe0: highRAM("ldh [%s], a"),
	0xe1: implied("pop hl"),
	0xe2: implied("ld [$ff00+c], a"),
	0xe5: implied("push hl"),
	0xe6: immediate("and %s"),
	0xe7: implied("rst $20"),
	0xe8: signedImmediate("add sp, %s%s", ""),
	0xe9: implied("jp hl"),
	0xea: absolute("ld [%s], a", refs.Data),
	0xee: immediate("xor %s"),
	0xef: implied("rst $28"),

	0xf0: highRAM("ldh a, [%s]"),
	0xf1: implied("pop af"),
	0xf2: implied("ld a, [$ff00+c]"),
	0xf3: implied("di"),
	0xf5: implied("push af"),
	0xf6: immediate("or %s"),
	0xf7: implied("rst $30"),
	0xf8: signedImmediate("ld hl, sp%s%s", "+"),
	0xf9: implied("ld sp, hl"),
	0xfa: absolute("ld a, [%s]", refs.Data),
	0xfb: implied("ei"),
	0xfe: immediate("cp %s"),
	0xff: implied("rst $38"),
}

func init() {
	for op := 0x40; op < 0x80; op++ {
		primary[op] = implied(fmt.Sprintf("ld %s, %s", registers[op>>3&7], registers[op&7]))
	}

	arithmetic := [8]string{"add", "adc", "sub", "sbc", "and", "xor", "or", "cp"}
	for op := 0x80; op < 0xc0; op++ {
		primary[op] = implied(arithmetic[op>>3&7] + " " + registers[op&7])
	}

	for op, entry := range irregular {
		primary[op] = entry
	}
	for op := range primary {
		if primary[op].decode == nil {
			primary[op] = illegal(byte(op))
		}
	}

	rotations := [8]string{"rlc", "rrc", "rl", "rr", "sla", "sra", "swap", "srl"}
	bitOperations := [3]string{"bit", "res", "set"}
	for op := range secondary {
		register := registers[op&7]
		if op < 0x40 {
			secondary[op] = rotations[op>>3] + " " + register
			continue
		}
		secondary[op] = fmt.Sprintf("%s %d, %s", bitOperations[op>>6-1], op>>3&7, register)
	}
}
