package opcode

import (
	"testing"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/refs"
	"github.com/retroenv/retrogolib/assert"
)

func TestTableComplete(t *testing.T) {
	illegalOpcodes := map[byte]struct{}{
		0xd3: {}, 0xdb: {}, 0xdd: {}, 0xe3: {}, 0xe4: {}, 0xeb: {}, 0xec: {}, 0xed: {}, 0xf4: {}, 0xfc: {}, 0xfd: {},
	}

	for op := range 256 {
		entry := Lookup(byte(op))
		assert.True(t, entry.decode != nil)

		result := entry.Decode(0, 0x4000, 0x150)
		_, isIllegal := illegalOpcodes[byte(op)]
		if isIllegal {
			assert.Len(t, result.Notes, 1)
			assert.Equal(t, address.Hex(op, 2), result.Text[3:])
		}
	}

	for op := range 256 {
		assert.True(t, Secondary(byte(op)) != "")
	}
}

func TestDecodeLiteral(t *testing.T) {
	tests := []struct {
		op       byte
		value    int
		expected string
	}{
		{0x00, 0, "nop"},
		{0x06, 0x0a, "ld b, $0a"},
		{0x41, 0, "ld b, c"},
		{0x76, 0, "halt"},
		{0x7e, 0, "ld a, [hl]"},
		{0x86, 0, "add [hl]"},
		{0xaf, 0, "xor a"},
		{0xbf, 0, "cp a"},
		{0xcb, 0x37, "swap a"},
		{0xcb, 0x7c, "bit 7, h"},
		{0xcb, 0x86, "res 0, [hl]"},
		{0xcb, 0xff, "set 7, a"},
		{0xcb, 0x00, "rlc b"},
		{0xe8, 0x02, "add sp, $02"},
		{0xe8, 0xfe, "add sp, -$02"},
		{0xf8, 0x05, "ld hl, sp+$05"},
		{0xf8, 0x80, "ld hl, sp-$80"},
		{0x10, 0x00, "stop"},
		{0xf2, 0, "ld a, [$ff00+c]"},
		{0xe9, 0, "jp hl"},
		{0xd3, 0, "db $d3"},
	}

	for _, tt := range tests {
		result := Lookup(tt.op).Decode(tt.value, 0, 0x150)
		assert.True(t, result.Ref == nil)
		assert.Equal(t, tt.expected, result.Text)
	}
}

//nolint:funlen // test functions can be long
func TestDecodeReferences(t *testing.T) {
	tests := []struct {
		name      string
		op        byte
		value     int
		bankStart int
		offset    int
		target    address.Address
		rank      refs.Rank
		text      string
		notes     int
	}{
		{
			name: "jp into mapped home reference bank", op: 0xc3, value: 0x4000, bankStart: 0x4000, offset: 0x150,
			target: address.InROM(0x4000), rank: refs.Exec, text: "jp Target",
		},
		{
			name: "call from bank 2", op: 0xcd, value: 0x4010, bankStart: 0x8000, offset: 0x8100,
			target: address.InROM(0x8010), rank: refs.Exec, text: "call Target",
		},
		{
			name: "ld hl maybe pointer", op: 0x21, value: 0x0200, offset: 0x150,
			target: address.InROM(0x200), rank: refs.Maybe, text: "ld hl, Target",
		},
		{
			name: "ld a from wram", op: 0xfa, value: 0xc000, offset: 0x150,
			target: address.InRAM(0xc000), rank: refs.Data, text: "ld a, [Target]",
		},
		{
			name: "ldh high ram", op: 0xe0, value: 0x40, offset: 0x150,
			target: address.InRAM(0xff40), rank: refs.Data, text: "ldh [Target], a",
		},
		{
			name: "jr backwards within bank 0", op: 0x18, value: 0xfe, offset: 0x150,
			target: address.InROM(0x150), rank: refs.Exec, text: "jr Target",
		},
		{
			name: "jr folded into home bank", op: 0x18, value: 0xfd, bankStart: 0x4000, offset: 0x4000,
			target: address.InROM(0x3fff), rank: refs.Exec, text: "jr Target", notes: 1,
		},
		{
			name: "jr forward into switchable bank", op: 0x20, value: 0x20, bankStart: 0x8000, offset: 0x3ff0,
			target: address.InROM(0x8012), rank: refs.Exec, text: "jr nz, Target", notes: 1,
		},
		{
			name: "jr forward into ram", op: 0x18, value: 0x20, bankStart: 0x8000, offset: 0xbff0,
			target: address.InRAM(0x8012), rank: refs.Exec, text: "jr Target", notes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Lookup(tt.op).Decode(tt.value, tt.bankStart, tt.offset)
			assert.True(t, result.Ref != nil)
			assert.Equal(t, tt.target, result.Ref.Target)
			assert.Equal(t, tt.rank, result.Ref.Rank)
			assert.Equal(t, tt.text, result.Render("Target"))
			assert.Len(t, result.Notes, tt.notes)
		})
	}
}

func TestDecodeDegraded(t *testing.T) {
	tests := []struct {
		name      string
		op        byte
		value     int
		bankStart int
		offset    int
		expected  string
	}{
		{"window pointer without home bank", 0xc3, 0x4000, 0, 0x150, "jp $4000"},
		{"jr into switchable bank without home bank", 0x18, 0x20, 0, 0x3ff0, "jr $4012"},
		{"jr below start of memory", 0x18, 0xfc, 0, 0x0000, "db $18, $fc"},
		{"conditional jr below start of memory", 0x20, 0xf0, 0, 0x0008, "db $20, $f0"},
		{"stop with operand", 0x10, 0x01, 0, 0x150, "db $10, $01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Lookup(tt.op).Decode(tt.value, tt.bankStart, tt.offset)
			assert.True(t, result.Ref == nil)
			assert.Equal(t, tt.expected, result.Text)
			assert.Len(t, result.Notes, 1)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, op := range []byte{0x18, 0xc3, 0xc9, 0xd9, 0xe9} {
		assert.True(t, IsTerminal(op))
	}
	for _, op := range []byte{0x20, 0xc2, 0xc0, 0xcd, 0x00} {
		assert.False(t, IsTerminal(op))
	}
}
