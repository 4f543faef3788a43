package writer

import (
	"bytes"
	"testing"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/gbdisasm/internal/symbols"
	"github.com/retroenv/retrogolib/assert"
)

func testProgram() *program.Program {
	app := program.New(2)
	app.Constants = map[string]int{"rLCDC": 0xff40, "rIE": 0xffff}
	app.Sections = []*program.Section{
		{
			Name:    "Data3ff0",
			Address: 0x3ff0,
			Lines: []program.Line{
				{
					Labels:       []string{"Data3ff0", "Alias"},
					LabelComment: "00:3ff0",
					Offset:       0x3ff0,
					Data:         []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
				},
			},
		},
		{
			Name:    "Function4000",
			Bank:    1,
			Address: 0x4000,
			Lines: []program.Line{
				{
					Labels:       []string{"Function4000"},
					LabelComment: "01:4000",
					Code:         "ldh [rLCDC], a",
					Offset:       0x4000,
					OpcodeBytes:  []byte{0xe0, 0x40},
				},
				{
					Labels:      []string{".sub_4002"},
					Code:        "ret",
					Offset:      0x4002,
					OpcodeBytes: []byte{0xc9},
				},
			},
		},
	}
	return app
}

func TestWrite(t *testing.T) {
	expected := `DEF rIE EQU $ffff
DEF rLCDC EQU $ff40

SECTION "Data3ff0", ROM0[$3ff0]

Data3ff0:                        ; 00:3ff0
Alias:
	db $00, $01, $02, $03, $04, $05, $06, $07
	db $08, $09

SECTION "Function4000", ROMX[$4000], BANK[$01]

Function4000:                    ; 01:4000
	ldh [rLCDC], a

.sub_4002:
	ret
`

	buf := &bytes.Buffer{}
	assert.NoError(t, New(testProgram(), buf, Options{}).Write())
	assert.Equal(t, expected, buf.String())
}

func TestWriteComments(t *testing.T) {
	expected := `SECTION "Data3ff0", ROM0[$3ff0]

Data3ff0:                        ; 00:3ff0
Alias:
	db $00, $01, $02, $03, $04, $05, $06, $07 ; 00:3ff0 00 01 02 03 04 05 06 07
	db $08, $09                     ; 00:3ff8 08 09

SECTION "Function4000", ROMX[$4000], BANK[$01]

Function4000:                    ; 01:4000
	ldh [rLCDC], a                  ; 01:4000 e0 40

.sub_4002:
	ret                             ; 01:4002 c9
`

	app := testProgram()
	app.Constants = nil

	buf := &bytes.Buffer{}
	assert.NoError(t, New(app, buf, Options{HexComments: true, OffsetComments: true}).Write())
	assert.Equal(t, expected, buf.String())
}

func TestWriteLabelOnly(t *testing.T) {
	expected := `SECTION "Function3ff0", ROM0[$3ff0]

Function3ff0:                    ; 00:3ff0
	jr nz, .sub_3ffe

.sub_3ffe:
`

	app := program.New(2)
	app.Sections = []*program.Section{
		{
			Name:    "Function3ff0",
			Address: 0x3ff0,
			Lines: []program.Line{
				{
					Labels:       []string{"Function3ff0"},
					LabelComment: "00:3ff0",
					Code:         "jr nz, .sub_3ffe",
					Offset:       0x3ff0,
					OpcodeBytes:  []byte{0x20, 0x0c},
				},
				{Labels: []string{".sub_3ffe"}, Offset: 0x3ffe},
			},
		},
	}

	buf := &bytes.Buffer{}
	assert.NoError(t, New(app, buf, Options{}).Write())
	assert.Equal(t, expected, buf.String())
}

func TestWriteSymbols(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteSymbols(buf, []symbols.Symbol{
		{Address: address.InROM(0x150), Name: "Start"},
		{Address: address.InROM(0x4010), Name: "Table4010"},
		{Address: address.InRAM(0xc000), Name: "wc000"},
	})
	assert.NoError(t, err)
	assert.Equal(t, "00:0150 Start\n01:4010 Table4010\n00:c000 wc000\n", buf.String())
}
