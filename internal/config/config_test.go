package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

const testConfig = `
rom: game.gb
sym: game.sym
outputDir: /tmp/out
routines:
  - [1, 0x4000]
  - 0x150
  - "00:0200"
  - Start
texts: [0x3000]
eos: 0
homeReferenceBank: 2
assumePointer: true
minDataPointer: 0x100
maxDataPointer: 0x7fff
maxGeneration: 3
ramOffsetNaming: true
hardwareNames: true
`

//nolint:funlen // test functions can be long
func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(testConfig))
	assert.NoError(t, err)

	assert.Equal(t, "game.gb", cfg.ROM)
	assert.Equal(t, options.Locations{
		{Kind: options.BankLocation, Bank: 1, Address: 0x4000},
		{Kind: options.GlobalLocation, Address: 0x150},
		{Kind: options.GlobalLocation, Address: 0x200},
		{Kind: options.NamedLocation, Name: "Start"},
	}, cfg.Routines)
	assert.Equal(t, options.Terminators{{Value: 0}}, cfg.EOS)
	assert.Equal(t, 2, *cfg.HomeReferenceBank)
	assert.Equal(t, 0x7fff, *cfg.MaxDataPointer)

	opts := options.Program{OutputDir: options.DefaultOutputDir}
	disasmOpts := options.NewDisassembler()
	cfg.Apply(&opts, &disasmOpts)

	assert.Equal(t, "game.gb", opts.ROM)
	assert.Equal(t, "game.sym", opts.Sym)
	assert.Equal(t, "/tmp/out", opts.OutputDir)
	assert.Len(t, disasmOpts.Routines, 4)
	assert.Len(t, disasmOpts.Texts, 1)
	assert.True(t, disasmOpts.AssumePointer)
	assert.Equal(t, 0x100, disasmOpts.MinDataPointer)
	assert.Equal(t, 3, disasmOpts.MaxGeneration)
	assert.True(t, disasmOpts.RAMOffsetNaming)
	assert.False(t, disasmOpts.PersistOffsetNames)
	assert.True(t, disasmOpts.HardwareNames)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "unknown key", input: "romfile: x.gb", errMsg: "romfile"},
		{name: "ram location", input: "routines: [\"00:c000\"]", errMsg: "not a ROM address"},
		{name: "incomplete pair", input: "routines: [[1]]", errMsg: "expected [bank, address]"},
		{name: "terminator range", input: "eos: [256]", errMsg: "not a byte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestParseEntryForms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected options.Locations
	}{
		{
			name:     "single pair",
			input:    "routines: [1, 0x4000]",
			expected: options.Locations{{Kind: options.BankLocation, Bank: 1, Address: 0x4000}},
		},
		{
			name:     "single fixed bank pair",
			input:    "routines: [0, 0x150]",
			expected: options.Locations{{Kind: options.BankLocation, Address: 0x150}},
		},
		{
			name:     "single offset",
			input:    "routines: 0x150",
			expected: options.Locations{{Kind: options.GlobalLocation, Address: 0x150}},
		},
		{
			name:     "single name",
			input:    "routines: Start",
			expected: options.Locations{{Kind: options.NamedLocation, Name: "Start"}},
		},
		{
			name:  "two offsets",
			input: "routines: [0x150, 0x200]",
			expected: options.Locations{
				{Kind: options.GlobalLocation, Address: 0x150},
				{Kind: options.GlobalLocation, Address: 0x200},
			},
		},
		{
			name:  "offset and name",
			input: "routines: [1, Start]",
			expected: options.Locations{
				{Kind: options.GlobalLocation, Address: 1},
				{Kind: options.NamedLocation, Name: "Start"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(strings.NewReader(tt.input))
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Routines)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Equal(t, "", cfg.ROM)
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("rom: game.gb\nshim: /abs/shim.sym\n"), 0o600))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "game.gb"), cfg.ROM)
	assert.Equal(t, "/abs/shim.sym", cfg.Shim)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "opening file")
}
