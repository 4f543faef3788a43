package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"gbdisasm"}, args...)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		program options.Program
		gen     int
		hex     bool
		offsets bool
	}{
		{
			name:    "positional rom",
			args:    []string{"game.gb"},
			program: options.Program{ROM: "game.gb", OutputDir: options.DefaultOutputDir},
		},
		{
			name:    "rom flag",
			args:    []string{"-rom", "game.gb", "-o", "out", "-overwrite"},
			program: options.Program{ROM: "game.gb", OutputDir: "out", Overwrite: true},
		},
		{
			name:    "disasm flags",
			args:    []string{"-gen", "2", "-hexcomments", "-offsets", "-sym", "game.sym", "game.gb"},
			program: options.Program{ROM: "game.gb", Sym: "game.sym", OutputDir: options.DefaultOutputDir},
			gen:     2,
			hex:     true,
			offsets: true,
		},
		{
			name:    "logging flags",
			args:    []string{"-debug", "-q", "game.gb"},
			program: options.Program{ROM: "game.gb", OutputDir: options.DefaultOutputDir, Debug: true, Quiet: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)

			opts, disasmOpts, err := ParseFlags()
			assert.NoError(t, err)
			assert.Equal(t, tt.program, opts)
			assert.Equal(t, tt.gen, disasmOpts.MaxGeneration)
			assert.Equal(t, tt.hex, disasmOpts.HexComments)
			assert.Equal(t, tt.offsets, disasmOpts.OffsetComments)
		})
	}
}

func TestParseFlagsUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no rom", args: nil},
		{name: "flag after file", args: []string{"game.gb", "-q"}},
		{name: "two files", args: []string{"a.gb", "b.gb"}},
		{name: "empty file", args: []string{""}},
		{name: "empty second argument", args: []string{"a.gb", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)

			_, _, err := ParseFlags()
			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
		})
	}
}

func TestParseFlagsConfigOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	data := []byte("rom: game.gb\nmaxGeneration: 4\nroutines: [0x150]\noutputDir: build\n")
	assert.NoError(t, os.WriteFile(path, data, 0o600))

	setArgs(t, "-c", path, "-gen", "1")

	opts, disasmOpts, err := ParseFlags()
	assert.NoError(t, err)
	assert.Equal(t, path, opts.Config)
	assert.Equal(t, filepath.Join(dir, "game.gb"), opts.ROM)
	assert.Equal(t, filepath.Join(dir, "build"), opts.OutputDir)
	assert.Equal(t, 1, disasmOpts.MaxGeneration)
	assert.Equal(t, options.Locations{{Kind: options.GlobalLocation, Address: 0x150}}, disasmOpts.Routines)
}

func TestParseFlagsMissingConfig(t *testing.T) {
	setArgs(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"))

	_, _, err := ParseFlags()
	assert.ErrorContains(t, err, "loading config")
}
