package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/mapper"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

//nolint:funlen // test functions can be long
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	rom := createTempFile(t, dir, "game.gb", make([]byte, 2*address.BankSize))

	t.Run("load rom only", func(t *testing.T) {
		input, err := New(log.NewTestLogger(t)).Load(options.Program{ROM: rom})
		assert.NoError(t, err)
		assert.Equal(t, 2, input.ROM.Banks())
		assert.Len(t, input.Symbols, 0)
		assert.Nil(t, input.Charmap)
	})

	t.Run("load auxiliary files", func(t *testing.T) {
		opts := options.Program{
			ROM:     rom,
			Sym:     createTempFile(t, dir, "game.sym", []byte("00:0150 Start\n01:4000 Bank1 ; comment\n")),
			Shim:    createTempFile(t, dir, "shim.sym", []byte("00:c000 wBuffer\n")),
			Charmap: createTempFile(t, dir, "charmap.asm", []byte("charmap \"A\", $80\n")),
		}

		input, err := New(log.NewTestLogger(t)).Load(opts)
		assert.NoError(t, err)
		assert.Len(t, input.Symbols, 2)
		assert.Equal(t, 0x4000, input.Symbols[1].Address.Offset)
		assert.Len(t, input.Shim, 1)
		assert.Equal(t, address.RAM, input.Shim[0].Address.Space)
		assert.Equal(t, "A", input.Charmap.ByteToChar[0x80])
	})

	t.Run("error on non-existent file", func(t *testing.T) {
		_, err := New(log.NewTestLogger(t)).Load(options.Program{ROM: "/nonexistent/file.gb"})
		assert.ErrorContains(t, err, "opening file")
	})

	t.Run("error on invalid rom size", func(t *testing.T) {
		invalid := createTempFile(t, dir, "invalid.gb", make([]byte, 0x100))
		_, err := New(log.NewTestLogger(t)).Load(options.Program{ROM: invalid})
		assert.True(t, errors.Is(err, mapper.ErrInvalidSize))
	})

	t.Run("error on non-existent symbol file", func(t *testing.T) {
		_, err := New(log.NewTestLogger(t)).Load(options.Program{ROM: rom, Sym: "/nonexistent/game.sym"})
		assert.ErrorContains(t, err, "opening file /nonexistent/game.sym")
	})
}

func createTempFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
