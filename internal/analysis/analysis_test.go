package analysis

import (
	"testing"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/mapper"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func testContext(t *testing.T, banks int, opts options.Disassembler) *Context {
	t.Helper()
	rom, err := mapper.New(make([]byte, banks*address.BankSize))
	assert.NoError(t, err)
	return New(log.NewTestLogger(t), rom, opts)
}

func TestBankStart(t *testing.T) {
	ctx := testContext(t, 2, options.NewDisassembler())
	assert.Equal(t, 1, ctx.HomeBank)
	assert.Equal(t, 0x4000, ctx.BankStart(0x150))
	assert.Equal(t, 0x4000, ctx.BankStart(0x7fff))

	home := 3
	opts := options.NewDisassembler()
	opts.HomeReferenceBank = &home
	ctx = testContext(t, 4, opts)
	assert.Equal(t, 0xc000, ctx.BankStart(0x0000))
	assert.Equal(t, 0x8000, ctx.BankStart(0x8123))

	ctx = testContext(t, 4, options.NewDisassembler())
	assert.Equal(t, 0, ctx.HomeBank)
	assert.Equal(t, 0, ctx.BankStart(0x3fff))
}

func TestIsNumber(t *testing.T) {
	maxPointer := 0x5000
	tests := []struct {
		name     string
		opts     options.Disassembler
		addr     int
		expected bool
	}{
		{name: "pointers not assumed", opts: options.Disassembler{}, addr: 0x200, expected: true},
		{name: "inside rom", opts: options.Disassembler{AssumePointer: true}, addr: 0x200, expected: false},
		{name: "rom end inclusive", opts: options.Disassembler{AssumePointer: true}, addr: 0x8000, expected: false},
		{name: "beyond rom", opts: options.Disassembler{AssumePointer: true}, addr: 0x8001, expected: true},
		{name: "below minimum", opts: options.Disassembler{AssumePointer: true, MinDataPointer: 0x150}, addr: 0x100, expected: true},
		{name: "minimum inclusive", opts: options.Disassembler{AssumePointer: true, MinDataPointer: 0x150}, addr: 0x150, expected: false},
		{
			name:     "above configured maximum",
			opts:     options.Disassembler{AssumePointer: true, MaxDataPointer: &maxPointer},
			addr:     0x5001,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t, 2, tt.opts)
			assert.Equal(t, tt.expected, ctx.IsNumber(tt.addr))
		})
	}
}
