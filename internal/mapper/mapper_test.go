package mapper

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
		banks   int
		home    int
	}{
		{name: "empty", size: 0, wantErr: true},
		{name: "not bank aligned", size: 0x4001, wantErr: true},
		{name: "single bank", size: 0x4000, banks: 1, home: 0},
		{name: "two banks", size: 0x8000, banks: 2, home: 1},
		{name: "four banks", size: 0x10000, banks: 4, home: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(make([]byte, tt.size))
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidSize))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.size, m.Len())
			assert.Equal(t, tt.banks, m.Banks())
			assert.Equal(t, tt.home, m.DefaultHomeBank())
		})
	}
}

func TestRead(t *testing.T) {
	data := make([]byte, 0x4000)
	data[0x150] = 0xc3
	data[0x151] = 0x00
	data[0x152] = 0x40

	m, err := New(data)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xc3), m.Byte(0x150))
	assert.Equal(t, uint16(0x4000), m.Word(0x151))
	assert.Equal(t, []byte{0xc3, 0x00, 0x40}, m.Bytes(0x150, 0x153))
}

func TestCrossesBank(t *testing.T) {
	assert.False(t, CrossesBank(0x3fff, 1))
	assert.True(t, CrossesBank(0x3fff, 2))
	assert.False(t, CrossesBank(0x7ffe, 2))
	assert.True(t, CrossesBank(0x7ffe, 3))
}
