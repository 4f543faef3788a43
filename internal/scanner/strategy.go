package scanner

import (
	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/analysis"
	"github.com/retroenv/gbdisasm/internal/content"
	"github.com/retroenv/gbdisasm/internal/refs"
	"github.com/retroenv/retrogolib/log"
)

// DataStrategy decodes raw bytes.
type DataStrategy struct{}

// Kind returns the content kind of the strategy.
func (DataStrategy) Kind() content.Kind { return content.Data }

// UnitSize returns the size of a unit in bytes.
func (DataStrategy) UnitSize() int { return 1 }

// Decode returns the byte at the offset.
func (DataStrategy) Decode(ctx *analysis.Context, offset int) (byte, bool, bool) {
	return ctx.ROM.Byte(offset), true, false
}

// TextStrategy decodes characters using the character map. A text ends
// after a terminator byte or before the first unmapped byte.
type TextStrategy struct{}

// Kind returns the content kind of the strategy.
func (TextStrategy) Kind() content.Kind { return content.Text }

// UnitSize returns the size of a unit in bytes.
func (TextStrategy) UnitSize() int { return 1 }

// Decode returns the character of the byte at the offset.
func (TextStrategy) Decode(ctx *analysis.Context, offset int) (string, bool, bool) {
	b := ctx.ROM.Byte(offset)
	char, ok := ctx.Charmap[b]
	if !ok {
		ctx.Warn("Unmapped character in text", offset, log.Hex("value", b))
		return "", false, false
	}
	return char, true, ctx.EOS.Contains(b)
}

// Pointer is a decoded entry of a pointer table.
type Pointer struct {
	Value    uint16
	Target   address.Address
	Resolved bool // the target is a valid address, otherwise Value is emitted as number
}

// TableStrategy decodes 16 bit pointers. Every resolved pointer target is
// classified as executable and queued for routine parsing.
type TableStrategy struct{}

// Kind returns the content kind of the strategy.
func (TableStrategy) Kind() content.Kind { return content.Table }

// UnitSize returns the size of a unit in bytes.
func (TableStrategy) UnitSize() int { return 2 }

// Decode returns the pointer at the offset.
func (TableStrategy) Decode(ctx *analysis.Context, offset int) (Pointer, bool, bool) {
	value := ctx.ROM.Word(offset)
	bankStart := ctx.BankStart(offset)
	target := address.GetAddr(bankStart, value)
	ptr := Pointer{Value: value, Target: target}

	if target.Space == address.RAM {
		ctx.RAMRefs.Set(target.Offset, refs.Exec)
		ptr.Resolved = true
		return ptr, true, false
	}

	if bankStart == 0 && target.Offset >= address.WindowStart || target.Offset >= ctx.ROM.Len() {
		ctx.Warn("Table pointer target is not resolvable", offset, log.Hex("value", value))
		return ptr, true, false
	}

	ctx.ROMRefs.Set(target.Offset, refs.Exec)
	ctx.Routines.Add(target.Offset)
	ptr.Resolved = true
	return ptr, true, false
}
