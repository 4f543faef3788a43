// Package analysis contains the state that is shared by all decoding components
// of a disassembly run.
package analysis

import (
	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/content"
	"github.com/retroenv/gbdisasm/internal/mapper"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/gbdisasm/internal/refs"
	"github.com/retroenv/gbdisasm/internal/worklist"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Context is the shared state of a disassembly run. Exactly one component
// mutates it at any time.
type Context struct {
	Logger  *log.Logger
	ROM     *mapper.Mapper
	Options options.Disassembler

	HomeBank       int // bank assumed to be mapped while executing the fixed bank
	MaxDataPointer int

	ROMRefs *refs.Map
	RAMRefs *refs.Map
	Content *content.Index

	Routines *worklist.Queue
	Texts    *worklist.Queue
	Tables   *worklist.Queue
	Data     *worklist.Queue

	Declared set.Set[int]    // entry locations given by the configuration
	Charmap  map[byte]string // characters used for decoding text
	EOS      set.Set[byte]   // bytes that terminate a text
}

// New returns a new analysis context for the ROM.
func New(logger *log.Logger, rom *mapper.Mapper, opts options.Disassembler) *Context {
	ctx := &Context{
		Logger:   logger,
		ROM:      rom,
		Options:  opts,
		HomeBank: rom.DefaultHomeBank(),

		MaxDataPointer: rom.Len(),

		ROMRefs: refs.New(),
		RAMRefs: refs.New(),
		Content: content.NewIndex(),

		Routines: worklist.New(),
		Texts:    worklist.New(),
		Tables:   worklist.New(),
		Data:     worklist.New(),

		Declared: set.New[int](),
		Charmap:  map[byte]string{},
		EOS:      set.New[byte](),
	}

	if opts.HomeReferenceBank != nil {
		ctx.HomeBank = *opts.HomeReferenceBank
	}
	if opts.MaxDataPointer != nil {
		ctx.MaxDataPointer = *opts.MaxDataPointer
	}
	return ctx
}

// BankStart returns the global offset of the bank that is mapped into the
// switchable window while executing at offset.
func (c *Context) BankStart(offset int) int {
	bank := offset / address.BankSize
	if bank == 0 {
		bank = c.HomeBank
	}
	return bank * address.BankSize
}

// IsNumber returns whether an ambiguous immediate at the address is treated
// as a plain number instead of a pointer.
func (c *Context) IsNumber(addr int) bool {
	return !c.Options.AssumePointer || addr < c.Options.MinDataPointer || addr > c.MaxDataPointer
}

// Warn logs a scan anomaly at a ROM offset.
func (c *Context) Warn(msg string, offset int, fields ...log.Field) {
	fields = append([]log.Field{log.String("address", address.InROM(offset).String())}, fields...)
	c.Logger.Warn(msg, fields...)
}
