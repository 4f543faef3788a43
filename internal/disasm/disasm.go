// Package disasm implements the Game Boy disassembler. It seeds the worklists
// from the configuration, runs the table, text, data and routine passes and
// converts the decoded content into a program.
package disasm

import (
	"context"
	"fmt"
	"slices"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/analysis"
	"github.com/retroenv/gbdisasm/internal/consts"
	"github.com/retroenv/gbdisasm/internal/mapper"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/gbdisasm/internal/refs"
	"github.com/retroenv/gbdisasm/internal/routine"
	"github.com/retroenv/gbdisasm/internal/scanner"
	"github.com/retroenv/gbdisasm/internal/symbols"
	"github.com/retroenv/gbdisasm/internal/vars"
	"github.com/retroenv/gbdisasm/internal/worklist"
	"github.com/retroenv/retrogolib/log"
)

// Disasm implements a disassembler.
type Disasm struct {
	logger  *log.Logger
	options options.Disassembler
	ctx     *analysis.Context

	engine *routine.Engine
	data   *scanner.Scanner[byte]
	texts  *scanner.Scanner[string]
	tables *scanner.Scanner[scanner.Pointer]

	constants *consts.Consts
	vars      *vars.Vars

	// names that were cached in the shim but got superseded by the symbol file
	shimOnlyROM map[int][]string
	shimOnlyRAM map[int][]string

	labels []int // sorted offsets that get a label in the output
}

// New creates a new disassembler for the ROM. The charmap is optional.
func New(logger *log.Logger, rom *mapper.Mapper, opts options.Disassembler, charmap *symbols.Charmap) *Disasm {
	ctx := analysis.New(logger, rom, opts)
	if bank := opts.HomeReferenceBank; bank != nil && (*bank < 0 || *bank >= rom.Banks()) {
		logger.Warn("Ignoring invalid home reference bank", log.Int("bank", *bank), log.Int("banks", rom.Banks()))
		ctx.HomeBank = rom.DefaultHomeBank()
	}

	dis := &Disasm{
		logger:      logger,
		options:     opts,
		ctx:         ctx,
		engine:      routine.New(ctx),
		data:        scanner.New[byte](ctx, scanner.DataStrategy{}),
		texts:       scanner.New[string](ctx, scanner.TextStrategy{}),
		tables:      scanner.New[scanner.Pointer](ctx, scanner.TableStrategy{}),
		shimOnlyROM: map[int][]string{},
		shimOnlyRAM: map[int][]string{},
	}

	if charmap != nil {
		dis.importCharmap(charmap)
	}

	if opts.HardwareNames {
		dis.constants = consts.New()
	}
	dis.vars = vars.New(ctx.RAMRefs, dis.constants, ctx.IsNumber, vars.Options{
		OffsetNaming:       opts.RAMOffsetNaming,
		PersistOffsetNames: opts.PersistOffsetNames,
	})

	return dis
}

func (dis *Disasm) importCharmap(charmap *symbols.Charmap) {
	for b, chars := range charmap.ByteToChar {
		dis.ctx.Charmap[b] = chars
	}

	for _, terminator := range dis.options.EOS {
		if terminator.Char != "" {
			b, ok := charmap.CharToByte[terminator.Char]
			if !ok {
				dis.logger.Warn("Ignoring unmapped text terminator", log.String("char", terminator.Char))
				continue
			}
			dis.ctx.EOS.Add(b)
			continue
		}

		b := byte(terminator.Value)
		if _, ok := charmap.ByteToChar[b]; !ok {
			dis.logger.Warn("Ignoring unmapped text terminator", log.Hex("value", b))
			continue
		}
		dis.ctx.EOS.Add(b)
	}
}

// ImportSymbols binds the names of a symbol file. Names of the shim file are
// imported as data, names of the symbol file as routine entries. Names that
// were cached in the shim for an address that the symbol file names differently
// are only kept for the next shim.
func (dis *Disasm) ImportSymbols(syms []symbols.Symbol, rank refs.Rank) {
	for _, sym := range syms {
		m, shimOnly := dis.ctx.ROMRefs, dis.shimOnlyROM
		if sym.Address.Space == address.RAM {
			m, shimOnly = dis.ctx.RAMRefs, dis.shimOnlyRAM
		}

		addr := sym.Address.Offset
		names := m.Links(addr)
		if slices.Contains(names, sym.Name) {
			continue
		}
		if len(names) > 0 && m.Get(addr).Rank != rank {
			shimOnly[addr] = append(shimOnly[addr], m.Unlink(addr)...)
		}

		m.Link(sym.Name, addr)
		m.Set(addr, rank)
	}
}

// Process runs all passes and returns the disassembled program.
func (dis *Disasm) Process(ctx context.Context) (*program.Program, error) {
	dis.seed(dis.options.Tables, dis.ctx.Tables, "table")
	dis.seed(dis.options.Texts, dis.ctx.Texts, "text")
	dis.seed(dis.options.Data, dis.ctx.Data, "data")
	dis.seed(dis.options.Routines, dis.ctx.Routines, "routine")

	for _, queue := range []*worklist.Queue{dis.ctx.Tables, dis.ctx.Texts, dis.ctx.Data, dis.ctx.Routines} {
		queue.Seal()
	}
	dis.ctx.ROMRefs.BeginTracking()
	dis.ctx.RAMRefs.BeginTracking()

	maxGeneration := dis.options.MaxGeneration
	passes := []func(){
		func() { dis.tables.Process(dis.ctx.Tables, maxGeneration) },
		func() { dis.texts.Process(dis.ctx.Texts, maxGeneration) },
		func() { dis.data.Process(dis.ctx.Data, maxGeneration) },
	}
	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		pass()
	}

	if err := dis.engine.Process(ctx, dis.ctx.Routines, maxGeneration); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the engine
	}

	dis.data.SplitReferenced()
	dis.texts.SplitReferenced()
	dis.tables.SplitReferenced()

	if remaining := dis.ctx.Routines.Remaining(); len(remaining) > 0 {
		dis.logger.Info("Routines left unparsed due to generation limit",
			log.Int("count", len(remaining)), log.Int("max_generation", maxGeneration))
	}

	return dis.convertToProgram(), nil
}

// seed resolves the configured entry locations of one kind and queues them.
func (dis *Disasm) seed(locations []options.Location, queue *worklist.Queue, kind string) {
	for _, location := range locations {
		offset, err := location.Resolve(dis.ctx.ROMRefs.Lookup)
		if err == nil && (offset < 0 || offset >= dis.ctx.ROM.Len()) {
			err = fmt.Errorf("offset %04x is outside of the ROM", offset)
		}
		if err != nil {
			dis.logger.Warn("Ignoring invalid entry location",
				log.String("kind", kind), log.Stringer("location", location), log.Err(err))
			continue
		}

		dis.ctx.ROMRefs.Set(offset, refs.Data)
		dis.ctx.Declared.Add(offset)
		queue.Add(offset)
	}
}
