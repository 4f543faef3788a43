package disasm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/gbdisasm/internal/refs"
	"github.com/retroenv/gbdisasm/internal/routine"
	"github.com/retroenv/gbdisasm/internal/scanner"
	"github.com/retroenv/gbdisasm/internal/symbols"
	"github.com/retroenv/retrogolib/log"
)

// convertToProgram walks the content in address order and converts it to
// the output program.
func (dis *Disasm) convertToProgram() *program.Program {
	app := program.New(dis.ctx.ROM.Banks())
	blocks := dis.ctx.Content.Blocks()
	dis.collectLabels(blocks)

	var section *program.Section
	var routines, end int
	for _, block := range blocks {
		start := block.Start()
		delete(dis.shimOnlyROM, start)

		bank := address.InROM(start).Bank()
		if section == nil || bank != section.Bank || start != end {
			section = &program.Section{
				Name:    dis.romName(start),
				Bank:    bank,
				Address: address.InROM(start).Window(),
			}
			app.Sections = append(app.Sections, section)
		}

		switch b := block.(type) {
		case *routine.Chain:
			routines++
			section.Lines = append(section.Lines, dis.chainLines(b)...)
		case *scanner.Block[byte]:
			section.Lines = append(section.Lines, dis.dataLines(b))
		case *scanner.Block[string]:
			section.Lines = append(section.Lines, dis.textLines(b))
		case *scanner.Block[scanner.Pointer]:
			section.Lines = append(section.Lines, dis.tableLines(b)...)
		default:
			panic(fmt.Sprintf("unsupported block type %T", block))
		}
		end = block.End()
	}

	if dis.constants != nil {
		dis.constants.SetToProgram(app)
	}

	app.Shim = dis.shimSymbols(func(address.Address) bool { return true })
	app.NewSymbols = dis.shimSymbols(func(addr address.Address) bool {
		if addr.Space == address.RAM {
			return dis.ctx.RAMRefs.IsNew(addr.Offset)
		}
		return dis.ctx.ROMRefs.IsNew(addr.Offset)
	})

	dis.logger.Info("Disassembly finished",
		log.Int("banks", app.Banks),
		log.Int("blocks", len(blocks)),
		log.Int("routines", routines),
		log.Int("sections", len(app.Sections)))
	return app
}

// headLabels returns all names of a block start, the canonical name first.
func (dis *Disasm) headLabels(offset int) ([]string, string) {
	dis.romName(offset)
	labels := slices.DeleteFunc(slices.Clone(dis.ctx.ROMRefs.Links(offset)), refs.IsDerived)
	return labels, address.InROM(offset).String()
}

func (dis *Disasm) chainLines(chain *routine.Chain) []program.Line {
	var lines []program.Line

	for i, node := range chain.Nodes() {
		if len(node.Lines) == 0 {
			// nodes without instructions keep their label
			if _, ok := dis.ctx.Content.Has(node.Start()); !ok {
				lines = append(lines, program.Line{
					Labels: []string{dis.romName(node.Start())},
					Offset: node.Start(),
				})
			}
			continue
		}

		for j, line := range node.Lines {
			pl := program.Line{
				Offset:      line.Offset,
				OpcodeBytes: dis.ctx.ROM.Bytes(line.Offset, line.Offset+line.Size),
			}
			switch {
			case j > 0:
			case i == 0:
				pl.Labels, pl.LabelComment = dis.headLabels(line.Offset)
			default:
				pl.Labels = []string{dis.romName(line.Offset)}
			}

			name := ""
			if ref := line.Result.Ref; ref != nil {
				name = dis.operandName(ref.Target)
			}
			pl.Code = line.Result.Render(name)
			lines = append(lines, pl)
		}
	}
	return lines
}

func (dis *Disasm) dataLines(block *scanner.Block[byte]) program.Line {
	line := program.Line{
		Offset: block.Start(),
		Data:   block.Units,
	}
	line.Labels, line.LabelComment = dis.headLabels(block.Start())
	return line
}

func (dis *Disasm) textLines(block *scanner.Block[string]) program.Line {
	line := program.Line{
		Code:        fmt.Sprintf(`db "%s"`, strings.Join(block.Units, "")),
		Offset:      block.Start(),
		OpcodeBytes: dis.ctx.ROM.Bytes(block.Start(), block.End()),
	}
	line.Labels, line.LabelComment = dis.headLabels(block.Start())
	return line
}

func (dis *Disasm) tableLines(block *scanner.Block[scanner.Pointer]) []program.Line {
	lines := make([]program.Line, 0, len(block.Units))

	for i, ptr := range block.Units {
		offset := block.Start() + i*block.UnitSize()
		line := program.Line{
			Offset:      offset,
			OpcodeBytes: dis.ctx.ROM.Bytes(offset, offset+block.UnitSize()),
		}
		if i == 0 {
			line.Labels, line.LabelComment = dis.headLabels(offset)
		}

		if ptr.Resolved {
			line.Code = "dw " + dis.operandName(ptr.Target)
		} else {
			line.Code = "dw " + address.Hex(int(ptr.Value), 4)
		}
		lines = append(lines, line)
	}
	return lines
}

// shimSymbols returns the names to cache for the next run, ROM before RAM in
// ascending address order.
func (dis *Disasm) shimSymbols(include func(address.Address) bool) []symbols.Symbol {
	var syms []symbols.Symbol

	for _, offset := range sortedAddresses(dis.ctx.ROMRefs, dis.shimOnlyROM) {
		addr := address.InROM(offset)
		if !include(addr) {
			continue
		}
		class := dis.ctx.ROMRefs.Get(offset)
		if romCached(class, dis.ctx.IsNumber(offset)) {
			dis.romName(offset)
			syms = appendSymbols(syms, addr, dis.ctx.ROMRefs.Links(offset))
		}
		syms = appendSymbols(syms, addr, dis.shimOnlyROM[offset])
	}

	for _, offset := range sortedAddresses(dis.ctx.RAMRefs, dis.shimOnlyRAM) {
		addr := address.InRAM(offset)
		if !include(addr) {
			continue
		}
		class := dis.ctx.RAMRefs.Get(offset)
		if ramCached(class, dis.ctx.IsNumber(offset)) {
			dis.ramName(offset)
			syms = appendSymbols(syms, addr, dis.ctx.RAMRefs.Links(offset))
		}
		syms = appendSymbols(syms, addr, dis.shimOnlyRAM[offset])
	}

	return syms
}

func romCached(class refs.Class, isNumber bool) bool {
	switch class.Rank {
	case refs.Data, refs.Exec:
		return true
	case refs.Maybe:
		return !class.Faulty && !isNumber
	default:
		return false
	}
}

func ramCached(class refs.Class, isNumber bool) bool {
	if class.Faulty {
		return false
	}
	return romCached(class, isNumber)
}

func appendSymbols(syms []symbols.Symbol, addr address.Address, names []string) []symbols.Symbol {
	for _, name := range names {
		syms = append(syms, symbols.Symbol{Address: addr, Name: name})
	}
	return syms
}

// sortedAddresses returns all classified addresses of the map and the
// addresses with shim only names in ascending order.
func sortedAddresses(m *refs.Map, shimOnly map[int][]string) []int {
	addresses := make([]int, 0, m.Len()+len(shimOnly))
	m.Each(func(addr int, _ refs.Class) {
		addresses = append(addresses, addr)
	})
	for addr := range shimOnly {
		addresses = append(addresses, addr)
	}
	slices.Sort(addresses)
	return slices.Compact(addresses)
}
