// Package writer implements the RGBDS assembly and symbol file writing.
package writer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/gbdisasm/internal/symbols"
)

const dataBytesPerLine = 8

type lineWriterFunc func(line string, byteCount int) error

// Writer writes a program as RGBDS compatible assembly.
type Writer struct {
	app     *program.Program
	options Options
	writer  io.Writer
}

// Options of the writer.
type Options struct {
	HexComments    bool // append the opcode bytes as comment
	OffsetComments bool // append the bank address as comment
}

// New creates a new writer.
func New(app *program.Program, writer io.Writer, options Options) *Writer {
	return &Writer{
		app:     app,
		options: options,
		writer:  writer,
	}
}

// Write writes the constants and all sections of the program.
func (w Writer) Write() error {
	if err := w.OutputAliasMap(w.app.Constants); err != nil {
		return err
	}

	for i, section := range w.app.Sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w.writer); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
		}
		if err := w.writeSection(section); err != nil {
			return fmt.Errorf("writing section '%s': %w", section.Name, err)
		}
	}
	return nil
}

// OutputAliasMap outputs the hardware register constants.
func (w Writer) OutputAliasMap(aliases map[string]int) error {
	if len(aliases) == 0 {
		return nil
	}

	// sort the aliases by name before outputting to avoid random map order
	names := make([]string, 0, len(aliases))
	for constant := range aliases {
		names = append(names, constant)
	}
	slices.Sort(names)

	for _, constant := range names {
		if _, err := fmt.Fprintf(w.writer, "DEF %s EQU %s\n", constant, address.Hex(aliases[constant], 4)); err != nil {
			return fmt.Errorf("writing alias: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

func (w Writer) writeSection(section *program.Section) error {
	var err error
	if section.Bank == 0 {
		_, err = fmt.Fprintf(w.writer, "SECTION \"%s\", ROM0[%s]\n", section.Name, address.Hex(section.Address, 4))
	} else {
		_, err = fmt.Fprintf(w.writer, "SECTION \"%s\", ROMX[%s], BANK[%s]\n",
			section.Name, address.Hex(section.Address, 4), address.Hex(section.Bank, 2))
	}
	if err != nil {
		return fmt.Errorf("writing section header: %w", err)
	}

	for _, line := range section.Lines {
		if err := w.writeLabels(line); err != nil {
			return err
		}

		if len(line.Data) > 0 {
			if err := w.bundleLineData(line); err != nil {
				return err
			}
			continue
		}
		if line.Code == "" {
			continue
		}
		if err := w.writeCodeLine(line.Code, w.comment(line.Offset, line.OpcodeBytes)); err != nil {
			return fmt.Errorf("writing code line: %w", err)
		}
	}
	return nil
}

// BundleDataWrites bundles writes of data bytes to print dataBytesPerLine bytes per line.
func (w Writer) BundleDataWrites(data []byte, lineWriter lineWriterFunc) error {
	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, dataBytesPerLine)

		buf := &strings.Builder{}
		buf.WriteString("db ")
		for j := range toWrite {
			if _, err := fmt.Fprintf(buf, "$%02x, ", data[i+j]); err != nil {
				return fmt.Errorf("writing data byte: %w", err)
			}
		}

		line := strings.TrimRight(buf.String(), ", ")

		if lineWriter != nil {
			if err := lineWriter(line, toWrite); err != nil {
				return fmt.Errorf("writing data line using custom writer: %w", err)
			}
		} else {
			if _, err := fmt.Fprintf(w.writer, "\t%s\n", line); err != nil {
				return fmt.Errorf("writing data line: %w", err)
			}
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

func (w Writer) bundleLineData(line program.Line) error {
	offset := line.Offset
	lineWriter := func(code string, byteCount int) error {
		comment := w.comment(offset, line.Data[offset-line.Offset:offset-line.Offset+byteCount])
		offset += byteCount
		return w.writeCodeLine(code, comment)
	}

	if err := w.BundleDataWrites(line.Data, lineWriter); err != nil {
		return fmt.Errorf("writing data: %w", err)
	}
	return nil
}

func (w Writer) writeLabels(line program.Line) error {
	if len(line.Labels) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}

	for i, label := range line.Labels {
		var err error
		if i > 0 || line.LabelComment == "" {
			_, err = fmt.Fprintf(w.writer, "%s:\n", label)
		} else {
			_, err = fmt.Fprintf(w.writer, "%-32s ; %s\n", label+":", line.LabelComment)
		}
		if err != nil {
			return fmt.Errorf("writing label: %w", err)
		}
	}
	return nil
}

func (w Writer) writeCodeLine(code, comment string) error {
	var err error
	if comment == "" {
		_, err = fmt.Fprintf(w.writer, "\t%s\n", code)
	} else {
		_, err = fmt.Fprintf(w.writer, "\t%-31s ; %s\n", code, comment)
	}
	if err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// comment returns the optional line comment with the address and bytes of a line.
func (w Writer) comment(offset int, data []byte) string {
	var parts []string
	if w.options.OffsetComments {
		parts = append(parts, address.InROM(offset).String())
	}
	if w.options.HexComments && len(data) > 0 {
		parts = append(parts, fmt.Sprintf("% x", data))
	}
	return strings.Join(parts, " ")
}

// WriteSymbols writes symbols in the "BB:AAAA name" format of symbol files.
func WriteSymbols(writer io.Writer, syms []symbols.Symbol) error {
	for _, sym := range syms {
		if _, err := fmt.Fprintln(writer, sym.String()); err != nil {
			return fmt.Errorf("writing symbol: %w", err)
		}
	}
	return nil
}
