// Package loader handles ROM and symbol file loading operations.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/gbdisasm/internal/mapper"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/gbdisasm/internal/symbols"
	"github.com/retroenv/retrogolib/log"
)

// Input contains all files that a disassembly is based on.
type Input struct {
	ROM     *mapper.Mapper
	Symbols []symbols.Symbol
	Shim    []symbols.Symbol
	Charmap *symbols.Charmap // nil if no character map is configured
}

// Loader handles loading input files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new input loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load loads the ROM and all optional auxiliary files of the options.
func (l *Loader) Load(opts options.Program) (*Input, error) {
	data, err := os.ReadFile(opts.ROM)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", opts.ROM, err)
	}
	rom, err := mapper.New(data)
	if err != nil {
		return nil, fmt.Errorf("loading ROM: %w", err)
	}

	input := &Input{ROM: rom}

	if opts.Sym != "" {
		if input.Symbols, err = loadSymbols(opts.Sym); err != nil {
			return nil, err
		}
	}
	if opts.Shim != "" {
		if input.Shim, err = loadSymbols(opts.Shim); err != nil {
			return nil, err
		}
	}

	if opts.Charmap != "" {
		err = readFile(opts.Charmap, func(reader io.Reader) error {
			charmap, err := symbols.ParseCharmap(l.logger, reader)
			input.Charmap = charmap
			return err //nolint:wrapcheck // wrapped by readFile
		})
		if err != nil {
			return nil, err
		}
	}

	return input, nil
}

func loadSymbols(path string) ([]symbols.Symbol, error) {
	var syms []symbols.Symbol
	err := readFile(path, func(reader io.Reader) error {
		var err error
		syms, err = symbols.ParseSym(reader)
		return err //nolint:wrapcheck // wrapped by readFile
	})
	return syms, err
}

func readFile(path string, parse func(reader io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if err := parse(file); err != nil {
		return fmt.Errorf("parsing file %s: %w", path, err)
	}
	return nil
}
