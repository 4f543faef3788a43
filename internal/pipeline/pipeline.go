// Package pipeline orchestrates the disassembly workflow stages.
package pipeline

import (
	"context"
	"fmt"

	"github.com/retroenv/gbdisasm/internal/disasm"
	"github.com/retroenv/gbdisasm/internal/fileprocessor"
	"github.com/retroenv/gbdisasm/internal/loader"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/gbdisasm/internal/refs"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete disassembly workflow.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
}

// New creates a new disassembly pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(logger),
	}
}

// Execute runs the complete disassembly pipeline and returns the output directory.
// Nothing is written if loading or disassembling fails.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, disasmOpts options.Disassembler) (string, error) {
	input, err := p.loader.Load(opts)
	if err != nil {
		return "", fmt.Errorf("loading input: %w", err)
	}

	app, err := p.ExecuteWithInput(ctx, input, disasmOpts)
	if err != nil {
		return "", err
	}

	dir, err := fileprocessor.CreateOutputDir(opts.OutputDir, opts.Overwrite)
	if err != nil {
		return "", fmt.Errorf("preparing output: %w", err)
	}
	if err := fileprocessor.WriteOutput(dir, app, disasmOpts); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	return dir, nil
}

// ExecuteWithInput runs the disassembly with already loaded input files.
// This is useful for testing and programmatic usage where the ROM is already in memory.
func (p *Pipeline) ExecuteWithInput(ctx context.Context, input *loader.Input,
	disasmOpts options.Disassembler) (*program.Program, error) {

	p.logger.Info("Disassembling ROM",
		log.Int("banks", input.ROM.Banks()),
		log.Int("symbols", len(input.Symbols)),
		log.Int("shim_symbols", len(input.Shim)))

	dis := disasm.New(p.logger, input.ROM, disasmOpts, input.Charmap)
	dis.ImportSymbols(input.Shim, refs.Data)
	dis.ImportSymbols(input.Symbols, refs.Main)

	app, err := dis.Process(ctx)
	if err != nil {
		return nil, fmt.Errorf("disassembling: %w", err)
	}
	return app, nil
}
