// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/gbdisasm/internal/config"
	"github.com/retroenv/gbdisasm/internal/options"
)

// flagValues holds the values of flags that override the project file.
type flagValues struct {
	program        options.Program
	maxGeneration  int
	hexComments    bool
	offsetComments bool
}

// ParseFlags parses command line flags and returns program and disassembler options.
// Options of a project file given by -c are applied first, flags that are
// set explicitly override them.
func ParseFlags() (options.Program, options.Disassembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var values flagValues
	readOptionFlags(flags, &values)

	err := flags.Parse(os.Args[1:])
	opts := options.Program{
		Debug: values.program.Debug,
		Quiet: values.program.Quiet,
	}
	if err != nil {
		return opts, options.Disassembler{}, &UsageError{flags: flags}
	}

	args := flags.Args()
	if err := validateArgs(args); err != nil {
		return opts, options.Disassembler{}, err
	}

	opts.OutputDir = options.DefaultOutputDir
	disasmOpts := options.NewDisassembler()
	if values.program.Config != "" {
		cfg, err := config.Load(values.program.Config)
		if err != nil {
			return opts, options.Disassembler{}, fmt.Errorf("loading config: %w", err)
		}
		cfg.Apply(&opts, &disasmOpts)
		opts.Config = values.program.Config
	}

	applyFlags(flags, values, &opts, &disasmOpts)
	if len(args) == 1 {
		opts.ROM = args[0]
	}

	if opts.ROM == "" {
		return opts, options.Disassembler{}, &UsageError{flags: flags, msg: "no ROM file given"}
	}
	return opts, disasmOpts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: gbdisasm [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to disassemble, please pass the file to disassemble as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{msg: "only one file to disassemble can be passed"}
	}
	return nil
}

// applyFlags overrides options with all flags that were set explicitly.
func applyFlags(flags *flag.FlagSet, values flagValues, opts *options.Program, disasmOpts *options.Disassembler) {
	overrides := map[string]func(){
		"rom":         func() { opts.ROM = values.program.ROM },
		"sym":         func() { opts.Sym = values.program.Sym },
		"shim":        func() { opts.Shim = values.program.Shim },
		"charmap":     func() { opts.Charmap = values.program.Charmap },
		"o":           func() { opts.OutputDir = values.program.OutputDir },
		"overwrite":   func() { opts.Overwrite = values.program.Overwrite },
		"gen":         func() { disasmOpts.MaxGeneration = values.maxGeneration },
		"hexcomments": func() { disasmOpts.HexComments = values.hexComments },
		"offsets":     func() { disasmOpts.OffsetComments = values.offsetComments },
	}

	flags.Visit(func(f *flag.Flag) {
		if override, ok := overrides[f.Name]; ok {
			override()
		}
	})
}

func readOptionFlags(flags *flag.FlagSet, values *flagValues) {
	opts := &values.program
	flags.StringVar(&opts.Config, "c", "", "name of the YAML project file to load")
	flags.StringVar(&opts.ROM, "rom", "", "name of the input ROM file")
	flags.StringVar(&opts.Sym, "sym", "", "name of the symbol file to import")
	flags.StringVar(&opts.Shim, "shim", "", "name of the shim file with the names cached by a previous run")
	flags.StringVar(&opts.Charmap, "charmap", "", "name of the character map file used to decode text")
	flags.StringVar(&opts.OutputDir, "o", options.DefaultOutputDir, "name of the output directory")
	flags.BoolVar(&opts.Overwrite, "overwrite", false, "overwrite the output directory instead of creating a new one")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.IntVar(&values.maxGeneration, "gen", 0, "maximum generation of automatically discovered routines to parse")
	flags.BoolVar(&values.hexComments, "hexcomments", false, "output opcode bytes as hex values in comments")
	flags.BoolVar(&values.offsetComments, "offsets", false, "output offsets in comments")
}
