// Package config handles application configuration and setup
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/retrogolib/log"
	"gopkg.in/yaml.v3"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// File is the YAML project file of a disassembly.
type File struct {
	ROM       string `yaml:"rom"`
	Sym       string `yaml:"sym"`
	Shim      string `yaml:"shim"`
	Charmap   string `yaml:"charmap"`
	OutputDir string `yaml:"outputDir"`
	Overwrite bool   `yaml:"overwrite"`

	Routines options.Locations   `yaml:"routines"`
	Texts    options.Locations   `yaml:"texts"`
	Tables   options.Locations   `yaml:"tables"`
	Data     options.Locations   `yaml:"data"`
	EOS      options.Terminators `yaml:"eos"`

	HomeReferenceBank *int `yaml:"homeReferenceBank"`
	AssumePointer     bool `yaml:"assumePointer"`
	MinDataPointer    int  `yaml:"minDataPointer"`
	MaxDataPointer    *int `yaml:"maxDataPointer"`
	MaxGeneration     int  `yaml:"maxGeneration"`

	RAMOffsetNaming    bool `yaml:"ramOffsetNaming"`
	PersistOffsetNames bool `yaml:"persistOffsetNames"`
	HardwareNames      bool `yaml:"hardwareNames"`
}

// Load reads a project file. Relative file paths in it are resolved
// relative to the directory of the project file.
func Load(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	cfg, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.ROM, &cfg.Sym, &cfg.Shim, &cfg.Charmap, &cfg.OutputDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return cfg, nil
}

// Parse decodes a project file. Unknown keys are rejected.
func Parse(reader io.Reader) (*File, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	cfg := &File{}
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return cfg, nil
}

// Apply sets all options that are configured by the project file.
func (f *File) Apply(opts *options.Program, disasmOpts *options.Disassembler) {
	setString(&opts.ROM, f.ROM)
	setString(&opts.Sym, f.Sym)
	setString(&opts.Shim, f.Shim)
	setString(&opts.Charmap, f.Charmap)
	setString(&opts.OutputDir, f.OutputDir)
	opts.Overwrite = opts.Overwrite || f.Overwrite

	disasmOpts.Routines = append(disasmOpts.Routines, f.Routines...)
	disasmOpts.Texts = append(disasmOpts.Texts, f.Texts...)
	disasmOpts.Tables = append(disasmOpts.Tables, f.Tables...)
	disasmOpts.Data = append(disasmOpts.Data, f.Data...)
	disasmOpts.EOS = append(disasmOpts.EOS, f.EOS...)

	if f.HomeReferenceBank != nil {
		disasmOpts.HomeReferenceBank = f.HomeReferenceBank
	}
	if f.MaxDataPointer != nil {
		disasmOpts.MaxDataPointer = f.MaxDataPointer
	}
	disasmOpts.AssumePointer = f.AssumePointer
	disasmOpts.MinDataPointer = f.MinDataPointer
	disasmOpts.MaxGeneration = f.MaxGeneration

	disasmOpts.RAMOffsetNaming = f.RAMOffsetNaming
	disasmOpts.PersistOffsetNames = f.PersistOffsetNames
	disasmOpts.HardwareNames = f.HardwareNames
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}
