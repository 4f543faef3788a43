// Package fileprocessor handles output directory and file writing operations
package fileprocessor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/gbdisasm/internal/writer"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// Names of the files written to the output directory.
const (
	AsmFile     = "output.asm"
	ShimFile    = "shim.sym"
	NewSymsFile = "new.sym"
)

const maxOutputDirs = 1000

// CreateOutputDir creates the output directory. Unless overwrite is set, an
// existing directory is not reused and a counter is appended to the name.
func CreateOutputDir(dir string, overwrite bool) (string, error) {
	if overwrite {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
		return dir, nil
	}

	if parent := filepath.Dir(dir); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}

	for i := range maxOutputDirs {
		name := dir
		if i > 0 {
			name += strconv.Itoa(i)
		}

		err := os.Mkdir(name, 0o755)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}
	return "", fmt.Errorf("creating output directory: all names of '%s' are taken", dir)
}

// WriteOutput writes the assembly file and the symbol files of the program
// to the directory.
func WriteOutput(dir string, app *program.Program, disasmOptions options.Disassembler) error {
	writerOptions := writer.Options{
		HexComments:    disasmOptions.HexComments,
		OffsetComments: disasmOptions.OffsetComments,
	}

	err := writeFile(filepath.Join(dir, AsmFile), func(w io.Writer) error {
		return writer.New(app, w, writerOptions).Write()
	})
	if err != nil {
		return fmt.Errorf("writing asm file: %w", err)
	}

	err = writeFile(filepath.Join(dir, ShimFile), func(w io.Writer) error {
		return writer.WriteSymbols(w, app.Shim)
	})
	if err != nil {
		return fmt.Errorf("writing shim file: %w", err)
	}

	err = writeFile(filepath.Join(dir, NewSymsFile), func(w io.Writer) error {
		return writer.WriteSymbols(w, app.NewSymbols)
	})
	if err != nil {
		return fmt.Errorf("writing new symbols file: %w", err)
	}
	return nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	return nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("gbdisasm", log.String("version", buildinfo.Version(version, commit, date)))
}
