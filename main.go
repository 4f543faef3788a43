// Package main implements the main entry point for a Game Boy ROM disassembler
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/gbdisasm/internal/cli"
	"github.com/retroenv/gbdisasm/internal/config"
	"github.com/retroenv/gbdisasm/internal/fileprocessor"
	"github.com/retroenv/gbdisasm/internal/pipeline"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, disasmOptions, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	dir, err := pipeline.New(logger).Execute(ctx, opts, disasmOptions)
	if err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Disassembling failed", log.Err(err))
		os.Exit(1)
	}

	logger.Info("Output written", log.String("directory", dir))
}
