package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ochairo/golicense/internal/domain/entities"
	"github.com/ochairo/golicense/internal/domain/interfaces"
)

func runScan(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	var (
		recursive   = fs.Bool("recursive", true, "Descend into sub-directories")
		concurrency = fs.Int("concurrency", 0, "Parallel file scans; 0 scans sequentially")
		output      = fs.String("output", "", "Write the JSON result to this file instead of stdout")
		detect      = fs.Bool("detect-project-license", false, "Detect the project license from license files in the root")
		cacheRedis  = fs.String("cache-redis", "", "Redis URL for caching per-content results (redis://host:port/db)")
	)

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: golicense scan <path> [options]

Scan a file or a directory for license texts and copyright statements.

A file produces one result; a directory produces a header (scan id,
timestamps, options, batch-level errors) plus one result per file,
sorted by path.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  golicense scan LICENSE
  golicense scan ./project --concurrency 8 --output result.json
  golicense scan ./project --threshold 90%% --custom-corpus ./extra-licenses
  golicense scan ./project --recursive=false --detect-project-license
`)
	}

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return parseStatus(err)
	}
	if len(positional) != 1 {
		fmt.Fprintf(stderr, "Error: exactly one path is required\n\n")
		fs.Usage()
		return exitUsage
	}
	target := positional[0]

	cfg, err := common.load(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "concurrency":
			cfg.Concurrency = *concurrency
		case "detect-project-license":
			cfg.DetectProjectLicenses = *detect
		case "cache-redis":
			cfg.RedisURL = *cacheRedis
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	//nolint:errcheck // Flush on exit
	defer logger.Sync()

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer cleanup()

	var result any
	if info, statErr := os.Stat(target); statErr == nil && info.IsDir() {
		result, err = engine.ScanDirectory(ctx, target, entities.DirectoryScanOptions{
			Recursive:       *recursive,
			Concurrency:     cfg.Concurrency,
			ProjectLicenses: cfg.DetectProjectLicenses,
		})
	} else {
		result, err = engine.ScanFile(ctx, target)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if err := writeResult(result, *output, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	if *output != "" {
		logger.Info("results written", interfaces.F("output", *output))
	}
	return exitOK
}

// writeResult encodes result as indented JSON to path, or to w when path is empty
func writeResult(result any, path string, w io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
