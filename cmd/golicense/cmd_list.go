package main

import (
	"context"
	"flag"
	"fmt"
	"io"
)

func runList(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	common.register(fs)
	asJSON := fs.Bool("json", false, "Print templates as JSON")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: golicense list [options]

List the license templates of the configured corpus, custom corpora included.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  golicense list
  golicense list --corpus ./licenses --custom-corpus ./extra --json
`)
	}

	if _, err := parseInterleaved(fs, args); err != nil {
		return parseStatus(err)
	}

	cfg, err := common.load(fs)
	if err != nil {
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

	// Listing never needs the result cache or project detection
	cfg.RedisURL = ""
	cfg.DetectProjectLicenses = false

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error listing templates: %v\n", err)
		return exitError
	}
	defer cleanup()

	templates, err := engine.Templates()
	if err != nil {
		fmt.Fprintf(stderr, "Error listing templates: %v\n", err)
		return exitError
	}

	if *asJSON {
		if err := writeResult(templates, "", stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		return exitOK
	}

	fmt.Fprintf(stdout, "Available templates (%d total):\n\n", len(templates))
	for _, t := range templates {
		fmt.Fprintf(stdout, "  %-24s %-12s %5d tokens", t.Key, t.Category, t.Tokens)
		if t.Name != "" {
			fmt.Fprintf(stdout, "  %s", t.Name)
		}
		fmt.Fprintln(stdout)
	}
	return exitOK
}
