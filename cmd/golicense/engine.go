package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/ochairo/golicense/internal/config"
	"github.com/ochairo/golicense/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/golicense/internal/domain-orchestrators"
	"github.com/ochairo/golicense/internal/domain/interfaces"
	"github.com/ochairo/golicense/internal/external-adapters/licensedb"
	"github.com/ochairo/golicense/internal/external-adapters/redis"
	"github.com/ochairo/golicense/internal/external-adapters/yaml"
	zapadapter "github.com/ochairo/golicense/internal/external-adapters/zap"
)

// commonFlags are shared by every command that builds an engine
type commonFlags struct {
	configPath   string
	envFile      string
	threshold    string
	corpus       string
	customCorpus string
	keyring      string
	logLevel     string
	logFormat    string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.envFile, "env-file", ".env", "Environment file loaded before GOLICENSE_* variables")
	fs.StringVar(&c.threshold, "threshold", "", "Similarity threshold: 0.8, 80 or 80% (default 0.8)")
	fs.StringVar(&c.corpus, "corpus", "", "License corpus directory (default \"corpus\")")
	fs.StringVar(&c.customCorpus, "custom-corpus", "", "Comma-separated custom corpus directories; later keys override earlier ones")
	fs.StringVar(&c.keyring, "keyring", "", "Armored public keyring; corpora must carry a signed checksums.txt")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&c.logFormat, "log-format", "", "Log format: console or json")
}

// load reads the configuration and applies the flags that were set
func (c *commonFlags) load(fs *flag.FlagSet) (*config.Cfg, error) {
	cfg, err := config.Load(c.configPath, c.envFile)
	if err != nil {
		return nil, err
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			t, err := config.ParseThreshold(c.threshold)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Threshold = t
		case "corpus":
			cfg.CorpusPath = c.corpus
		case "custom-corpus":
			cfg.CustomCorpusPaths = config.SplitList(c.customCorpus)
		case "keyring":
			cfg.Keyring = c.keyring
		case "log-level":
			cfg.LogLevel = c.logLevel
		case "log-format":
			cfg.LogFormat = c.logFormat
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}
	return cfg, nil
}

func newLogger(cfg *config.Cfg, w io.Writer) (*zapadapter.Logger, error) {
	return zapadapter.New(zapadapter.Config{
		Level:  cfg.LogLevel,
		Format: zapadapter.Format(cfg.LogFormat),
	}, w)
}

// buildEngine wires the adapters selected by cfg into a ready engine.
// The returned cleanup releases the result cache connection.
func buildEngine(ctx context.Context, cfg *config.Cfg, logger interfaces.Logger) (*orchestrators.Engine, func(), error) {
	cleanup := func() {}
	opts := []orchestrators.EngineOption{orchestrators.WithLogger(logger)}

	if cfg.Keyring != "" {
		verifier, err := gateways.NewCorpusVerifier(cfg.Keyring, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to load keyring: %w", err)
		}
		opts = append(opts, orchestrators.WithCorpusVerifier(verifier))
	}

	if cfg.RedisURL != "" {
		cache, err := redis.Dial(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			// Cache failures never fail a scan
			logger.Warn("result cache disabled", interfaces.F("error", err.Error()))
		} else {
			opts = append(opts, orchestrators.WithResultCache(cache))
			cleanup = func() { _ = cache.Close() }
		}
	}

	if cfg.DetectProjectLicenses {
		opts = append(opts, orchestrators.WithProjectLicenseDetector(licensedb.NewDetector(licensedb.DefaultConfidence, logger)))
	}

	engine, err := orchestrators.NewEngine(ctx, cfg.EngineConfig(), yaml.NewCorpusRepository(logger), gateways.NewFileSystem(), opts...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return engine, cleanup, nil
}

// parseInterleaved parses flags that may appear before or after positional arguments
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// parseStatus maps a flag parse error to an exit code
func parseStatus(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	return exitUsage
}
