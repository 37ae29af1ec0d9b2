// Package config loads golicense settings from defaults, a YAML file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ochairo/golicense/internal/domain/entities"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "GOLICENSE_"

// DefaultCorpusPath is used when no corpus directory is configured
const DefaultCorpusPath = "corpus"

// Cfg holds all runtime configuration.
// Later sources win: defaults, YAML file, .env, environment, then CLI flags.
type Cfg struct {
	Threshold         entities.Threshold
	CorpusPath        string
	CustomCorpusPaths []string
	Concurrency       int   // per-scan worker count; 0 scans sequentially
	MaxConcurrency    int   // engine-wide cap; 0 means no cap
	MaxScanSize       int64 // bytes read per file
	Keyring           string

	LogLevel  string
	LogFormat string

	RedisURL string // empty disables the result cache
	CacheTTL time.Duration

	DetectProjectLicenses bool
}

// fileCfg is the YAML layout of a config file. Threshold is a string so
// that 0.8, 80 and "80%" are all accepted.
type fileCfg struct {
	Threshold             *string  `yaml:"threshold"`
	Corpus                *string  `yaml:"corpus"`
	CustomCorpora         []string `yaml:"custom_corpora"`
	Concurrency           *int     `yaml:"concurrency"`
	MaxConcurrency        *int     `yaml:"max_concurrency"`
	MaxScanSize           *int64   `yaml:"max_scan_size"`
	Keyring               *string  `yaml:"keyring"`
	LogLevel              *string  `yaml:"log_level"`
	LogFormat             *string  `yaml:"log_format"`
	RedisURL              *string  `yaml:"redis_url"`
	CacheTTL              *string  `yaml:"cache_ttl"`
	DetectProjectLicenses *bool    `yaml:"detect_project_licenses"`
}

// Default returns the built-in configuration
func Default() *Cfg {
	return &Cfg{
		Threshold:   entities.DefaultThreshold,
		CorpusPath:  DefaultCorpusPath,
		Concurrency: entities.Sequential,
		MaxScanSize: entities.DefaultMaxScanSize,
		LogLevel:    "info",
		LogFormat:   "console",
		CacheTTL:    24 * time.Hour,
	}
}

// Load builds the configuration. configPath, when set, must name a YAML
// file. envFiles are loaded best-effort (".env" when none are given) and
// never override variables already present in the environment.
func Load(configPath string, envFiles ...string) (*Cfg, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.applyFile(configPath); err != nil {
			return nil, err
		}
	}

	// Best-effort: a missing .env is not an error
	_ = godotenv.Load(envFiles...)

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values
func (c *Cfg) Validate() error {
	if err := c.EngineConfig().Validate(); err != nil {
		return err
	}
	if c.Concurrency < 0 {
		return configError("concurrency", fmt.Errorf("concurrency %d must be >= 0", c.Concurrency))
	}
	if c.CacheTTL < 0 {
		return configError("cache_ttl", fmt.Errorf("cache ttl %s must be >= 0", c.CacheTTL))
	}
	return nil
}

// EngineConfig returns the engine construction parameters
func (c *Cfg) EngineConfig() entities.EngineConfig {
	return entities.EngineConfig{
		Threshold:         c.Threshold,
		CorpusPath:        c.CorpusPath,
		CustomCorpusPaths: append([]string(nil), c.CustomCorpusPaths...),
		MaxConcurrency:    c.MaxConcurrency,
		MaxScanSize:       c.MaxScanSize,
		Keyring:           c.Keyring,
	}
}

func (c *Cfg) applyFile(path string) error {
	//nolint:gosec // G304: config path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return configError("config file", fmt.Errorf("failed to read %s: %w", path, err))
	}

	var f fileCfg
	if err := yaml.Unmarshal(data, &f); err != nil {
		return configError("config file", fmt.Errorf("failed to parse %s: %w", path, err))
	}

	// Relative corpus paths are resolved against the config file
	base := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	if f.Threshold != nil {
		t, err := ParseThreshold(*f.Threshold)
		if err != nil {
			return err
		}
		c.Threshold = t
	}
	if f.Corpus != nil {
		c.CorpusPath = resolve(*f.Corpus)
	}
	for _, p := range f.CustomCorpora {
		c.CustomCorpusPaths = append(c.CustomCorpusPaths, resolve(p))
	}
	if f.Concurrency != nil {
		c.Concurrency = *f.Concurrency
	}
	if f.MaxConcurrency != nil {
		c.MaxConcurrency = *f.MaxConcurrency
	}
	if f.MaxScanSize != nil {
		c.MaxScanSize = *f.MaxScanSize
	}
	if f.Keyring != nil {
		c.Keyring = resolve(*f.Keyring)
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogFormat != nil {
		c.LogFormat = *f.LogFormat
	}
	if f.RedisURL != nil {
		c.RedisURL = *f.RedisURL
	}
	if f.CacheTTL != nil {
		ttl, err := time.ParseDuration(*f.CacheTTL)
		if err != nil {
			return configError("cache_ttl", err)
		}
		c.CacheTTL = ttl
	}
	if f.DetectProjectLicenses != nil {
		c.DetectProjectLicenses = *f.DetectProjectLicenses
	}
	return nil
}

func (c *Cfg) applyEnv() error {
	if v := getenv("THRESHOLD"); v != "" {
		t, err := ParseThreshold(v)
		if err != nil {
			return err
		}
		c.Threshold = t
	}
	if v := getenv("CORPUS"); v != "" {
		c.CorpusPath = v
	}
	if v := getenv("CUSTOM_CORPUS"); v != "" {
		c.CustomCorpusPaths = SplitList(v)
	}
	if v := getenv("KEYRING"); v != "" {
		c.Keyring = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}

	var err error
	if c.Concurrency, err = envInt("CONCURRENCY", c.Concurrency); err != nil {
		return err
	}
	if c.MaxConcurrency, err = envInt("MAX_CONCURRENCY", c.MaxConcurrency); err != nil {
		return err
	}
	if v := getenv("MAX_SCAN_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return configError("max_scan_size", fmt.Errorf("%s%s=%q is not an integer", EnvPrefix, "MAX_SCAN_SIZE", v))
		}
		c.MaxScanSize = n
	}
	if v := getenv("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return configError("cache_ttl", err)
		}
		c.CacheTTL = ttl
	}
	if v := getenv("DETECT_PROJECT_LICENSES"); v != "" {
		c.DetectProjectLicenses = v == "1" || strings.EqualFold(v, "true")
	}
	return nil
}

// ParseThreshold accepts a fraction (0.8), an integer percentage (80)
// or a percentage with a sign (80%). "1" is the fraction 1.0.
func ParseThreshold(s string) (entities.Threshold, error) {
	raw := strings.TrimSpace(s)
	percent := strings.HasSuffix(raw, "%")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, configError("threshold", fmt.Errorf("invalid threshold %q", s))
	}
	if percent || f > 1 {
		f /= 100
	}

	t := entities.Threshold(f)
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return t, nil
}

// SplitList splits a path list on commas or the OS list separator
func SplitList(v string) []string {
	parts := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == os.PathListSeparator
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func envInt(name string, fallback int) (int, error) {
	v := getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, configError(strings.ToLower(name), fmt.Errorf("%s%s=%q is not an integer", EnvPrefix, name, v))
	}
	return n, nil
}

func configError(op string, err error) error {
	var engineErr *entities.EngineError
	if errors.As(err, &engineErr) {
		return err
	}
	return entities.NewEngineError(entities.KindConfigInvalid, op, "", err)
}
