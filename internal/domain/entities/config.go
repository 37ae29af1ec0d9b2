package entities

import (
	"fmt"
	"math"
)

// DefaultThreshold is the similarity cutoff used when none is configured
const DefaultThreshold Threshold = 0.8

// DefaultMaxScanSize caps the bytes read from a single file
const DefaultMaxScanSize = 1024 * 1024

// Sequential selects one-file-at-a-time directory scans
const Sequential = 0

// thresholdEpsilon absorbs float rounding when comparing scores with the threshold
const thresholdEpsilon = 1e-9

// Threshold is the minimum similarity score in (0, 1].
// Integer percentages (0-100) are a scaled view of the same value: 80 <=> 0.80.
type Threshold float64

// ThresholdFromPercent converts an integer percentage to a Threshold
func ThresholdFromPercent(percent int) Threshold {
	return Threshold(float64(percent) / 100)
}

// Percent returns the threshold as an integer percentage
func (t Threshold) Percent() int {
	return int(math.Round(float64(t) * 100))
}

// Validate checks that the threshold lies in (0, 1]
func (t Threshold) Validate() error {
	f := float64(t)
	if math.IsNaN(f) || f <= 0 || f > 1 {
		return NewEngineError(KindConfigInvalid, "threshold", "",
			fmt.Errorf("threshold %v outside (0, 1]", f))
	}
	return nil
}

// Admits reports whether score clears the threshold
func (t Threshold) Admits(score float64) bool {
	return score >= float64(t)-thresholdEpsilon
}

// EngineConfig holds engine construction parameters
type EngineConfig struct {
	Threshold         Threshold
	CorpusPath        string
	CustomCorpusPaths []string
	MaxConcurrency    int   // caps per-scan concurrency; 0 leaves the per-scan value as is
	MaxScanSize       int64 // bytes read per file; 0 selects DefaultMaxScanSize
	Keyring           string
}

// Validate checks the numeric parameters
func (c EngineConfig) Validate() error {
	if err := c.Threshold.Validate(); err != nil {
		return err
	}
	if c.MaxConcurrency < 0 {
		return NewEngineError(KindConfigInvalid, "concurrency", "",
			fmt.Errorf("concurrency %d must be >= 0", c.MaxConcurrency))
	}
	if c.MaxScanSize < 0 {
		return NewEngineError(KindConfigInvalid, "max_scan_size", "",
			fmt.Errorf("max scan size %d must be >= 0", c.MaxScanSize))
	}
	return nil
}

// DirectoryScanOptions controls one directory scan
type DirectoryScanOptions struct {
	Recursive       bool
	Concurrency     int  // Sequential (0) or a worker bound >= 1
	ProjectLicenses bool // detect project license files in the root
}

// Validate checks the concurrency bound
func (o DirectoryScanOptions) Validate() error {
	if o.Concurrency < 0 {
		return NewEngineError(KindConfigInvalid, "concurrency", "",
			fmt.Errorf("concurrency %d must be >= 0", o.Concurrency))
	}
	return nil
}
