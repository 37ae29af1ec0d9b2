// Package licensedb detects project-level licenses with go-license-detector.
package licensedb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-enry/go-license-detector/v4/licensedb"
	"github.com/go-enry/go-license-detector/v4/licensedb/filer"

	"github.com/ochairo/golicense/internal/domain/entities"
	"github.com/ochairo/golicense/internal/domain/interfaces"
	"github.com/ochairo/golicense/internal/domain/interfaces/gateways"
)

// DefaultConfidence is the minimum detector confidence reported
const DefaultConfidence = 0.85

// Detector implements gateways.ProjectLicenseDetector
type Detector struct {
	minConfidence float32
	logger        interfaces.Logger
}

// Ensure Detector implements ProjectLicenseDetector interface
var _ gateways.ProjectLicenseDetector = (*Detector)(nil)

// NewDetector creates a detector; minConfidence <= 0 selects DefaultConfidence
func NewDetector(minConfidence float32, logger interfaces.Logger) *Detector {
	if minConfidence <= 0 {
		minConfidence = DefaultConfidence
	}
	return &Detector{
		minConfidence: minConfidence,
		logger:        interfaces.OrNoOp(logger),
	}
}

// DetectProjectLicenses reports the SPDX licenses declared by license files
// in root, most confident first. A root without license files yields none.
func (d *Detector) DetectProjectLicenses(ctx context.Context, root string) ([]entities.ProjectLicense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := filer.FromDirectory(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", root, err)
	}

	results, err := licensedb.Detect(f)
	if errors.Is(err, licensedb.ErrNoLicenseFound) {
		return []entities.ProjectLicense{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("license detection failed: %w", err)
	}

	licenses := make([]entities.ProjectLicense, 0, len(results))
	for id, match := range results {
		if match.Confidence < d.minConfidence {
			continue
		}
		licenses = append(licenses, entities.ProjectLicense{
			Key:        id,
			Confidence: float64(match.Confidence),
			File:       match.File,
		})
	}

	sort.Slice(licenses, func(i, j int) bool {
		if licenses[i].Confidence != licenses[j].Confidence {
			return licenses[i].Confidence > licenses[j].Confidence
		}
		return licenses[i].Key < licenses[j].Key
	})

	d.logger.Debug("project licenses detected",
		interfaces.F("root", root),
		interfaces.F("candidates", len(results)),
		interfaces.F("reported", len(licenses)))
	return licenses, nil
}
