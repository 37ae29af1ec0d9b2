// Package services defines interfaces for domain service contracts.
package services

import (
	"context"

	"github.com/ochairo/golicense/internal/domain/entities"
)

// LicenseService defines the per-document license and copyright analysis
type LicenseService interface {
	// IndexCorpus builds a read-only corpus snapshot from templates
	IndexCorpus(templates []*entities.LicenseTemplate) (*entities.CorpusSnapshot, error)

	// ExtendCorpus builds a new snapshot from base plus templates; base is not modified
	ExtendCorpus(base *entities.CorpusSnapshot, templates []*entities.LicenseTemplate) (*entities.CorpusSnapshot, error)

	// AnalyzeContent runs normalization, candidate filtering, matching and
	// statement extraction over one document and fills result
	AnalyzeContent(ctx context.Context, content []byte, corpus *entities.CorpusSnapshot, threshold entities.Threshold, result *entities.FileScanResult)
}
