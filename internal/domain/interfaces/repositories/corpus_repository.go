// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/golicense/internal/domain/entities"
)

// CorpusRepository defines the interface for loading license templates
type CorpusRepository interface {
	// LoadTemplates reads every template under a corpus directory.
	// Failures are reported as KindCorpusInvalid engine errors.
	LoadTemplates(ctx context.Context, corpusPath string) ([]*entities.LicenseTemplate, error)
}
