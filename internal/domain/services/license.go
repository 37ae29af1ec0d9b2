package services

import (
	"context"
	"fmt"

	"github.com/ochairo/golicense/internal/domain/entities"
	"github.com/ochairo/golicense/internal/domain/interfaces"
	"github.com/ochairo/golicense/internal/domain/interfaces/services"
)

// licenseService implements LicenseService with pure business logic
type licenseService struct {
	logger interfaces.Logger
}

// NewLicenseService creates a new license service
func NewLicenseService(logger interfaces.Logger) services.LicenseService {
	return &licenseService{logger: interfaces.OrNoOp(logger)}
}

// IndexCorpus builds a read-only corpus snapshot from templates
func (s *licenseService) IndexCorpus(templates []*entities.LicenseTemplate) (*entities.CorpusSnapshot, error) {
	corpus, err := BuildCorpus(templates)
	if err != nil {
		return nil, fmt.Errorf("failed to index corpus: %w", err)
	}

	s.logger.Debug("corpus indexed",
		interfaces.F("templates", corpus.Len()),
		interfaces.F("digest", corpus.Digest()))
	return corpus, nil
}

// ExtendCorpus builds a new snapshot holding base plus templates
func (s *licenseService) ExtendCorpus(base *entities.CorpusSnapshot, templates []*entities.LicenseTemplate) (*entities.CorpusSnapshot, error) {
	corpus, err := ExtendCorpus(base, templates)
	if err != nil {
		return nil, fmt.Errorf("failed to extend corpus: %w", err)
	}

	s.logger.Debug("corpus extended",
		interfaces.F("added", len(templates)),
		interfaces.F("templates", corpus.Len()),
		interfaces.F("digest", corpus.Digest()))
	return corpus, nil
}

// AnalyzeContent fills result with the license matches and copyright
// statements found in content. Failures are recorded in result.ScanErrors.
func (s *licenseService) AnalyzeContent(ctx context.Context, content []byte, corpus *entities.CorpusSnapshot, threshold entities.Threshold, result *entities.FileScanResult) {
	doc := Normalize(content)
	candidates := FilterCandidates(doc.Bag(), corpus, threshold)

	matches, err := MatchCandidates(ctx, doc, candidates, threshold)
	if err != nil {
		result.AddError(fmt.Sprintf("license matching interrupted: %v", err))
		return
	}
	result.SetLicenses(matches)

	s.logger.Debug("document analyzed",
		interfaces.F("path", result.Path),
		interfaces.F("tokens", doc.Len()),
		interfaces.F("candidates", len(candidates)),
		interfaces.F("matches", len(matches)))

	result.Copyrights, result.Holders = ExtractStatements(content)
}
