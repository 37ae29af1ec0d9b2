// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"

	"github.com/ochairo/golicense/internal/domain/entities"
)

// Document is the content read from one file
type Document struct {
	Path      string
	Content   []byte
	Truncated bool // content was cut at the scan size limit
}

// FileSystemGateway defines the file system operations a scan needs
type FileSystemGateway interface {
	// ReadDocument reads up to maxSize bytes of a regular file.
	// Errors are EngineErrors (NotFound, WrongKind) or wrapped I/O errors.
	ReadDocument(ctx context.Context, path string, maxSize int64) (*Document, error)

	// ListFiles enumerates regular files under root, sorted by path.
	// Walk problems below root are returned as warnings, not errors.
	ListFiles(ctx context.Context, root string, recursive bool) (files []string, warnings []string, err error)
}

// ResultCache stores per-content scan results
type ResultCache interface {
	Get(ctx context.Context, key string) (*entities.FileScanResult, bool, error)
	Set(ctx context.Context, key string, result *entities.FileScanResult) error
}

// ProjectLicenseDetector detects project-level licenses from license files in a directory
type ProjectLicenseDetector interface {
	DetectProjectLicenses(ctx context.Context, root string) ([]entities.ProjectLicense, error)
}

// CorpusVerifier checks the integrity of a corpus directory before it is loaded
type CorpusVerifier interface {
	VerifyCorpus(ctx context.Context, corpusPath string) error
}
