package gateways

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ochairo/golicense/internal/domain/interfaces"
	"github.com/ochairo/golicense/internal/domain/interfaces/gateways"
)

// Corpus manifest file names
const (
	ManifestName  = "checksums.txt"
	SignatureName = ManifestName + ".sig"
)

// corpusVerifier implements the CorpusVerifier interface by composing
// signature and checksum verification
type corpusVerifier struct {
	checksumVerifier *checksumVerifier
	gpgVerifier      *gpgVerifier
	logger           interfaces.Logger
}

// NewCorpusVerifier creates a corpus verifier trusting the keys in keyringPath
func NewCorpusVerifier(keyringPath string, logger interfaces.Logger) (gateways.CorpusVerifier, error) {
	gpg := NewGPGVerifier()
	if err := gpg.ImportGPGKeyFromFile(keyringPath); err != nil {
		return nil, err
	}
	interfaces.OrNoOp(logger).Debug("keyring loaded",
		interfaces.F("keyring", keyringPath),
		interfaces.F("keys", gpg.GetKeyringSize()))
	return NewCorpusVerifierWithDeps(NewChecksumVerifier(), gpg, logger), nil
}

// NewCorpusVerifierWithDeps creates a corpus verifier with custom dependencies
// This is useful for testing or when you want to inject specific implementations
func NewCorpusVerifierWithDeps(checksum *checksumVerifier, gpg *gpgVerifier, logger interfaces.Logger) gateways.CorpusVerifier {
	return &corpusVerifier{
		checksumVerifier: checksum,
		gpgVerifier:      gpg,
		logger:           interfaces.OrNoOp(logger),
	}
}

// VerifyCorpus checks the manifest signature, then every file against the manifest
func (c *corpusVerifier) VerifyCorpus(ctx context.Context, corpusPath string) error {
	manifest := filepath.Join(corpusPath, ManifestName)

	// Step 1: Manifest signature
	fingerprint, err := c.gpgVerifier.VerifyGPGSignatureFromFile(manifest, filepath.Join(corpusPath, SignatureName))
	if err != nil {
		return fmt.Errorf("corpus manifest %s: %w", manifest, err)
	}

	// Step 2: File checksums
	if err := c.checksumVerifier.VerifyManifest(ctx, corpusPath, ManifestName, SignatureName); err != nil {
		return fmt.Errorf("corpus checksums: %w", err)
	}

	c.logger.Info("corpus verified",
		interfaces.F("corpus", corpusPath),
		interfaces.F("signer", fingerprint))
	return nil
}
