package gateways

import (
	"fmt"

	"github.com/ochairo/golicense/internal/external-adapters/gpg"
)

// gpgVerifier wraps the external GPG adapter for corpus manifest signatures
type gpgVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a new GPG verifier gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier() *gpgVerifier {
	return &gpgVerifier{
		verifier: gpg.NewVerifier(),
	}
}

// ImportGPGKeyFromFile imports a GPG key from a local file
func (g *gpgVerifier) ImportGPGKeyFromFile(keyPath string) error {
	if err := g.verifier.ImportKeyFromFile(keyPath); err != nil {
		return fmt.Errorf("failed to import GPG key from file: %w", err)
	}
	return nil
}

// VerifyGPGSignatureFromFile verifies a detached GPG signature from a local
// file and returns the signer fingerprint
func (g *gpgVerifier) VerifyGPGSignatureFromFile(filePath, sigPath string) (string, error) {
	fingerprint, err := g.verifier.VerifySignatureFromFile(filePath, sigPath)
	if err != nil {
		return "", fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return fingerprint, nil
}

// GetKeyringSize returns the number of keys loaded
func (g *gpgVerifier) GetKeyringSize() int {
	return g.verifier.GetKeyringSize()
}
