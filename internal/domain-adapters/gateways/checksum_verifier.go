package gateways

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// checksumVerifier implements checksum verification using pure Go
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// VerifyChecksum verifies a file's SHA256 checksum
// Pure Go implementation - no external sha256sum binary needed
func (v *checksumVerifier) VerifyChecksum(_ context.Context, filePath, expectedSum string) error {
	actualSum, err := v.CalculateChecksum(filePath)
	if err != nil {
		return err
	}

	if actualSum != strings.ToLower(expectedSum) {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", filepath.Base(filePath), expectedSum, actualSum)
	}

	return nil
}

// CalculateChecksum calculates the SHA256 checksum of a file
func (v *checksumVerifier) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: File path is user-provided for checksum calculation
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// ParseManifest reads a sha256sum-style manifest ("<hex>  <name>" or
// "<hex> *<name>" per line) into name -> checksum
func (v *checksumVerifier) ParseManifest(r io.Reader) (map[string]string, error) {
	sums := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sum, name, ok := strings.Cut(line, " ")
		name = strings.TrimPrefix(strings.TrimLeft(name, " "), "*")
		if !ok || name == "" {
			return nil, fmt.Errorf("manifest line %d: expected '<sha256>  <file>'", lineNo)
		}
		if decoded, err := hex.DecodeString(sum); err != nil || len(decoded) != sha256.Size {
			return nil, fmt.Errorf("manifest line %d: invalid sha256 %q", lineNo, sum)
		}
		if !filepath.IsLocal(name) || strings.ContainsAny(name, `/\`) {
			return nil, fmt.Errorf("manifest line %d: %q is not a file in the corpus directory", lineNo, name)
		}
		if _, dup := sums[name]; dup {
			return nil, fmt.Errorf("manifest line %d: duplicate entry for %s", lineNo, name)
		}
		sums[name] = strings.ToLower(sum)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return sums, nil
}

// VerifyManifest checks every file in dir against the manifest. Files
// missing from the manifest fail verification, except the manifest itself
// and names listed in skip.
func (v *checksumVerifier) VerifyManifest(ctx context.Context, dir, manifestName string, skip ...string) error {
	manifestPath := filepath.Join(dir, manifestName)
	//nolint:gosec // G304: manifest lives in the configured corpus directory
	f, err := os.Open(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	sums, err := v.ParseManifest(f)
	if err != nil {
		return err
	}

	ignored := map[string]bool{manifestName: true}
	for _, name := range skip {
		ignored[name] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var unlisted []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || ignored[entry.Name()] {
			continue
		}
		if _, ok := sums[entry.Name()]; !ok {
			unlisted = append(unlisted, entry.Name())
		}
	}
	if len(unlisted) > 0 {
		sort.Strings(unlisted)
		return fmt.Errorf("files not covered by %s: %s", manifestName, strings.Join(unlisted, ", "))
	}

	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := v.VerifyChecksum(ctx, filepath.Join(dir, name), sums[name]); err != nil {
			return err
		}
	}

	return nil
}

// WriteManifest writes a sha256sum-style manifest covering every regular
// file in dir except the manifest itself and names listed in skip
func (v *checksumVerifier) WriteManifest(ctx context.Context, dir, manifestName string, skip ...string) error {
	ignored := map[string]bool{manifestName: true}
	for _, name := range skip {
		ignored[name] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var b strings.Builder
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() || ignored[entry.Name()] {
			continue
		}
		sum, err := v.CalculateChecksum(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "%s  %s\n", sum, entry.Name())
	}

	//nolint:gosec // G306: manifest is meant to be world-readable
	if err := os.WriteFile(filepath.Join(dir, manifestName), []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
