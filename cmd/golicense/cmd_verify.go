package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ochairo/golicense/internal/domain-adapters/gateways"
	"github.com/ochairo/golicense/internal/domain/interfaces"
)

func runVerify(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		keyring       = fs.String("keyring", "", "Armored public keyring trusted to sign the corpus manifest")
		writeManifest = fs.Bool("write-manifest", false, "Write checksums.txt for the corpus instead of verifying it")
	)

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: golicense verify <corpus-dir> [options]

Verify a corpus directory: checksums.txt.sig must be a valid signature
of checksums.txt by a key in the keyring, and every file in the directory
must match its checksum.

With --write-manifest, checksums.txt is (re)generated instead; sign it
with your own tooling, e.g.:
  gpg --armor --detach-sign --output checksums.txt.sig checksums.txt

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  golicense verify ./corpus --keyring corpus-keys.asc
  golicense verify ./corpus --write-manifest
`)
	}

	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return parseStatus(err)
	}
	if len(positional) != 1 {
		fmt.Fprintf(stderr, "Error: corpus directory is required\n\n")
		fs.Usage()
		return exitUsage
	}
	corpusDir := positional[0]

	if info, err := os.Stat(corpusDir); err != nil || !info.IsDir() {
		fmt.Fprintf(stderr, "Error: %s is not a directory\n", corpusDir)
		return exitError
	}

	if *writeManifest {
		checksum := gateways.NewChecksumVerifier()
		if err := checksum.WriteManifest(ctx, corpusDir, gateways.ManifestName, gateways.SignatureName); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		fmt.Fprintf(stdout, "Wrote %s\n", filepath.Join(corpusDir, gateways.ManifestName))
		return exitOK
	}

	if *keyring == "" {
		fmt.Fprintf(stderr, "Error: --keyring is required\n\n")
		fs.Usage()
		return exitUsage
	}

	verifier, err := gateways.NewCorpusVerifier(*keyring, &interfaces.NoOpLogger{})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load keyring: %v\n", err)
		return exitError
	}

	fmt.Fprintf(stdout, "Verifying %s\n", corpusDir)
	if err := verifier.VerifyCorpus(ctx, corpusDir); err != nil {
		fmt.Fprintf(stdout, "Verification FAILED: %v\n", err)
		return exitError
	}
	fmt.Fprintf(stdout, "Signature and checksums verified\n")
	return exitOK
}
