package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/golicense/internal/domain/entities"
)

const mitLicense = `Copyright (c) 2024 Jane Doe

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
`

// shippedCorpus returns the absolute path of the corpus in the repository
func shippedCorpus(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "corpus"))
	require.NoError(t, err)
	return path
}

// runCLI runs the CLI in-process and returns the exit code, stdout and stderr
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"LICENSE":         mitLicense,
		"README.md":       "# demo\n",
		"src/main.go":     "// Copyright 2023 The Demo Authors\npackage main\n",
		"src/lib/util.go": "package lib\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
	return root
}

// copyCorpus copies the shipped corpus into a temporary directory
func copyCorpus(t *testing.T) string {
	t.Helper()
	src := shippedCorpus(t)
	dst := t.TempDir()
	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dst, e.Name()), data, 0600))
	}
	return dst
}

// signManifest signs checksums.txt in dir and returns the public keyring path
func signManifest(t *testing.T, dir string) string {
	t.Helper()

	entity, err := openpgp.NewEntity("Corpus Signer", "", "signer@example.com", nil)
	require.NoError(t, err)

	manifest, err := os.ReadFile(filepath.Join(dir, "checksums.txt"))
	require.NoError(t, err)
	var sig bytes.Buffer
	require.NoError(t, openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader(manifest), nil))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checksums.txt.sig"), sig.Bytes(), 0600))

	var key bytes.Buffer
	w, err := armor.Encode(&key, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.Serialize(w))
	require.NoError(t, w.Close())

	keyPath := filepath.Join(t.TempDir(), "keyring.asc")
	require.NoError(t, os.WriteFile(keyPath, key.Bytes(), 0600))
	return keyPath
}

func TestCLI_Help(t *testing.T) {
	code, stdout, _ := runCLI(t, "help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Commands:")

	for _, cmd := range []string{"scan", "list", "verify"} {
		t.Run(cmd, func(t *testing.T) {
			code, _, stderr := runCLI(t, cmd, "--help")
			assert.Equal(t, exitOK, code)
			assert.Contains(t, stderr, "Usage: golicense "+cmd)
		})
	}
}

func TestCLI_UnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, "frobnicate")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "Unknown command: frobnicate")

	code, _, _ = runCLI(t)
	assert.Equal(t, exitUsage, code)
}

func TestCLI_ScanFile(t *testing.T) {
	root := writeProject(t)

	code, stdout, stderr := runCLI(t, "scan", filepath.Join(root, "LICENSE"), "--corpus", shippedCorpus(t))
	require.Equal(t, exitOK, code, stderr)

	var result entities.FileScanResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, []string{"mit"}, result.LicenseExpressions)
	require.Len(t, result.Licenses, 1)
	assert.InDelta(t, 1.0, result.Licenses[0].Score, 1e-9)
	require.Len(t, result.Holders, 1)
	assert.Equal(t, "Jane Doe", result.Holders[0].Value)
}

func TestCLI_ScanDirectory(t *testing.T) {
	root := writeProject(t)
	output := filepath.Join(t.TempDir(), "result.json")

	code, stdout, stderr := runCLI(t, "scan", "--corpus", shippedCorpus(t), "--concurrency", "4", "--output", output, root)
	require.Equal(t, exitOK, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "header")
	assert.Contains(t, raw, "files")

	var result entities.DirectoryScanResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Headers, 1)
	header := result.Headers[0]
	assert.Equal(t, 4, header.FilesCount)
	assert.Equal(t, 4, header.Options.Concurrency)
	assert.True(t, header.Options.Recursive)
	assert.Equal(t, "golicense", header.ToolName)

	require.Len(t, result.Files, 4)
	assert.Equal(t, filepath.Join(root, "LICENSE"), result.Files[0].Path)
	assert.Equal(t, []string{"mit"}, result.Files[0].LicenseExpressions)
}

func TestCLI_ScanDirectoryTopLevel(t *testing.T) {
	root := writeProject(t)

	code, stdout, stderr := runCLI(t, "scan", root, "--corpus", shippedCorpus(t), "--recursive=false", "--threshold", "90%")
	require.Equal(t, exitOK, code, stderr)

	var result entities.DirectoryScanResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 2, result.Headers[0].FilesCount)
	assert.InDelta(t, 0.9, result.Headers[0].Options.Threshold, 1e-12)
}

func TestCLI_ScanErrors(t *testing.T) {
	corpus := shippedCorpus(t)
	root := writeProject(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"missing path", []string{"scan", filepath.Join(root, "missing"), "--corpus", corpus}, exitError, "not found"},
		{"bad threshold", []string{"scan", root, "--corpus", corpus, "--threshold", "0"}, exitError, "threshold"},
		{"negative concurrency", []string{"scan", root, "--corpus", corpus, "--concurrency", "-2"}, exitError, "concurrency"},
		{"missing corpus", []string{"scan", root, "--corpus", filepath.Join(root, "no-corpus")}, exitError, "invalid corpus"},
		{"no path", []string{"scan", "--corpus", corpus}, exitUsage, "exactly one path"},
		{"unknown flag", []string{"scan", root, "--frobnicate"}, exitUsage, "frobnicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestCLI_List(t *testing.T) {
	code, stdout, stderr := runCLI(t, "list", "--corpus", shippedCorpus(t))
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Available templates (5 total)")
	assert.Contains(t, stdout, "bsd-3-clause")

	code, stdout, stderr = runCLI(t, "list", "--corpus", shippedCorpus(t), "--json")
	require.Equal(t, exitOK, code, stderr)

	var templates []entities.TemplateInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &templates))
	keys := make([]string, len(templates))
	for i, tmpl := range templates {
		keys[i] = tmpl.Key
	}
	assert.Equal(t, []string{"bsd-2-clause", "bsd-3-clause", "isc", "mit", "zlib"}, keys)
}

func TestCLI_ListCustomCorpus(t *testing.T) {
	custom := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(custom, "acme.txt"), []byte("Acme Corp internal use only. Do not redistribute.\n"), 0600))

	code, stdout, stderr := runCLI(t, "list", "--corpus", shippedCorpus(t), "--custom-corpus", custom)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Available templates (6 total)")
	assert.Contains(t, stdout, "acme")
}

func TestCLI_VerifyAndSignedScan(t *testing.T) {
	corpus := copyCorpus(t)

	code, stdout, stderr := runCLI(t, "verify", corpus, "--write-manifest")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "checksums.txt")

	keyring := signManifest(t, corpus)

	code, stdout, stderr = runCLI(t, "verify", corpus, "--keyring", keyring)
	require.Equal(t, exitOK, code, stdout+stderr)
	assert.Contains(t, stdout, "verified")

	root := writeProject(t)
	code, _, stderr = runCLI(t, "scan", filepath.Join(root, "LICENSE"), "--corpus", corpus, "--keyring", keyring)
	require.Equal(t, exitOK, code, stderr)

	// tampering with a template breaks verification and corpus loading
	require.NoError(t, os.WriteFile(filepath.Join(corpus, "mit.yml"), []byte("key: mit\ntext: anything goes\n"), 0600))

	code, stdout, _ = runCLI(t, "verify", corpus, "--keyring", keyring)
	assert.Equal(t, exitError, code)
	assert.True(t, strings.Contains(stdout, "FAILED"), stdout)

	code, _, stderr = runCLI(t, "scan", filepath.Join(root, "LICENSE"), "--corpus", corpus, "--keyring", keyring)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "invalid corpus")
}

func TestCLI_VerifyUsage(t *testing.T) {
	code, _, stderr := runCLI(t, "verify")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "corpus directory is required")

	code, _, stderr = runCLI(t, "verify", t.TempDir())
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "--keyring is required")
}
