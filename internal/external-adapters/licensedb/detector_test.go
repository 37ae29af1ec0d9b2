package licensedb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mitLicense = `MIT License

Copyright (c) 2024 Example Authors

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

func TestDetector_MIT(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "LICENSE"), []byte(mitLicense), 0600))

	licenses, err := NewDetector(0, nil).DetectProjectLicenses(context.Background(), dir)
	require.NoError(t, err)
	require.NotEmpty(t, licenses)

	assert.Equal(t, "MIT", licenses[0].Key)
	assert.GreaterOrEqual(t, licenses[0].Confidence, DefaultConfidence)
	for i := 1; i < len(licenses); i++ {
		assert.GreaterOrEqual(t, licenses[i-1].Confidence, licenses[i].Confidence)
	}
}

func TestDetector_NoLicenseFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0600))

	licenses, err := NewDetector(0, nil).DetectProjectLicenses(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, licenses)
}

func TestDetector_MissingRoot(t *testing.T) {
	_, err := NewDetector(0, nil).DetectProjectLicenses(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDetector_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDetector(0, nil).DetectProjectLicenses(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
