package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/golicense/internal/domain/entities"
	"github.com/ochairo/golicense/internal/domain/interfaces/gateways"
)

// Mock implementations for testing
type mockFileSystem struct {
	files    []string
	warnings []string
	err      error
}

func (m *mockFileSystem) ReadDocument(_ context.Context, path string, _ int64) (*gateways.Document, error) {
	return &gateways.Document{Path: path, Content: []byte(path)}, nil
}

func (m *mockFileSystem) ListFiles(_ context.Context, _ string, _ bool) ([]string, []string, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	files := append([]string(nil), m.files...)
	return files, m.warnings, nil
}

type mockDetector struct {
	licenses []entities.ProjectLicense
	err      error
	calls    int
}

func (m *mockDetector) DetectProjectLicenses(_ context.Context, _ string) ([]entities.ProjectLicense, error) {
	m.calls++
	return m.licenses, m.err
}

func pathScan(_ context.Context, path string) *entities.FileScanResult {
	return entities.NewFileScanResult(path)
}

func fileNames(n int) []string {
	files := make([]string, n)
	for i := range files {
		files[i] = fmt.Sprintf("/src/file%03d.go", i)
	}
	return files
}

func resultPaths(result *entities.DirectoryScanResult) []string {
	paths := make([]string, len(result.Files))
	for i, f := range result.Files {
		paths[i] = f.Path
	}
	return paths
}

func TestScanOrchestrator_SequentialAndParallelAgree(t *testing.T) {
	files := fileNames(57)
	// enumeration order must not leak into the output
	shuffled := append([]string(nil), files...)
	sort.Sort(sort.Reverse(sort.StringSlice(shuffled)))
	fs := &mockFileSystem{files: shuffled}
	orch := NewScanOrchestrator(fs, nil, nil)

	for _, concurrency := range []int{entities.Sequential, 1, 3, 16, 100} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			opts := entities.DirectoryScanOptions{Recursive: true, Concurrency: concurrency}
			result, err := orch.ScanDirectory(context.Background(), "/src", opts, entities.DefaultThreshold, pathScan)
			require.NoError(t, err)

			assert.Equal(t, files, resultPaths(result))
			header := result.Header()
			require.NotNil(t, header)
			assert.Equal(t, len(files), header.FilesCount)
			assert.Equal(t, concurrency, header.Options.Concurrency)
			assert.Empty(t, header.Errors)
		})
	}
}

func TestScanOrchestrator_BoundsWorkers(t *testing.T) {
	fs := &mockFileSystem{files: fileNames(40)}
	orch := NewScanOrchestrator(fs, nil, nil)

	var active, peak int32
	var mu sync.Mutex
	scan := func(ctx context.Context, path string) *entities.FileScanResult {
		n := atomic.AddInt32(&active, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		defer atomic.AddInt32(&active, -1)
		return pathScan(ctx, path)
	}

	_, err := orch.ScanDirectory(context.Background(), "/src", entities.DirectoryScanOptions{Concurrency: 4}, entities.DefaultThreshold, scan)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, int32(4))
}

func TestScanOrchestrator_Header(t *testing.T) {
	fs := &mockFileSystem{files: fileNames(2), warnings: []string{"cannot read /src/private: permission denied"}}
	orch := NewScanOrchestrator(fs, nil, nil)

	result, err := orch.ScanDirectory(context.Background(), "/src", entities.DirectoryScanOptions{}, 0.75, pathScan)
	require.NoError(t, err)

	header := result.Header()
	assert.Equal(t, entities.ToolName, header.ToolName)
	assert.Equal(t, "/src", header.Input)
	assert.NotEmpty(t, header.ScanID)
	assert.InDelta(t, 0.75, header.Options.Threshold, 1e-12)
	assert.False(t, header.EndTimestamp.Before(header.StartTimestamp))
	assert.GreaterOrEqual(t, header.Duration, 0.0)
	assert.Equal(t, []string{"cannot read /src/private: permission denied"}, header.Errors)

	again, err := orch.ScanDirectory(context.Background(), "/src", entities.DirectoryScanOptions{}, 0.75, pathScan)
	require.NoError(t, err)
	assert.NotEqual(t, header.ScanID, again.Header().ScanID)
}

func TestScanOrchestrator_EmptyDirectory(t *testing.T) {
	orch := NewScanOrchestrator(&mockFileSystem{}, nil, nil)

	for _, concurrency := range []int{entities.Sequential, 8} {
		result, err := orch.ScanDirectory(context.Background(), "/empty", entities.DirectoryScanOptions{Concurrency: concurrency}, entities.DefaultThreshold, pathScan)
		require.NoError(t, err)
		assert.Empty(t, result.Files)
		assert.Equal(t, 0, result.Header().FilesCount)
	}
}

func TestScanOrchestrator_ListErrorsFailTheCall(t *testing.T) {
	notFound := entities.NotFoundf("list files", "/missing")
	orch := NewScanOrchestrator(&mockFileSystem{err: notFound}, nil, nil)

	_, err := orch.ScanDirectory(context.Background(), "/missing", entities.DirectoryScanOptions{}, entities.DefaultThreshold, pathScan)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestScanOrchestrator_NegativeConcurrency(t *testing.T) {
	orch := NewScanOrchestrator(&mockFileSystem{files: fileNames(1)}, nil, nil)

	_, err := orch.ScanDirectory(context.Background(), "/src", entities.DirectoryScanOptions{Concurrency: -1}, entities.DefaultThreshold, pathScan)
	assert.ErrorIs(t, err, entities.ErrConfigInvalid)
}

func TestScanOrchestrator_Cancellation(t *testing.T) {
	for _, concurrency := range []int{entities.Sequential, 4} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var scanned int32
			scan := func(ctx context.Context, path string) *entities.FileScanResult {
				if atomic.AddInt32(&scanned, 1) == 5 {
					cancel()
				}
				return pathScan(ctx, path)
			}

			orch := NewScanOrchestrator(&mockFileSystem{files: fileNames(200)}, nil, nil)
			result, err := orch.ScanDirectory(ctx, "/src", entities.DirectoryScanOptions{Concurrency: concurrency}, entities.DefaultThreshold, scan)
			require.NoError(t, err)

			assert.Less(t, len(result.Files), 200)
			assert.Equal(t, len(result.Files), result.Header().FilesCount)
			require.Len(t, result.Header().Errors, 1)
			assert.Contains(t, result.Header().Errors[0], "scan interrupted")
			assert.True(t, sort.SliceIsSorted(result.Files, func(i, j int) bool {
				return result.Files[i].Path < result.Files[j].Path
			}))
		})
	}
}

func TestScanOrchestrator_ProjectLicenses(t *testing.T) {
	detector := &mockDetector{licenses: []entities.ProjectLicense{{Key: "MIT", Confidence: 0.98, File: "LICENSE"}}}
	orch := NewScanOrchestrator(&mockFileSystem{files: fileNames(1)}, detector, nil)

	result, err := orch.ScanDirectory(context.Background(), "/src", entities.DirectoryScanOptions{}, entities.DefaultThreshold, pathScan)
	require.NoError(t, err)
	assert.Empty(t, result.Header().ProjectLicenses)
	assert.Equal(t, 0, detector.calls)

	result, err = orch.ScanDirectory(context.Background(), "/src", entities.DirectoryScanOptions{ProjectLicenses: true}, entities.DefaultThreshold, pathScan)
	require.NoError(t, err)
	assert.Equal(t, detector.licenses, result.Header().ProjectLicenses)

	detector.err = errors.New("detector unavailable")
	result, err = orch.ScanDirectory(context.Background(), "/src", entities.DirectoryScanOptions{ProjectLicenses: true}, entities.DefaultThreshold, pathScan)
	require.NoError(t, err)
	require.Len(t, result.Header().Errors, 1)
	assert.Contains(t, result.Header().Errors[0], "detector unavailable")
}
