package orchestrators

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ochairo/golicense/internal/domain/entities"
	"github.com/ochairo/golicense/internal/domain/interfaces"
	"github.com/ochairo/golicense/internal/domain/interfaces/gateways"
)

// FileScanFunc scans one file; failures are reported inside the result
type FileScanFunc func(ctx context.Context, path string) *entities.FileScanResult

// ScanOrchestrator fans a directory out to per-file scans and back in
type ScanOrchestrator struct {
	fs       gateways.FileSystemGateway
	detector gateways.ProjectLicenseDetector
	logger   interfaces.Logger
}

// NewScanOrchestrator creates a new scan orchestrator; detector may be nil
func NewScanOrchestrator(fs gateways.FileSystemGateway, detector gateways.ProjectLicenseDetector, logger interfaces.Logger) *ScanOrchestrator {
	return &ScanOrchestrator{
		fs:       fs,
		detector: detector,
		logger:   interfaces.OrNoOp(logger),
	}
}

// ScanDirectory enumerates files under root and scans each with scan.
//
// Only a missing root (NotFound) or a root that is not a directory
// (WrongKind) fail the call. Walk problems below the root and
// cancellation end up in the header errors, and files finished before
// cancellation are still returned.
func (o *ScanOrchestrator) ScanDirectory(ctx context.Context, root string, opts entities.DirectoryScanOptions, threshold entities.Threshold, scan FileScanFunc) (*entities.DirectoryScanResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	header := entities.ScanHeader{
		ToolName:       entities.ToolName,
		ToolVersion:    entities.ToolVersion,
		ScanID:         uuid.NewString(),
		Input:          root,
		StartTimestamp: startTime,
		Errors:         []string{},
		Options: entities.ScanOptions{
			Threshold:   float64(threshold),
			Recursive:   opts.Recursive,
			Concurrency: opts.Concurrency,
		},
	}

	// Step 1: Enumerate files
	files, warnings, err := o.fs.ListFiles(ctx, root, opts.Recursive)
	if err != nil {
		return nil, err
	}
	header.Errors = append(header.Errors, warnings...)

	o.logger.Debug("directory enumerated",
		interfaces.F("root", root),
		interfaces.F("files", len(files)),
		interfaces.F("warnings", len(warnings)))

	// Step 2: Scan files
	var results []*entities.FileScanResult
	if opts.Concurrency == entities.Sequential {
		results = o.scanSequential(ctx, files, scan)
	} else {
		results = o.scanParallel(ctx, files, opts.Concurrency, scan)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	if err := ctx.Err(); err != nil {
		header.Errors = append(header.Errors, fmt.Sprintf("scan interrupted after %d of %d files: %v", len(results), len(files), err))
	}

	// Step 3: Project license detection (best-effort)
	if opts.ProjectLicenses && o.detector != nil && ctx.Err() == nil {
		licenses, err := o.detector.DetectProjectLicenses(ctx, root)
		if err != nil {
			header.Errors = append(header.Errors, fmt.Sprintf("project license detection failed: %v", err))
		} else {
			header.ProjectLicenses = licenses
		}
	}

	endTime := time.Now()
	header.EndTimestamp = endTime
	header.Duration = endTime.Sub(startTime).Seconds()
	header.FilesCount = len(results)

	o.logger.Info("directory scan complete",
		interfaces.F("root", root),
		interfaces.F("scan_id", header.ScanID),
		interfaces.F("files", header.FilesCount),
		interfaces.F("errors", len(header.Errors)),
		interfaces.F("duration", header.Duration))

	return &entities.DirectoryScanResult{
		Headers: []entities.ScanHeader{header},
		Files:   results,
	}, nil
}

func (o *ScanOrchestrator) scanSequential(ctx context.Context, files []string, scan FileScanFunc) []*entities.FileScanResult {
	results := make([]*entities.FileScanResult, 0, len(files))
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		results = append(results, scan(ctx, path))
	}
	return results
}

// scanParallel runs scan on a bounded pool of workers. Job and result
// channels hold at most 2*workers entries.
func (o *ScanOrchestrator) scanParallel(ctx context.Context, files []string, workers int, scan FileScanFunc) []*entities.FileScanResult {
	if workers > len(files) {
		workers = len(files)
	}
	results := make([]*entities.FileScanResult, 0, len(files))
	if workers == 0 {
		return results
	}

	jobs := make(chan string, 2*workers)
	out := make(chan *entities.FileScanResult, 2*workers)

	go func() {
		defer close(jobs)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- path:
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				// drain without scanning once cancelled
				if ctx.Err() != nil {
					continue
				}
				out <- scan(ctx, path)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	for r := range out {
		results = append(results, r)
	}
	return results
}
