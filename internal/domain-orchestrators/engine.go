// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ochairo/golicense/internal/domain/entities"
	"github.com/ochairo/golicense/internal/domain/interfaces"
	"github.com/ochairo/golicense/internal/domain/interfaces/gateways"
	"github.com/ochairo/golicense/internal/domain/interfaces/repositories"
	"github.com/ochairo/golicense/internal/domain/interfaces/services"
	domainservices "github.com/ochairo/golicense/internal/domain/services"
)

// TracerName identifies the spans emitted by the engine
const TracerName = "github.com/ochairo/golicense"

// engineState is the unit every scan reads once; it is never mutated after publication
type engineState struct {
	corpus    *entities.CorpusSnapshot
	threshold entities.Threshold
}

// EngineSnapshot is a read-only view of the engine state at one point in time
type EngineSnapshot struct {
	Corpus    *entities.CorpusSnapshot
	Threshold entities.Threshold
}

// Engine identifies licenses and copyright statements in files and directories.
//
// The zero Engine is not ready: every operation fails with ErrEngineNotReady.
// A constructed Engine is safe for concurrent use; scans never observe a
// half-applied corpus or threshold change.
type Engine struct {
	state atomic.Pointer[engineState]
	mu    sync.Mutex // serializes writers

	cfg      entities.EngineConfig
	license  services.LicenseService
	repo     repositories.CorpusRepository
	fs       gateways.FileSystemGateway
	verifier gateways.CorpusVerifier
	cache    gateways.ResultCache
	detector gateways.ProjectLicenseDetector
	scanner  *ScanOrchestrator
	logger   interfaces.Logger
	tracer   trace.Tracer
}

// EngineOption configures optional engine collaborators
type EngineOption func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger interfaces.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithTracer sets the tracer used for scan and corpus spans
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = tracer }
}

// WithResultCache enables per-content result caching
func WithResultCache(cache gateways.ResultCache) EngineOption {
	return func(e *Engine) { e.cache = cache }
}

// WithCorpusVerifier checks every corpus directory before it is loaded
func WithCorpusVerifier(verifier gateways.CorpusVerifier) EngineOption {
	return func(e *Engine) { e.verifier = verifier }
}

// WithProjectLicenseDetector enables header-level project license detection
func WithProjectLicenseDetector(detector gateways.ProjectLicenseDetector) EngineOption {
	return func(e *Engine) { e.detector = detector }
}

// WithLicenseService replaces the default per-document analysis
func WithLicenseService(license services.LicenseService) EngineOption {
	return func(e *Engine) { e.license = license }
}

// NewEngine validates cfg, loads the base corpus and any custom corpora,
// and returns a ready engine
func NewEngine(ctx context.Context, cfg entities.EngineConfig, repo repositories.CorpusRepository, fs gateways.FileSystemGateway, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if repo == nil || fs == nil {
		return nil, entities.NewEngineError(entities.KindConfigInvalid, "new engine", "",
			errors.New("corpus repository and file system are required"))
	}
	if cfg.MaxScanSize == 0 {
		cfg.MaxScanSize = entities.DefaultMaxScanSize
	}

	e := &Engine{
		cfg:  cfg,
		repo: repo,
		fs:   fs,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = interfaces.OrNoOp(e.logger)
	if e.tracer == nil {
		e.tracer = otel.Tracer(TracerName)
	}
	if e.license == nil {
		e.license = domainservices.NewLicenseService(e.logger)
	}
	if cfg.Keyring != "" && e.verifier == nil {
		return nil, entities.NewEngineError(entities.KindConfigInvalid, "new engine", cfg.Keyring,
			errors.New("keyring configured without a corpus verifier"))
	}
	e.scanner = NewScanOrchestrator(fs, e.detector, e.logger)

	// Step 1: Base corpus
	templates, err := e.loadTemplates(ctx, cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	corpus, err := e.license.IndexCorpus(templates)
	if err != nil {
		return nil, entities.CorpusInvalidf(cfg.CorpusPath, err)
	}

	// Step 2: Custom corpora, later paths override earlier keys
	for _, path := range cfg.CustomCorpusPaths {
		custom, err := e.loadTemplates(ctx, path)
		if err != nil {
			return nil, err
		}
		corpus, err = e.license.ExtendCorpus(corpus, custom)
		if err != nil {
			return nil, entities.CorpusInvalidf(path, err)
		}
	}

	e.state.Store(&engineState{corpus: corpus, threshold: cfg.Threshold})

	e.logger.Info("engine ready",
		interfaces.F("corpus", cfg.CorpusPath),
		interfaces.F("templates", corpus.Len()),
		interfaces.F("threshold", float64(cfg.Threshold)))
	return e, nil
}

// LoadCustomCorpus adds the templates under path to a new corpus snapshot.
// Scans already running keep the snapshot they started with.
func (e *Engine) LoadCustomCorpus(ctx context.Context, path string) error {
	if _, err := e.current("load custom corpus"); err != nil {
		return err
	}

	templates, err := e.loadTemplates(ctx, path)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state.Load()
	corpus, err := e.license.ExtendCorpus(st.corpus, templates)
	if err != nil {
		return entities.CorpusInvalidf(path, err)
	}
	e.state.Store(&engineState{corpus: corpus, threshold: st.threshold})

	e.logger.Info("custom corpus loaded",
		interfaces.F("path", path),
		interfaces.F("added", len(templates)),
		interfaces.F("templates", corpus.Len()))
	return nil
}

// SetThreshold changes the similarity threshold for scans started afterwards
func (e *Engine) SetThreshold(threshold entities.Threshold) error {
	if _, err := e.current("set threshold"); err != nil {
		return err
	}
	if err := threshold.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state.Load()
	e.state.Store(&engineState{corpus: st.corpus, threshold: threshold})
	return nil
}

// SetThresholdPercent is SetThreshold with an integer percentage (1-100)
func (e *Engine) SetThresholdPercent(percent int) error {
	return e.SetThreshold(entities.ThresholdFromPercent(percent))
}

// Snapshot returns the current corpus and threshold
func (e *Engine) Snapshot() (EngineSnapshot, error) {
	st, err := e.current("snapshot")
	if err != nil {
		return EngineSnapshot{}, err
	}
	return EngineSnapshot{Corpus: st.corpus, Threshold: st.threshold}, nil
}

// Templates lists the templates of the current corpus in key order
func (e *Engine) Templates() ([]entities.TemplateInfo, error) {
	st, err := e.current("templates")
	if err != nil {
		return nil, err
	}

	infos := make([]entities.TemplateInfo, 0, st.corpus.Len())
	for _, t := range st.corpus.Templates() {
		infos = append(infos, t.Template.Info())
	}
	return infos, nil
}

// ScanFile scans one file. A missing file is a NotFound error; any other
// problem (directory, permissions, read failure) is recorded in the
// result's scan errors.
func (e *Engine) ScanFile(ctx context.Context, path string) (*entities.FileScanResult, error) {
	st, err := e.current("scan file")
	if err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "golicense.ScanFile",
		trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	doc, err := e.fs.ReadDocument(ctx, path, e.cfg.MaxScanSize)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			span.SetStatus(codes.Error, "file not found")
			return nil, err
		}
		result := entities.NewFileScanResult(path)
		result.AddError(err.Error())
		return result, nil
	}

	result := e.analyze(ctx, st, doc)
	span.SetAttributes(attribute.Int("licenses.count", len(result.Licenses)))
	return result, nil
}

// ScanContent scans in-memory content reported under name
func (e *Engine) ScanContent(ctx context.Context, name string, content []byte) (*entities.FileScanResult, error) {
	st, err := e.current("scan content")
	if err != nil {
		return nil, err
	}

	doc := &gateways.Document{Path: name, Content: content}
	if int64(len(content)) > e.cfg.MaxScanSize {
		doc.Content = content[:e.cfg.MaxScanSize]
		doc.Truncated = true
	}
	return e.analyze(ctx, st, doc), nil
}

// ScanDirectory scans every file under root with the threshold and corpus
// current at the time of the call
func (e *Engine) ScanDirectory(ctx context.Context, root string, opts entities.DirectoryScanOptions) (*entities.DirectoryScanResult, error) {
	st, err := e.current("scan directory")
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if e.cfg.MaxConcurrency > 0 && opts.Concurrency > e.cfg.MaxConcurrency {
		opts.Concurrency = e.cfg.MaxConcurrency
	}

	ctx, span := e.tracer.Start(ctx, "golicense.ScanDirectory",
		trace.WithAttributes(
			attribute.String("directory.root", root),
			attribute.Bool("scan.recursive", opts.Recursive),
			attribute.Int("scan.concurrency", opts.Concurrency)))
	defer span.End()

	result, err := e.scanner.ScanDirectory(ctx, root, opts, st.threshold, func(ctx context.Context, path string) *entities.FileScanResult {
		return e.scanPath(ctx, st, path)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("files.count", result.Header().FilesCount))
	return result, nil
}

// scanPath is ScanFile against a fixed state; every failure lands in scan errors
func (e *Engine) scanPath(ctx context.Context, st *engineState, path string) *entities.FileScanResult {
	doc, err := e.fs.ReadDocument(ctx, path, e.cfg.MaxScanSize)
	if err != nil {
		result := entities.NewFileScanResult(path)
		result.AddError(err.Error())
		return result
	}
	return e.analyze(ctx, st, doc)
}

func (e *Engine) analyze(ctx context.Context, st *engineState, doc *gateways.Document) *entities.FileScanResult {
	result := entities.NewFileScanResult(doc.Path)
	if domainservices.LooksBinary(doc.Content) {
		e.logger.Debug("skipping binary file", interfaces.F("path", doc.Path))
		return result
	}
	if doc.Truncated {
		e.logger.Debug("file truncated to scan size limit",
			interfaces.F("path", doc.Path),
			interfaces.F("max_scan_size", e.cfg.MaxScanSize))
	}

	key := cacheKey(doc.Content, st)
	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			e.logger.Warn("result cache read failed", interfaces.F("error", err.Error()))
		} else if ok {
			hit := cached.Clone()
			hit.Path = doc.Path
			return hit
		}
	}

	e.license.AnalyzeContent(ctx, doc.Content, st.corpus, st.threshold, result)

	if e.cache != nil && len(result.ScanErrors) == 0 {
		if err := e.cache.Set(ctx, key, result.Clone()); err != nil {
			e.logger.Warn("result cache write failed", interfaces.F("error", err.Error()))
		}
	}
	return result
}

// current returns the published state or ErrEngineNotReady
func (e *Engine) current(op string) (*engineState, error) {
	if e == nil {
		return nil, entities.NewEngineError(entities.KindNotReady, op, "", nil)
	}
	st := e.state.Load()
	if st == nil {
		return nil, entities.NewEngineError(entities.KindNotReady, op, "", nil)
	}
	return st, nil
}

// loadTemplates verifies (when configured) and reads one corpus directory
func (e *Engine) loadTemplates(ctx context.Context, path string) ([]*entities.LicenseTemplate, error) {
	ctx, span := e.tracer.Start(ctx, "golicense.LoadCorpus",
		trace.WithAttributes(attribute.String("corpus.path", path)))
	defer span.End()

	if e.verifier != nil {
		if err := e.verifier.VerifyCorpus(ctx, path); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "corpus verification failed")
			return nil, corpusError(path, fmt.Errorf("verification failed: %w", err))
		}
	}

	templates, err := e.repo.LoadTemplates(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "corpus load failed")
		return nil, corpusError(path, err)
	}

	span.SetAttributes(attribute.Int("corpus.templates", len(templates)))
	return templates, nil
}

// corpusError keeps kinds the repository already assigned
func corpusError(path string, err error) error {
	if entities.KindOf(err) == entities.KindCorpusInvalid {
		return err
	}
	return entities.CorpusInvalidf(path, err)
}

// cacheKey identifies a result by content, corpus and threshold
func cacheKey(content []byte, st *engineState) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]) + "|" + st.corpus.Digest() + "|" +
		strconv.FormatFloat(float64(st.threshold), 'g', -1, 64)
}
