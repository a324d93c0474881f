package office2png

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/officepix/go-office2png/internal/fileutil"
)

// WorkerPool manages a fixed set of soffice execution slots for
// document-to-PDF conversion. A buffered-channel admission gate sized
// to the pool caps the number of concurrent soffice subprocesses;
// because gate capacity equals instance count, an admitted job always
// finds an idle instance.
type WorkerPool struct {
	cfg         PoolConfig
	sofficePath string
	instances   []*workerInstance
	sem         chan struct{}
	baseDir     string
	outputRoot  string
	runner      commandRunner
	logger      *logrus.Logger

	isShutdown     atomic.Bool
	totalProcessed atomic.Uint64
}

// PoolOption configures a WorkerPool.
type PoolOption func(*WorkerPool)

// PoolWithLogger sets the pool's logger.
func PoolWithLogger(logger *logrus.Logger) PoolOption {
	if logger == nil {
		panic("office2png: PoolWithLogger logger must not be nil")
	}
	return func(p *WorkerPool) {
		p.logger = logger
	}
}

// poolWithRunner swaps the subprocess runner. Used by tests to exercise
// the pool without a LibreOffice install.
func poolWithRunner(r commandRunner) PoolOption {
	return func(p *WorkerPool) {
		p.runner = r
	}
}

// NewWorkerPool validates cfg, locates the soffice binary, and creates
// the pool's instances, each with an isolated profile directory.
func NewWorkerPool(cfg PoolConfig, opts ...PoolOption) (*WorkerPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sofficePath, err := locateSoffice(cfg)
	if err != nil {
		return nil, err
	}

	workRoot := cfg.WorkDir
	if workRoot == "" {
		workRoot = os.TempDir()
	}
	baseDir, err := os.MkdirTemp(workRoot, "office2png-")
	if err != nil {
		return nil, fmt.Errorf("creating pool work directory: %w", err)
	}

	outputRoot := filepath.Join(baseDir, "pdfs")
	if err := os.MkdirAll(outputRoot, 0o750); err != nil {
		_ = os.RemoveAll(baseDir)
		return nil, fmt.Errorf("%w: creating %s: %v", ErrOutputDir, outputRoot, err)
	}

	instances := make([]*workerInstance, 0, cfg.PoolSize)
	for i := 0; i < cfg.PoolSize; i++ {
		inst, err := newWorkerInstance(i, baseDir)
		if err != nil {
			_ = os.RemoveAll(baseDir)
			return nil, err
		}
		instances = append(instances, inst)
	}

	p := &WorkerPool{
		cfg:         cfg,
		sofficePath: sofficePath,
		instances:   instances,
		sem:         make(chan struct{}, cfg.PoolSize),
		baseDir:     baseDir,
		outputRoot:  outputRoot,
		runner:      &execRunner{},
		logger:      defaultLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.logger.WithFields(logrus.Fields{
		"pool_size": cfg.PoolSize,
		"soffice":   sofficePath,
	}).Debug("worker pool initialized")

	return p, nil
}

// ConvertToPDF converts one Office document to a PDF and returns the
// intermediate file's path. The caller owns the returned file and
// should remove it when done.
//
// Shutdown, missing-input, and unsupported-format errors are returned
// before an admission slot is consumed.
func (p *WorkerPool) ConvertToPDF(ctx context.Context, inputPath string) (string, error) {
	if p.isShutdown.Load() {
		return "", ErrPoolShutdown
	}
	if !fileutil.FileExists(inputPath) {
		return "", fmt.Errorf("%w: %s", ErrInputNotFound, inputPath)
	}
	if ext := filepath.Ext(inputPath); !IsSupportedExtension(ext) {
		return "", fmt.Errorf("%w: %q (supported: .docx, .doc, .xlsx, .xls)", ErrUnsupportedFormat, ext)
	}

	if err := p.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer p.releaseSlot()

	inst, err := p.claimInstance()
	if err != nil {
		return "", err
	}
	defer inst.release()

	pdfPath, err := p.runConversion(ctx, inst, inputPath)
	if err != nil {
		return "", err
	}

	inst.incrementDocs()
	p.totalProcessed.Add(1)

	return pdfPath, nil
}

// acquireSlot takes one admission slot, blocking until a slot frees,
// ctx is done, or the pool shuts down.
func (p *WorkerPool) acquireSlot(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	// A shutdown may have raced the acquire; don't start new work.
	if p.isShutdown.Load() {
		<-p.sem
		return ErrPoolShutdown
	}
	return nil
}

func (p *WorkerPool) releaseSlot() {
	<-p.sem
}

// claimInstance finds the first idle instance and marks it busy. Gate
// capacity equals instance count, so an admitted job always finds one;
// anything else is an invariant violation surfaced as a typed error.
func (p *WorkerPool) claimInstance() (*workerInstance, error) {
	for _, inst := range p.instances {
		if inst.tryClaim() {
			return inst, nil
		}
	}
	return nil, fmt.Errorf("%w: all %d instances busy", ErrPoolExhausted, p.cfg.PoolSize)
}

// runConversion executes soffice for one job inside a fresh,
// uuid-named output directory, bounded by the configured timeout.
// On timeout the subprocess group is killed before returning.
func (p *WorkerPool) runConversion(ctx context.Context, inst *workerInstance, inputPath string) (string, error) {
	start := time.Now()

	jobDir := filepath.Join(p.outputRoot, uuid.NewString())
	if err := os.MkdirAll(jobDir, 0o750); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrOutputDir, jobDir, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	args := sofficeArgs(inst.profileDir, jobDir, inputPath)
	_, stderr, err := p.runner.Run(runCtx, p.sofficePath, args...)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			p.logger.WithFields(logrus.Fields{
				"instance": inst.id,
				"input":    inputPath,
				"timeout":  p.cfg.Timeout,
			}).Error("conversion timed out, subprocess killed")
			return "", fmt.Errorf("%w: %s after %s", ErrConversionTimeout, inputPath, p.cfg.Timeout)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s: %s", ErrConversionFailed, inputPath, msg)
	}

	pdfPath, err := findProducedPDF(jobDir, inputPath)
	if err != nil {
		return "", err
	}

	p.logger.WithFields(logrus.Fields{
		"instance": inst.id,
		"input":    filepath.Base(inputPath),
		"duration": time.Since(start),
	}).Debug("converted document to PDF")

	return pdfPath, nil
}

// findProducedPDF locates the PDF soffice wrote. The expected name is
// the input stem; soffice occasionally normalizes names, so fall back
// to scanning the job directory for any PDF.
func findProducedPDF(jobDir, inputPath string) (string, error) {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	expected := filepath.Join(jobDir, stem+".pdf")
	if fileutil.FileExists(expected) {
		return expected, nil
	}

	entries, err := os.ReadDir(jobDir)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				return filepath.Join(jobDir, entry.Name()), nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrMissingOutput, inputPath)
}

// Health returns a point-in-time snapshot of the pool. Each instance
// is inspected under its own lock; no global lock is needed since the
// fields are independent per instance.
func (p *WorkerPool) Health() PoolHealth {
	instances := make([]InstanceHealth, 0, len(p.instances))
	for _, inst := range p.instances {
		instances = append(instances, InstanceHealth{
			ID:             inst.id,
			DocsProcessed:  int(inst.processed()),
			Busy:           inst.isBusy(),
			NeedsRecycling: inst.needsRecycling(p.cfg.MaxDocsPerInstance),
		})
	}

	return PoolHealth{
		PoolSize:       p.cfg.PoolSize,
		TotalProcessed: int(p.totalProcessed.Load()),
		Shutdown:       p.isShutdown.Load(),
		Instances:      instances,
	}
}

// TotalProcessed returns the number of documents the pool has
// converted since creation.
func (p *WorkerPool) TotalProcessed() int {
	return int(p.totalProcessed.Load())
}

// Shutdown makes future admissions fail fast. In-flight jobs run to
// completion; workspace directories remain until Close.
func (p *WorkerPool) Shutdown() {
	if p.isShutdown.CompareAndSwap(false, true) {
		p.logger.Debug("worker pool shutting down")
	}
}

// Close shuts the pool down and removes all instance profile
// directories and intermediate files.
// Returns an aggregated error if multiple directories fail to remove.
func (p *WorkerPool) Close() error {
	p.Shutdown()

	var errs []error
	for _, inst := range p.instances {
		if err := inst.cleanup(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := os.RemoveAll(p.baseDir); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PoolHealth is a snapshot of pool state, not live state.
type PoolHealth struct {
	PoolSize       int
	TotalProcessed int
	Shutdown       bool
	Instances      []InstanceHealth
}

// InstanceHealth is a snapshot of one instance.
type InstanceHealth struct {
	ID             int
	DocsProcessed  int
	Busy           bool
	NeedsRecycling bool
}
