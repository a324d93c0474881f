package office2png

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/officepix/go-office2png/internal/fileutil"
)

// Converter is the end-to-end pipeline: Office document to PDF via the
// worker pool, then PDF to PNG pages via the renderer. Safe for
// concurrent use.
type Converter struct {
	cfg      Config
	pool     *WorkerPool
	renderer *Renderer
	logger   *logrus.Logger

	// test seams, nil in production
	runner commandRunner
	raster rasterizer

	documentsConverted atomic.Uint64
	documentsFailed    atomic.Uint64
	pagesRendered      atomic.Uint64
}

// withRunner swaps the pool's subprocess runner. Used by tests.
func withRunner(r commandRunner) Option {
	return func(c *Converter) {
		c.runner = r
	}
}

// withRasterizer swaps the renderer's PDF engine. Used by tests.
func withRasterizer(r rasterizer) Option {
	return func(c *Converter) {
		c.raster = r
	}
}

// NewConverter validates cfg, starts the worker pool, and builds the
// renderer. Callers must Close the converter to release the pool's
// work directory.
func NewConverter(cfg Config, opts ...Option) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Converter{
		cfg:    cfg,
		logger: defaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	poolOpts := []PoolOption{PoolWithLogger(c.logger)}
	if c.runner != nil {
		poolOpts = append(poolOpts, poolWithRunner(c.runner))
	}
	pool, err := NewWorkerPool(cfg.Pool, poolOpts...)
	if err != nil {
		return nil, err
	}

	rendererOpts := []RendererOption{RendererWithLogger(c.logger)}
	if c.raster != nil {
		rendererOpts = append(rendererOpts, rendererWithRasterizer(c.raster))
	}
	renderer, err := NewRenderer(cfg.Render, rendererOpts...)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}

	c.pool = pool
	c.renderer = renderer
	return c, nil
}

// rendererFor returns the renderer honoring a per-request DPI override.
func (c *Converter) rendererFor(req *ConversionRequest) (*Renderer, error) {
	if req.DPIOverride == 0 {
		return c.renderer, nil
	}
	if req.DPIOverride < MinDPI || req.DPIOverride > MaxDPI {
		return nil, fmt.Errorf("%w: dpi must be between %d and %d, got %d",
			ErrInvalidConfig, MinDPI, MaxDPI, req.DPIOverride)
	}
	return c.renderer.WithDPI(req.DPIOverride), nil
}

// Convert runs one document through both stages and writes the PNG
// pages to req.OutputDir. The intermediate PDF is removed best-effort
// after rendering.
func (c *Converter) Convert(ctx context.Context, req ConversionRequest) (*FileResult, error) {
	start := time.Now()

	result, err := c.convert(ctx, req)
	if err != nil {
		c.documentsFailed.Add(1)
		return nil, err
	}

	result.Duration = time.Since(start)
	c.documentsConverted.Add(1)
	c.pagesRendered.Add(uint64(result.PageCount))
	return result, nil
}

func (c *Converter) convert(ctx context.Context, req ConversionRequest) (*FileResult, error) {
	renderer, err := c.rendererFor(&req)
	if err != nil {
		return nil, err
	}

	pdfPath, err := c.pool.ConvertToPDF(ctx, req.InputPath)
	if err != nil {
		return nil, err
	}
	defer c.removeIntermediatePDF(pdfPath)

	pages, err := renderer.RenderAndSave(pdfPath, req.OutputDir, req.OutputPrefix())
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(pages))
	for i, page := range pages {
		paths[i] = page.OutputPath
	}

	return &FileResult{
		InputPath:   req.InputPath,
		OutputPaths: paths,
		PageCount:   len(pages),
	}, nil
}

// ConvertBatch converts requests sequentially in input order. A failed
// file is recorded and the batch continues; every request lands in
// either Successful or Failed.
func (c *Converter) ConvertBatch(ctx context.Context, requests []ConversionRequest) *BatchResult {
	return c.convertBatch(ctx, requests, nil)
}

// ConvertBatchWithProgress is ConvertBatch with per-stage and per-page
// progress callbacks.
func (c *Converter) ConvertBatchWithProgress(ctx context.Context, requests []ConversionRequest, progress ProgressFunc) *BatchResult {
	return c.convertBatch(ctx, requests, progress)
}

func (c *Converter) convertBatch(ctx context.Context, requests []ConversionRequest, progress ProgressFunc) *BatchResult {
	start := time.Now()
	batch := &BatchResult{}

	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			// Cancellation fails the remaining files rather than
			// dropping them from the result.
			batch.Failed = append(batch.Failed, FailedFile{
				InputPath: req.InputPath,
				Error:     err.Error(),
			})
			continue
		}

		var (
			result *FileResult
			err    error
		)
		if progress != nil {
			result, err = c.convertWithProgress(ctx, req, i, len(requests), progress)
		} else {
			result, err = c.Convert(ctx, req)
		}

		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"input": req.InputPath,
			}).WithError(err).Warn("batch file failed")
			batch.Failed = append(batch.Failed, FailedFile{
				InputPath: req.InputPath,
				Error:     err.Error(),
			})
			continue
		}

		batch.Successful = append(batch.Successful, *result)
		batch.TotalPages += result.PageCount
	}

	batch.TotalDuration = time.Since(start)
	return batch
}

// convertWithProgress converts one file via the lazy page iterator so
// the callback sees pages as they complete.
func (c *Converter) convertWithProgress(ctx context.Context, req ConversionRequest, index, total int, progress ProgressFunc) (result *FileResult, err error) {
	start := time.Now()

	report := func(stage Stage, pagesDone, totalPages int) {
		progress(ConversionProgress{
			FileIndex:      index,
			TotalFiles:     total,
			CurrentFile:    req.InputPath,
			PagesCompleted: pagesDone,
			TotalPages:     totalPages,
			Stage:          stage,
		})
	}

	defer func() {
		if err != nil {
			c.documentsFailed.Add(1)
			report(StageFailed, 0, 0)
		}
	}()

	report(StageQueued, 0, 0)

	renderer, err := c.rendererFor(&req)
	if err != nil {
		return nil, err
	}

	report(StageConvertingToPDF, 0, 0)
	pdfPath, err := c.pool.ConvertToPDF(ctx, req.InputPath)
	if err != nil {
		return nil, err
	}
	defer c.removeIntermediatePDF(pdfPath)

	if err = fileutil.EnsureDir(req.OutputDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	it, err := renderer.PagesIterator(pdfPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	totalPages := it.Len()
	prefix := req.OutputPrefix()
	paths := make([]string, 0, totalPages)

	report(StageRenderingPages, 0, totalPages)
	for {
		page, nextErr := it.Next()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			err = nextErr
			return nil, err
		}

		path := pageOutputPath(req.OutputDir, prefix, page.PageNumber)
		if err = os.WriteFile(path, page.Data, 0o600); err != nil {
			err = fmt.Errorf("%w: writing %s: %v", ErrOutputDir, path, err)
			return nil, err
		}
		paths = append(paths, path)
		report(StageRenderingPages, len(paths), totalPages)
	}

	report(StageCompleted, totalPages, totalPages)

	c.documentsConverted.Add(1)
	c.pagesRendered.Add(uint64(totalPages))

	return &FileResult{
		InputPath:   req.InputPath,
		OutputPaths: paths,
		PageCount:   totalPages,
		Duration:    time.Since(start),
	}, nil
}

// ConvertParallel converts requests concurrently, at most maxConcurrent
// at a time. Results keep input order within Successful and Failed.
// maxConcurrent below 1 means the pool size.
func (c *Converter) ConvertParallel(ctx context.Context, requests []ConversionRequest, maxConcurrent int) *BatchResult {
	start := time.Now()

	if maxConcurrent < 1 {
		maxConcurrent = c.cfg.Pool.PoolSize
	}

	type outcome struct {
		result *FileResult
		err    error
	}
	outcomes := make([]outcome, len(requests))

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := c.Convert(ctx, requests[i])
			outcomes[i] = outcome{result: result, err: err}
		}(i)
	}
	wg.Wait()

	batch := &BatchResult{TotalDuration: time.Since(start)}
	for i, out := range outcomes {
		if out.err != nil {
			batch.Failed = append(batch.Failed, FailedFile{
				InputPath: requests[i].InputPath,
				Error:     out.err.Error(),
			})
			continue
		}
		batch.Successful = append(batch.Successful, *out.result)
		batch.TotalPages += out.result.PageCount
	}
	return batch
}

// PageStream yields the pages of one document as they are rendered,
// scanner style:
//
//	stream, err := conv.ConvertStream(ctx, req)
//	defer stream.Close()
//	for stream.Next() {
//	    page := stream.Page()
//	}
//	if err := stream.Err(); err != nil { ... }
type PageStream struct {
	conv    *Converter
	it      *PageIterator
	cleanup func()
	outDir  string
	prefix  string
	page    *Page
	err     error
	done    bool
}

// ConvertStream converts the document to PDF, then returns a stream of
// rendered pages. Each page is written to req.OutputDir as it is
// produced, with its OutputPath recorded. The intermediate PDF is
// removed when the stream is closed. A stream abandoned before
// exhaustion counts as neither converted nor failed in Stats.
func (c *Converter) ConvertStream(ctx context.Context, req ConversionRequest) (*PageStream, error) {
	renderer, err := c.rendererFor(&req)
	if err != nil {
		return nil, err
	}

	pdfPath, err := c.pool.ConvertToPDF(ctx, req.InputPath)
	if err != nil {
		c.documentsFailed.Add(1)
		return nil, err
	}

	if err := fileutil.EnsureDir(req.OutputDir); err != nil {
		c.documentsFailed.Add(1)
		c.removeIntermediatePDF(pdfPath)
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	it, err := renderer.PagesIterator(pdfPath)
	if err != nil {
		c.documentsFailed.Add(1)
		c.removeIntermediatePDF(pdfPath)
		return nil, err
	}

	return &PageStream{
		conv:    c,
		it:      it,
		cleanup: func() { c.removeIntermediatePDF(pdfPath) },
		outDir:  req.OutputDir,
		prefix:  req.OutputPrefix(),
	}, nil
}

// Next advances to the next page, writing it to disk. It returns false
// at the end of the document or on error; check Err after the loop.
func (s *PageStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	page, err := s.it.Next()
	if err == io.EOF {
		s.done = true
		s.conv.documentsConverted.Add(1)
		return false
	}
	if err != nil {
		s.fail(err)
		return false
	}

	path := pageOutputPath(s.outDir, s.prefix, page.PageNumber)
	if err := os.WriteFile(path, page.Data, 0o600); err != nil {
		s.fail(fmt.Errorf("%w: writing %s: %v", ErrOutputDir, path, err))
		return false
	}
	page.OutputPath = path

	s.conv.pagesRendered.Add(1)
	s.page = page
	return true
}

func (s *PageStream) fail(err error) {
	s.err = err
	s.conv.documentsFailed.Add(1)
}

// Page returns the page produced by the last successful Next.
func (s *PageStream) Page() *Page {
	return s.page
}

// Len returns the total number of pages in the document.
func (s *PageStream) Len() int {
	return s.it.Len()
}

// Err returns the first error encountered while streaming.
func (s *PageStream) Err() error {
	return s.err
}

// Close releases the document handle and removes the intermediate PDF.
// Safe to call twice.
func (s *PageStream) Close() error {
	err := s.it.Close()
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	return err
}

// ConverterStats is a snapshot of lifetime pipeline counters.
type ConverterStats struct {
	DocumentsConverted int
	DocumentsFailed    int
	PagesRendered      int
}

// Stats returns lifetime counters for this converter.
func (c *Converter) Stats() ConverterStats {
	return ConverterStats{
		DocumentsConverted: int(c.documentsConverted.Load()),
		DocumentsFailed:    int(c.documentsFailed.Load()),
		PagesRendered:      int(c.pagesRendered.Load()),
	}
}

// Health reports the worker pool's current state.
func (c *Converter) Health() PoolHealth {
	return c.pool.Health()
}

// DocumentInfo inspects an already-converted PDF without rendering.
func (c *Converter) DocumentInfo(pdfPath string) (*DocumentInfo, error) {
	return c.renderer.DocumentInfo(pdfPath)
}

// Shutdown stops admission of new conversions. In-flight conversions
// finish.
func (c *Converter) Shutdown() {
	c.pool.Shutdown()
}

// Close shuts down the pool and removes its work directory.
func (c *Converter) Close() error {
	c.Shutdown()
	return c.pool.Close()
}

func (c *Converter) removeIntermediatePDF(path string) {
	if err := os.Remove(path); err != nil {
		c.logger.WithFields(logrus.Fields{
			"path": path,
		}).WithError(err).Warn("failed to remove intermediate pdf")
	}
}
