package office2png

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Pool: PoolConfig{
			PoolSize:           2,
			Timeout:            5 * time.Second,
			MaxDocsPerInstance: 100,
			WorkDir:            t.TempDir(),
			SofficePath:        fakeSofficePath(t),
		},
		Render: RenderConfig{
			DPI:           72,
			EncodeWorkers: 2,
			Compression:   1,
			Background:    White,
		},
	}
}

func newTestConverter(t *testing.T, cfg Config, pages int) *Converter {
	t.Helper()
	conv, err := NewConverter(cfg,
		withRunner(&fakeRunner{}),
		withRasterizer(&fakeRasterizer{pages: letterPages(pages)}),
	)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })
	return conv
}

func TestConvert(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, testConfig(t), 3)
	outDir := filepath.Join(t.TempDir(), "out")

	result, err := conv.Convert(context.Background(), ConversionRequest{
		InputPath: fakeInput(t, "report.docx"),
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if result.PageCount != 3 || len(result.OutputPaths) != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	for i, path := range result.OutputPaths {
		want := filepath.Join(outDir, fmt.Sprintf("report_page_%04d.png", i+1))
		if path != want {
			t.Errorf("OutputPaths[%d] = %q, want %q", i, path, want)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("output missing: %v", err)
		}
	}
	if result.Duration <= 0 {
		t.Error("Duration not recorded")
	}
}

func TestConvert_DPIOverride(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, testConfig(t), 1)

	t.Run("valid override", func(t *testing.T) {
		result, err := conv.Convert(context.Background(), ConversionRequest{
			InputPath:   fakeInput(t, "hires.docx"),
			OutputDir:   t.TempDir(),
			DPIOverride: 300,
		})
		if err != nil {
			t.Fatalf("Convert: %v", err)
		}
		if result.PageCount != 1 {
			t.Fatalf("PageCount = %d, want 1", result.PageCount)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := conv.Convert(context.Background(), ConversionRequest{
			InputPath:   fakeInput(t, "bad.docx"),
			OutputDir:   t.TempDir(),
			DPIOverride: 5000,
		})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("got %v, want ErrInvalidConfig", err)
		}
	})
}

func TestConvertBatch_PartialFailure(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, testConfig(t), 2)
	outDir := t.TempDir()

	first := fakeInput(t, "first.docx")
	missing := filepath.Join(t.TempDir(), "missing.docx")
	last := fakeInput(t, "last.xlsx")

	batch := conv.ConvertBatch(context.Background(), []ConversionRequest{
		{InputPath: first, OutputDir: outDir},
		{InputPath: missing, OutputDir: outDir},
		{InputPath: last, OutputDir: outDir},
	})

	if len(batch.Successful)+len(batch.Failed) != 3 {
		t.Fatalf("results don't cover all requests: %+v", batch)
	}
	if len(batch.Successful) != 2 || len(batch.Failed) != 1 {
		t.Fatalf("got %d successful, %d failed, want 2/1",
			len(batch.Successful), len(batch.Failed))
	}

	// Sequential batches preserve input order.
	if batch.Successful[0].InputPath != first || batch.Successful[1].InputPath != last {
		t.Errorf("order not preserved: %+v", batch.Successful)
	}
	if batch.Failed[0].InputPath != missing {
		t.Errorf("Failed[0].InputPath = %q, want %q", batch.Failed[0].InputPath, missing)
	}
	if batch.TotalPages != 4 {
		t.Errorf("TotalPages = %d, want 4", batch.TotalPages)
	}
}

func TestConvertBatch_ProcessingOrder(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	conv, err := NewConverter(testConfig(t),
		withRunner(runner),
		withRasterizer(&fakeRasterizer{pages: letterPages(1)}),
	)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })

	inputs := []string{
		fakeInput(t, "a.docx"),
		fakeInput(t, "b.doc"),
		fakeInput(t, "c.xlsx"),
		fakeInput(t, "d.xls"),
		fakeInput(t, "e.docx"),
	}
	requests := make([]ConversionRequest, len(inputs))
	for i, in := range inputs {
		requests[i] = ConversionRequest{InputPath: in, OutputDir: t.TempDir()}
	}

	batch := conv.ConvertBatch(context.Background(), requests)
	if len(batch.Successful) != len(inputs) {
		t.Fatalf("got %d successful, want %d: %+v", len(batch.Successful), len(inputs), batch.Failed)
	}

	// Sequential batches process and report in input order.
	seen := runner.seenInputs()
	for i, in := range inputs {
		if seen[i] != in {
			t.Errorf("processed[%d] = %q, want %q", i, seen[i], in)
		}
		if batch.Successful[i].InputPath != in {
			t.Errorf("Successful[%d].InputPath = %q, want %q", i, batch.Successful[i].InputPath, in)
		}
	}
}

func TestConvertBatch_Canceled(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, testConfig(t), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := conv.ConvertBatch(ctx, []ConversionRequest{
		{InputPath: fakeInput(t, "a.docx"), OutputDir: t.TempDir()},
		{InputPath: fakeInput(t, "b.docx"), OutputDir: t.TempDir()},
	})

	if len(batch.Successful) != 0 || len(batch.Failed) != 2 {
		t.Errorf("got %d successful, %d failed, want 0/2",
			len(batch.Successful), len(batch.Failed))
	}
}

func TestConvertBatchWithProgress(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, testConfig(t), 2)

	var events []ConversionProgress
	batch := conv.ConvertBatchWithProgress(context.Background(),
		[]ConversionRequest{{InputPath: fakeInput(t, "doc.docx"), OutputDir: t.TempDir()}},
		func(p ConversionProgress) { events = append(events, p) },
	)

	if len(batch.Failed) != 0 {
		t.Fatalf("unexpected failures: %+v", batch.Failed)
	}
	if len(events) < 4 {
		t.Fatalf("got %d events, want at least 4", len(events))
	}

	if events[0].Stage != StageQueued {
		t.Errorf("first stage = %v, want StageQueued", events[0].Stage)
	}
	if events[1].Stage != StageConvertingToPDF {
		t.Errorf("second stage = %v, want StageConvertingToPDF", events[1].Stage)
	}
	last := events[len(events)-1]
	if last.Stage != StageCompleted || !last.Stage.Terminal() {
		t.Errorf("last stage = %v, want terminal StageCompleted", last.Stage)
	}
	if last.PagesCompleted != 2 || last.TotalPages != 2 {
		t.Errorf("final progress %d/%d, want 2/2", last.PagesCompleted, last.TotalPages)
	}

	// Page progress must be monotonically non-decreasing.
	prev := 0
	for _, e := range events {
		if e.Stage == StageRenderingPages {
			if e.PagesCompleted < prev {
				t.Errorf("pages completed went backwards: %d after %d", e.PagesCompleted, prev)
			}
			prev = e.PagesCompleted
		}
	}
}

func TestConvertBatchWithProgress_FailureStage(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, testConfig(t), 1)

	var events []ConversionProgress
	batch := conv.ConvertBatchWithProgress(context.Background(),
		[]ConversionRequest{{
			InputPath: filepath.Join(t.TempDir(), "missing.docx"),
			OutputDir: t.TempDir(),
		}},
		func(p ConversionProgress) { events = append(events, p) },
	)

	if len(batch.Failed) != 1 {
		t.Fatalf("got %d failed, want 1", len(batch.Failed))
	}
	last := events[len(events)-1]
	if last.Stage != StageFailed {
		t.Errorf("last stage = %v, want StageFailed", last.Stage)
	}
}

func TestConvertParallel(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, testConfig(t), 1)
	outDir := t.TempDir()

	requests := make([]ConversionRequest, 5)
	for i := range requests {
		requests[i] = ConversionRequest{
			InputPath: fakeInput(t, fmt.Sprintf("doc-%d.docx", i)),
			OutputDir: outDir,
			Prefix:    fmt.Sprintf("doc-%d", i),
		}
	}

	batch := conv.ConvertParallel(context.Background(), requests, 2)

	if len(batch.Successful) != 5 || len(batch.Failed) != 0 {
		t.Fatalf("got %d successful, %d failed, want 5/0",
			len(batch.Successful), len(batch.Failed))
	}
	for i, result := range batch.Successful {
		if result.InputPath != requests[i].InputPath {
			t.Errorf("order not preserved at %d: %q", i, result.InputPath)
		}
	}
	if batch.TotalPages != 5 {
		t.Errorf("TotalPages = %d, want 5", batch.TotalPages)
	}
}

func TestConvertStream(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, testConfig(t), 3)
	outDir := filepath.Join(t.TempDir(), "out")

	stream, err := conv.ConvertStream(context.Background(), ConversionRequest{
		InputPath: fakeInput(t, "stream.docx"),
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatalf("ConvertStream: %v", err)
	}
	defer func() { _ = stream.Close() }()

	if stream.Len() != 3 {
		t.Errorf("Len = %d, want 3", stream.Len())
	}

	var got []int
	for stream.Next() {
		page := stream.Page()
		got = append(got, page.PageNumber)

		// Each page lands on disk before the next is rendered.
		want := filepath.Join(outDir, fmt.Sprintf("stream_page_%04d.png", page.PageNumber))
		if page.OutputPath != want {
			t.Errorf("OutputPath = %q, want %q", page.OutputPath, want)
		}
		info, err := os.Stat(page.OutputPath)
		if err != nil {
			t.Fatalf("page not written: %v", err)
		}
		if info.Size() == 0 {
			t.Errorf("empty file at %s", page.OutputPath)
		}
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("page numbers = %v, want [1 2 3]", got)
	}

	stats := conv.Stats()
	if stats.DocumentsConverted != 1 || stats.DocumentsFailed != 0 || stats.PagesRendered != 3 {
		t.Errorf("unexpected stats after exhaustion: %+v", stats)
	}
}

func TestConvertStream_FailureCountsAsFailed(t *testing.T) {
	t.Parallel()

	conv, err := NewConverter(testConfig(t),
		withRunner(&fakeRunner{}),
		withRasterizer(&fakeRasterizer{
			pages:     letterPages(2),
			renderErr: errors.New("damaged page"),
		}),
	)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })

	stream, err := conv.ConvertStream(context.Background(), ConversionRequest{
		InputPath: fakeInput(t, "broken.docx"),
		OutputDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("ConvertStream: %v", err)
	}
	defer func() { _ = stream.Close() }()

	if stream.Next() {
		t.Fatal("Next succeeded on a failing document")
	}
	if stream.Err() == nil {
		t.Fatal("Err is nil after render failure")
	}

	stats := conv.Stats()
	if stats.DocumentsConverted != 0 || stats.DocumentsFailed != 1 {
		t.Errorf("unexpected stats after failure: %+v", stats)
	}
}

func TestConverterStats(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, testConfig(t), 2)
	outDir := t.TempDir()

	if _, err := conv.Convert(context.Background(), ConversionRequest{
		InputPath: fakeInput(t, "ok.docx"), OutputDir: outDir,
	}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	_, _ = conv.Convert(context.Background(), ConversionRequest{
		InputPath: filepath.Join(t.TempDir(), "missing.docx"), OutputDir: outDir,
	})

	stats := conv.Stats()
	if stats.DocumentsConverted != 1 || stats.DocumentsFailed != 1 || stats.PagesRendered != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	health := conv.Health()
	if health.PoolSize != 2 || health.TotalProcessed != 1 {
		t.Errorf("unexpected health: %+v", health)
	}
}

func TestConverter_CloseStopsAdmission(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	conv, err := NewConverter(cfg,
		withRunner(&fakeRunner{}),
		withRasterizer(&fakeRasterizer{pages: letterPages(1)}),
	)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	if err := conv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err = conv.Convert(context.Background(), ConversionRequest{
		InputPath: fakeInput(t, "late.docx"),
		OutputDir: t.TempDir(),
	})
	if !errors.Is(err, ErrPoolShutdown) {
		t.Errorf("got %v, want ErrPoolShutdown", err)
	}
}
