// Package office2png converts Office documents to PNG page images.
//
// Conversion runs as a two-stage pipeline: a pool of LibreOffice
// (soffice) subprocesses turns each document into an intermediate PDF,
// then a MuPDF-backed renderer rasterizes the PDF pages and encodes
// them to PNG on a bounded worker pool.
//
// # Quick Start
//
// Create a converter, convert a document, and close when done:
//
//	conv, err := office2png.NewConverter(office2png.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, office2png.ConversionRequest{
//	    InputPath: "report.docx",
//	    OutputDir: "./pages",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("rendered %d pages\n", result.PageCount)
//
// # Conversion Pipeline
//
// The pipeline has two stages:
//
//  1. Document to PDF via a soffice subprocess. Each pool instance owns
//     an isolated user-profile directory so instances can run in
//     parallel, and a counting admission gate caps the number of
//     concurrent subprocesses at the pool size.
//  2. PDF to PNG via go-fitz. Pages rasterize sequentially (the
//     document handle is not safe for concurrent use) and PNG encoding
//     fans out to a fixed-size worker pool.
//
// # Batch Processing
//
// ConvertBatch processes requests one at a time in input order and
// never aborts on a failing item; ConvertParallel keeps up to
// concurrency requests in flight, which then contend for the pool's
// admission gate. ConvertBatchWithProgress reports per-file and
// per-page progress through a synchronous callback, and ConvertStream
// yields pages one at a time so callers can consume page 1 before the
// last page is rendered.
package office2png
