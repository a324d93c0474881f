package office2png

import (
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/officepix/go-office2png/internal/fileutil"
)

// rasterizer abstracts the PDF engine to enable testing without MuPDF.
type rasterizer interface {
	Open(path string) (documentHandle, error)
}

// documentHandle is an open PDF document. Handles are not safe for
// concurrent use: pages must be rasterized sequentially.
type documentHandle interface {
	NumPages() int
	PageSize(index int) (widthPoints, heightPoints float64, err error)
	RenderPage(index int, dpi float64) (*image.RGBA, error)
	Close() error
}

// Renderer rasterizes PDF pages and encodes them to PNG. Rasterization
// is sequential per document; encoding fans out to a bounded worker
// pool.
type Renderer struct {
	cfg    RenderConfig
	raster rasterizer
	logger *logrus.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// RendererWithLogger sets the renderer's logger.
func RendererWithLogger(logger *logrus.Logger) RendererOption {
	if logger == nil {
		panic("office2png: RendererWithLogger logger must not be nil")
	}
	return func(r *Renderer) {
		r.logger = logger
	}
}

// rendererWithRasterizer swaps the PDF engine. Used by tests.
func rendererWithRasterizer(raster rasterizer) RendererOption {
	return func(r *Renderer) {
		r.raster = raster
	}
}

// NewRenderer validates cfg and creates a renderer backed by go-fitz.
func NewRenderer(cfg RenderConfig, opts ...RendererOption) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		cfg:    cfg,
		raster: fitzRasterizer{},
		logger: defaultLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// DPI returns the configured output resolution.
func (r *Renderer) DPI() int {
	return r.cfg.DPI
}

// WithDPI returns a renderer sharing this renderer's engine and
// settings but rendering at a different DPI.
func (r *Renderer) WithDPI(dpi int) *Renderer {
	clone := *r
	clone.cfg.DPI = dpi
	return &clone
}

// rawPage is a rasterized but not yet encoded page.
type rawPage struct {
	pageNumber int
	img        *image.RGBA
}

// RenderAllPages rasterizes every page of the PDF and encodes them to
// PNG. An empty document yields an empty slice and no error.
func (r *Renderer) RenderAllPages(pdfPath string) ([]Page, error) {
	start := time.Now()

	doc, err := r.raster.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = doc.Close() }()

	pageCount := doc.NumPages()
	if pageCount == 0 {
		return []Page{}, nil
	}

	// The document handle is not safe for concurrent use, so collect
	// raw buffers sequentially and parallelize only the encode stage.
	raws := make([]rawPage, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		img, err := r.rasterizePage(doc, i)
		if err != nil {
			return nil, err
		}
		raws = append(raws, rawPage{pageNumber: i + 1, img: img})
	}

	pages, err := r.encodePages(raws)
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"pages":    pageCount,
		"dpi":      r.cfg.DPI,
		"duration": time.Since(start),
	}).Debug("rendered document")

	return pages, nil
}

// RenderAndSave renders all pages and writes each to
// outDir/<prefix>_page_NNNN.png (4-digit, 1-indexed), recording the
// written path on the page.
func (r *Renderer) RenderAndSave(pdfPath, outDir, prefix string) ([]Page, error) {
	if err := fileutil.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	pages, err := r.RenderAllPages(pdfPath)
	if err != nil {
		return nil, err
	}

	for i := range pages {
		path := pageOutputPath(outDir, prefix, pages[i].PageNumber)
		if err := os.WriteFile(path, pages[i].Data, 0o600); err != nil {
			return nil, fmt.Errorf("%w: writing %s: %v", ErrOutputDir, path, err)
		}
		pages[i].OutputPath = path
	}

	return pages, nil
}

// PagesIterator returns a lazy page-by-page iterator over the PDF. The
// iterator holds an open document handle, so it is not restartable
// once partially consumed; callers must Close it.
func (r *Renderer) PagesIterator(pdfPath string) (*PageIterator, error) {
	doc, err := r.raster.Open(pdfPath)
	if err != nil {
		return nil, err
	}

	return &PageIterator{
		renderer: r,
		doc:      doc,
		total:    doc.NumPages(),
	}, nil
}

// rasterizePage renders one page to an RGBA buffer at the configured
// DPI, compositing over the background color when alpha is disabled.
func (r *Renderer) rasterizePage(doc documentHandle, index int) (*image.RGBA, error) {
	img, err := doc.RenderPage(index, float64(r.cfg.DPI))
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrRenderFailed, index+1, err)
	}

	if !r.cfg.Alpha {
		applyBackground(img, r.cfg.Background)
	}
	return img, nil
}

// renderSinglePage rasterizes and encodes one page. Used by the
// iterator path, where pages are produced one at a time.
func (r *Renderer) renderSinglePage(doc documentHandle, index int) (*Page, error) {
	img, err := r.rasterizePage(doc, index)
	if err != nil {
		return nil, err
	}

	data, err := encodePNG(img, r.cfg.clampedCompression())
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &Page{
		PageNumber: index + 1,
		Data:       data,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}, nil
}

// applyBackground composites semi-transparent pixels over bg using
// result = src*alpha + bg*(1-alpha), then forces full opacity.
func applyBackground(img *image.RGBA, bg RGB) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		if a == 255 {
			continue
		}
		alpha := float64(a) / 255.0
		inv := 1.0 - alpha
		pix[i+0] = uint8(float64(pix[i+0])*alpha + float64(bg.R)*inv)
		pix[i+1] = uint8(float64(pix[i+1])*alpha + float64(bg.G)*inv)
		pix[i+2] = uint8(float64(pix[i+2])*alpha + float64(bg.B)*inv)
		pix[i+3] = 255
	}
}

// pageOutputPath builds outDir/<prefix>_page_NNNN.png. Page numbers
// are 1-indexed.
func pageOutputPath(outDir, prefix string, pageNumber int) string {
	return filepath.Join(outDir, fmt.Sprintf("%s_page_%04d.png", prefix, pageNumber))
}

// pixelDim converts a dimension in PDF points to pixels at the given
// DPI: round(points * dpi / 72).
func pixelDim(points float64, dpi int) int {
	return int(math.Round(points * float64(dpi) / 72.0))
}

// PageIterator yields pages of one document lazily, rendering each on
// demand. The total page count is known up front via Len.
type PageIterator struct {
	renderer *Renderer
	doc      documentHandle
	current  int
	total    int
	closed   bool
}

// Len returns the total number of pages in the document.
func (it *PageIterator) Len() int {
	return it.total
}

// Next renders and returns the next page. It returns io.EOF after the
// last page and ErrIteratorClosed after Close.
func (it *PageIterator) Next() (*Page, error) {
	if it.closed {
		return nil, ErrIteratorClosed
	}
	if it.current >= it.total {
		return nil, io.EOF
	}

	page, err := it.renderer.renderSinglePage(it.doc, it.current)
	if err != nil {
		return nil, err
	}
	it.current++
	return page, nil
}

// Close releases the underlying document handle. Safe to call twice.
func (it *PageIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.doc.Close()
}

// DocumentInfo describes a PDF without rendering it.
type DocumentInfo struct {
	PageCount int
	Pages     []PageInfo
}

// PageInfo holds one page's dimensions in PDF points (1/72 inch).
type PageInfo struct {
	PageNumber   int
	WidthPoints  float64
	HeightPoints float64
}

// WidthPixels returns the page width in pixels at the given DPI.
func (p PageInfo) WidthPixels(dpi int) int {
	return pixelDim(p.WidthPoints, dpi)
}

// HeightPixels returns the page height in pixels at the given DPI.
func (p PageInfo) HeightPixels(dpi int) int {
	return pixelDim(p.HeightPoints, dpi)
}

// DocumentInfo inspects a PDF's page count and page sizes without
// rasterizing anything.
func (r *Renderer) DocumentInfo(pdfPath string) (*DocumentInfo, error) {
	doc, err := r.raster.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = doc.Close() }()

	pageCount := doc.NumPages()
	pages := make([]PageInfo, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		w, h, err := doc.PageSize(i)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d size: %v", ErrRenderFailed, i+1, err)
		}
		pages = append(pages, PageInfo{
			PageNumber:   i + 1,
			WidthPoints:  w,
			HeightPoints: h,
		})
	}

	return &DocumentInfo{PageCount: pageCount, Pages: pages}, nil
}
