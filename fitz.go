package office2png

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// fitzRasterizer is the production PDF engine, backed by MuPDF via
// go-fitz.
type fitzRasterizer struct{}

var _ rasterizer = fitzRasterizer{}

func (fitzRasterizer) Open(path string) (documentHandle, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrRenderFailed, path, err)
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

var _ documentHandle = (*fitzDocument)(nil)

func (d *fitzDocument) NumPages() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) PageSize(index int) (float64, float64, error) {
	bound, err := d.doc.Bound(index)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: page %d bounds: %v", ErrRenderFailed, index+1, err)
	}
	return float64(bound.Dx()), float64(bound.Dy()), nil
}

func (d *fitzDocument) RenderPage(index int, dpi float64) (*image.RGBA, error) {
	img, err := d.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrRenderFailed, index+1, err)
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
