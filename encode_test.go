package office2png

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestPNGLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level int
		want  png.CompressionLevel
	}{
		{0, png.NoCompression},
		{1, png.BestSpeed},
		{3, png.BestSpeed},
		{4, png.DefaultCompression},
		{6, png.DefaultCompression},
		{7, png.BestCompression},
		{9, png.BestCompression},
	}

	for _, tt := range tests {
		if got := pngLevel(tt.level); got != tt.want {
			t.Errorf("pngLevel(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestEncodePNG(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	data, err := encodePNG(img, 6)
	if err != nil {
		t.Fatalf("encodePNG: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding round trip: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 8 || bounds.Dy() != 4 {
		t.Errorf("got %dx%d, want 8x4", bounds.Dx(), bounds.Dy())
	}
}

func TestEncodePages_WorkerBounds(t *testing.T) {
	t.Parallel()

	// More workers than pages must not deadlock or drop pages.
	cfg := testRenderConfig()
	cfg.EncodeWorkers = 8
	r := newTestRenderer(t, cfg, &fakeRasterizer{})

	raws := []rawPage{
		{pageNumber: 1, img: image.NewRGBA(image.Rect(0, 0, 2, 2))},
		{pageNumber: 2, img: image.NewRGBA(image.Rect(0, 0, 2, 2))},
	}
	pages, err := r.encodePages(raws)
	if err != nil {
		t.Fatalf("encodePages: %v", err)
	}
	if len(pages) != 2 || pages[0].PageNumber != 1 || pages[1].PageNumber != 2 {
		t.Errorf("unexpected pages: %+v", pages)
	}
}
