package office2png

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sort"
	"sync"
)

// pngLevel maps the zlib-style 0..9 compression setting onto the
// levels the png encoder supports. The default favors speed over
// maximal compression.
func pngLevel(level int) png.CompressionLevel {
	switch {
	case level == 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// encodePNG encodes an image to an in-memory PNG at the given
// compression level.
func encodePNG(img *image.RGBA, level int) ([]byte, error) {
	enc := png.Encoder{CompressionLevel: pngLevel(level)}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return buf.Bytes(), nil
}

// encodePages encodes raw pages to PNG on a bounded worker pool and
// returns them ordered by page number. Encoding is CPU bound and each
// page is independent, so this is the one stage that parallelizes.
func (r *Renderer) encodePages(raws []rawPage) ([]Page, error) {
	workers := r.cfg.EncodeWorkers
	if workers > len(raws) {
		workers = len(raws)
	}
	if workers < 1 {
		workers = 1
	}
	level := r.cfg.clampedCompression()

	pages := make([]Page, len(raws))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				raw := raws[i]
				data, err := encodePNG(raw.img, level)
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("page %d: %w", raw.pageNumber, err)
					})
					continue
				}
				bounds := raw.img.Bounds()
				pages[i] = Page{
					PageNumber: raw.pageNumber,
					Data:       data,
					Width:      bounds.Dx(),
					Height:     bounds.Dy(),
				}
			}
		}()
	}

	for i := range raws {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})
	return pages, nil
}
