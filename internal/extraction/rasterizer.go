package extraction

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// PageRasterizer turns a source document into one JPEG per page
type PageRasterizer struct {
	dpi      float64
	maxPages int
	quality  int
	logger   *zap.Logger
}

// NewPageRasterizer creates a rasterizer. maxPages <= 0 keeps every page.
func NewPageRasterizer(dpi float64, maxPages int, logger *zap.Logger) *PageRasterizer {
	if dpi <= 0 {
		dpi = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageRasterizer{dpi: dpi, maxPages: maxPages, quality: 85, logger: logger}
}

// SupportedFile reports whether path has an extension Rasterize accepts
func SupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// Rasterize returns the JPEG bytes of each page in page order. Image files
// yield a single page.
func (r *PageRasterizer) Rasterize(path string) ([][]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return r.rasterizePDF(path)
	case ".jpg", ".jpeg", ".png":
		page, err := r.readImage(path, ext)
		if err != nil {
			return nil, err
		}
		return [][]byte{page}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func (r *PageRasterizer) rasterizePDF(path string) ([][]byte, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	count := doc.NumPage()
	if r.maxPages > 0 && count > r.maxPages {
		r.logger.Warn("Page limit reached, trailing pages skipped",
			zap.String("path", path),
			zap.Int("total_pages", count),
			zap.Int("max_pages", r.maxPages))
		count = r.maxPages
	}

	pages := make([][]byte, 0, count)
	for n := 0; n < count; n++ {
		img, err := doc.ImageDPI(n, r.dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", n+1, err)
		}
		data, err := r.encode(img)
		if err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", n+1, err)
		}
		pages = append(pages, data)
	}

	r.logger.Debug("PDF rasterized", zap.String("path", path), zap.Int("pages", len(pages)))
	return pages, nil
}

func (r *PageRasterizer) readImage(path, ext string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	var img image.Image
	if ext == ".png" {
		img, err = png.Decode(f)
	} else {
		img, err = jpeg.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return r.encode(img)
}

func (r *PageRasterizer) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
