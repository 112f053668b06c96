// Package document turns input files into ordered page sources.
//
// An image file is a single-page source; a PDF yields one page per
// document page, rendered on demand. Pages are produced lazily and a
// source cannot be rewound; reopen the file to start over.
package document

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/Djnihaal/EasyDocOCR/errs"
	"github.com/Djnihaal/EasyDocOCR/format"
	"github.com/Djnihaal/EasyDocOCR/internal/imgutil"
	"github.com/Djnihaal/EasyDocOCR/rasterize"
)

// Source yields the pages of one input document in order.
type Source interface {
	// Path returns the input file path.
	Path() string
	// PageCount returns the total number of pages.
	PageCount() int
	// Page returns page n (1-based). PDF pages are rendered on first
	// request; distinct pages may be requested concurrently.
	Page(ctx context.Context, n int) (image.Image, error)
	// Close releases any scratch state held by the source.
	Close() error
}

// Loader opens input files as page sources.
type Loader struct {
	renderer *rasterize.Renderer
}

// NewLoader returns a loader that rasterizes PDFs with r.
func NewLoader(r *rasterize.Renderer) *Loader {
	return &Loader{renderer: r}
}

// Open inspects path and returns the matching source. The extension
// decides whether a file is supported; the leading bytes are then checked
// so obviously wrong content fails here rather than mid-job. Unreadable
// files are corrupt, unrecognized extensions are unsupported.
func (l *Loader) Open(path string) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errs.CorruptFile(path, err)
	}

	switch f := format.Detect(path); {
	case f == format.PDF:
		doc, err := l.renderer.Open(path)
		if err != nil {
			return nil, err
		}
		return &pdfSource{doc: doc}, nil
	case f.IsImage():
		// A mislabeled but decodable image is fine, the decoders sniff
		// content themselves. Reject only bytes no decoder will accept.
		sniffed, err := sniff(path)
		if err != nil {
			return nil, errs.CorruptFile(path, err)
		}
		if sniffed == format.Unknown || sniffed == format.PDF {
			return nil, errs.CorruptFile(path, fmt.Errorf("content is not a supported image (detected %s)", sniffed))
		}
		return &imageSource{path: path}, nil
	default:
		return nil, errs.UnsupportedFormat(path, filepath.Ext(path))
	}
}

// sniff reads the file's magic bytes.
func sniff(path string) (format.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return format.Unknown, err
	}
	defer f.Close()
	return format.DetectFromReader(f)
}

// imageSource serves a raster image file as a one-page document. The
// decode is deferred to the first Page call; a decode failure surfaces
// as an invalid-image error before any preprocessing can run.
type imageSource struct {
	path string
}

func (s *imageSource) Path() string {
	return s.path
}

func (s *imageSource) PageCount() int {
	return 1
}

func (s *imageSource) Page(_ context.Context, n int) (image.Image, error) {
	if n != 1 {
		return nil, fmt.Errorf("page %d out of range [1, 1]", n)
	}
	img, err := imgutil.DecodeFile(s.path)
	if err != nil {
		return nil, errs.InvalidImage(s.path, err)
	}
	return img, nil
}

func (s *imageSource) Close() error {
	return nil
}

// pdfSource adapts a rasterized PDF document.
type pdfSource struct {
	doc *rasterize.Document
}

func (s *pdfSource) Path() string {
	return s.doc.Path()
}

func (s *pdfSource) PageCount() int {
	return s.doc.PageCount()
}

func (s *pdfSource) Page(ctx context.Context, n int) (image.Image, error) {
	return s.doc.RenderPage(ctx, n)
}

func (s *pdfSource) Close() error {
	return s.doc.Close()
}
