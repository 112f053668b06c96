// Package rasterize opens PDF documents and renders their pages to
// images through the poppler pdftoppm tool.
package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Djnihaal/EasyDocOCR/errs"
	"github.com/Djnihaal/EasyDocOCR/internal/imgutil"
)

// Renderer renders PDF pages at a fixed resolution. The zero value is not
// usable; call NewRenderer.
type Renderer struct {
	popplerPath string
	dpi         int
}

// NewRenderer returns a renderer running pdftoppm from popplerPath, or
// from $PATH when popplerPath is empty, at dpi dots per inch.
func NewRenderer(popplerPath string, dpi int) *Renderer {
	return &Renderer{popplerPath: popplerPath, dpi: dpi}
}

// DPI returns the rendering resolution.
func (r *Renderer) DPI() int {
	return r.dpi
}

func (r *Renderer) pdftoppm() string {
	if r.popplerPath != "" {
		return filepath.Join(r.popplerPath, "pdftoppm")
	}
	return "pdftoppm"
}

// Available reports whether pdftoppm can be executed.
func (r *Renderer) Available() error {
	if _, err := exec.LookPath(r.pdftoppm()); err != nil {
		return fmt.Errorf("pdftoppm not found: %w", err)
	}
	return nil
}

// renderArgs builds the pdftoppm argument list for a single page.
func (r *Renderer) renderArgs(pdfPath string, page int, outPrefix string) []string {
	p := strconv.Itoa(page)
	return []string{
		"-png",
		"-r", strconv.Itoa(r.dpi),
		"-f", p,
		"-l", p,
		"-singlefile",
		pdfPath,
		outPrefix,
	}
}

// Open validates the PDF at path, counts its pages, and prepares a
// scratch directory for rendered output. The caller must Close the
// returned document.
//
// The source file is optimized into the scratch directory first; that
// repairs the stream-length and xref damage scanners commonly produce,
// and it is where encryption surfaces.
func (r *Renderer) Open(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.CorruptFile(path, err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		return nil, errs.CorruptFile(path, fmt.Errorf("missing PDF header"))
	}

	if err := r.Available(); err != nil {
		return nil, errs.EngineUnavailable("pdftoppm", err)
	}

	scratch, err := os.MkdirTemp("", "easydococr-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	optimized := filepath.Join(scratch, "source.pdf")
	if err := api.OptimizeFile(path, optimized, cfg); err != nil {
		os.RemoveAll(scratch)
		return nil, classifyOpenError(path, raw, err)
	}

	count, err := api.PageCountFile(optimized)
	if err != nil {
		os.RemoveAll(scratch)
		return nil, classifyOpenError(path, raw, err)
	}
	if count < 1 {
		os.RemoveAll(scratch)
		return nil, errs.CorruptFile(path, fmt.Errorf("document has no pages"))
	}

	return &Document{
		path:      path,
		optimized: optimized,
		scratch:   scratch,
		pages:     count,
		renderer:  r,
	}, nil
}

// classifyOpenError separates password protection from plain corruption.
// An /Encrypt dictionary in a file the parser rejected means credentials
// are required.
func classifyOpenError(path string, raw []byte, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") {
		return errs.PasswordProtected(path)
	}
	if bytes.Contains(raw, []byte("/Encrypt")) {
		return errs.PasswordProtected(path)
	}
	return errs.CorruptFile(path, err)
}

// Document is an opened PDF ready to render pages on demand. Pages can
// be rendered concurrently; each one writes to its own scratch file.
type Document struct {
	path      string
	optimized string
	scratch   string
	pages     int
	renderer  *Renderer
}

// Path returns the original source path.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pages
}

// RenderPage rasterizes one page (1-based) and decodes it. The context
// cancels the external process. A page rendered earlier is decoded from
// its scratch file instead of rendered again.
func (d *Document) RenderPage(ctx context.Context, page int) (image.Image, error) {
	if page < 1 || page > d.pages {
		return nil, fmt.Errorf("page %d out of range [1, %d]", page, d.pages)
	}

	outPrefix := filepath.Join(d.scratch, fmt.Sprintf("page-%d", page))
	outPath := outPrefix + ".png"
	if _, err := os.Stat(outPath); err == nil {
		return imgutil.DecodeFile(outPath)
	}

	cmd := exec.CommandContext(ctx, d.renderer.pdftoppm(), d.renderer.renderArgs(d.optimized, page, outPrefix)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("pdftoppm failed on page %d: %w: %s", page, err, strings.TrimSpace(stderr.String()))
	}

	img, err := imgutil.DecodeFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page %d: %w", page, err)
	}
	return img, nil
}

// Close removes the scratch directory and every rendered page in it.
func (d *Document) Close() error {
	if d.scratch == "" {
		return nil
	}
	err := os.RemoveAll(d.scratch)
	d.scratch = ""
	return err
}
