package easydococr

import (
	"context"
	"image"

	"github.com/rs/zerolog"

	"github.com/Djnihaal/EasyDocOCR/document"
	"github.com/Djnihaal/EasyDocOCR/export"
	"github.com/Djnihaal/EasyDocOCR/job"
	"github.com/Djnihaal/EasyDocOCR/lang"
	"github.com/Djnihaal/EasyDocOCR/ocr"
	"github.com/Djnihaal/EasyDocOCR/preprocess"
	"github.com/Djnihaal/EasyDocOCR/rasterize"
)

// Run is a configured OCR run over one document. Each configuration
// method returns a new Run instance, making it safe for concurrent use
// and allowing method chaining. Every Run drives its own job runner;
// share a job.Runner directly to serialize jobs across an application.
type Run struct {
	// Source
	path string

	// Configuration
	opts options

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Run with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (r *Run) clone() *Run {
	return &Run{
		path: r.path,
		opts: r.opts.clone(),
		err:  r.err,
	}
}

// ============================================================================
// Configuration Methods (return new Run instance)
// ============================================================================

// Languages sets the recognition languages explicitly, disabling
// detection. Codes are passed to the engine verbatim; each argument may
// itself be a "+" or comma separated list. Multiple calls are cumulative.
//
// Example:
//
//	text, _, err := easydococr.Open("scan.pdf").Languages("eng", "deu").Text()
func (r *Run) Languages(codes ...string) *Run {
	newRun := r.clone()
	for _, code := range codes {
		newRun.opts.languages = append(newRun.opts.languages, lang.ParseSpec(code)...)
	}
	return newRun
}

// DefaultLanguage sets the language used when detection fails or finds
// nothing usable.
//
// Example:
//
//	text, _, err := easydococr.Open("scan.pdf").DefaultLanguage("fra").Text()
func (r *Run) DefaultLanguage(code string) *Run {
	newRun := r.clone()
	newRun.opts.cfg.DefaultLanguage = code
	return newRun
}

// Preprocess toggles the grayscale, sharpen, and contrast chain applied
// to every page before recognition. It is on by default.
//
// Example:
//
//	text, _, err := easydococr.Open("clean-scan.png").Preprocess(false).Text()
func (r *Run) Preprocess(enabled bool) *Run {
	newRun := r.clone()
	newRun.opts.cfg.Preprocess = enabled
	return newRun
}

// DPI sets the PDF rasterization resolution.
//
// Example:
//
//	text, _, err := easydococr.Open("contract.pdf").DPI(300).Text()
func (r *Run) DPI(dpi int) *Run {
	newRun := r.clone()
	newRun.opts.cfg.DPI = dpi
	return newRun
}

// Workers sets how many pages may be recognized concurrently. The
// default is 1, which processes pages strictly in order; output order is
// the same either way.
//
// Example:
//
//	text, _, err := easydococr.Open("book.pdf").Workers(4).Text()
func (r *Run) Workers(n int) *Run {
	newRun := r.clone()
	newRun.opts.cfg.Workers = n
	return newRun
}

// Tesseract overrides the tesseract binary invoked by the default
// engine.
//
// Example:
//
//	text, _, err := easydococr.Open("scan.pdf").Tesseract("/opt/tesseract/bin/tesseract").Text()
func (r *Run) Tesseract(cmd string) *Run {
	newRun := r.clone()
	newRun.opts.cfg.TesseractCmd = cmd
	return newRun
}

// Poppler sets the directory holding the poppler tools used for PDF
// rasterization. Empty means $PATH.
//
// Example:
//
//	text, _, err := easydococr.Open("scan.pdf").Poppler("/opt/poppler/bin").Text()
func (r *Run) Poppler(dir string) *Run {
	newRun := r.clone()
	newRun.opts.cfg.PopplerPath = dir
	return newRun
}

// Engine replaces the default tesseract CLI engine.
//
// Example:
//
//	engine, _ := ocr.NewInProcess("", ocr.PSM_AUTO)
//	text, _, err := easydococr.Open("scan.pdf").Engine(engine).Text()
func (r *Run) Engine(engine ocr.Engine) *Run {
	newRun := r.clone()
	newRun.opts.engine = engine
	return newRun
}

// Logger attaches a logger to the run. The default discards everything.
//
// Example:
//
//	text, _, err := easydococr.Open("scan.pdf").Logger(log.Logger).Text()
func (r *Run) Logger(logger zerolog.Logger) *Run {
	newRun := r.clone()
	newRun.opts.logger = logger
	return newRun
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Start begins the run asynchronously and returns its job. The job's
// event channel reports per-page progress and the terminal outcome;
// cancel through the job or by cancelling ctx.
//
// Example:
//
//	j, err := easydococr.Open("book.pdf").Start(ctx)
//	for ev := range j.Events() {
//	    // observe progress
//	}
//	result, err := j.Result()
func (r *Run) Start(ctx context.Context) (*job.Job, error) {
	if r.err != nil {
		return nil, r.err
	}
	runner, err := job.NewRunner(r.opts.cfg, r.opts.engine, r.opts.logger)
	if err != nil {
		return nil, err
	}
	return runner.Start(ctx, job.Request{Path: r.path, Languages: r.opts.languages})
}

// Result runs the job to completion and returns the full result.
func (r *Run) Result() (*job.Result, error) {
	return r.ResultContext(context.Background())
}

// ResultContext is Result with a context governing cancellation.
func (r *Run) ResultContext(ctx context.Context) (*job.Result, error) {
	j, err := r.Start(ctx)
	if err != nil {
		return nil, err
	}
	return j.Wait(ctx)
}

// Text runs the job and returns the document text along with any page
// failures. Failed pages appear inline as placeholders; the error return
// is reserved for fatal problems that stopped the whole run.
//
// Example:
//
//	text, failures, err := easydococr.Open("scan.pdf").Text()
func (r *Run) Text() (string, []Failure, error) {
	return r.TextContext(context.Background())
}

// TextContext is Text with a context governing cancellation.
func (r *Run) TextContext(ctx context.Context) (string, []Failure, error) {
	res, err := r.ResultContext(ctx)
	if err != nil {
		return "", nil, err
	}
	return res.Text, failuresOf(res), nil
}

// Save runs the job and writes the document text to outPath as UTF-8,
// overwriting any existing file. Page failures do not prevent saving;
// fatal and export errors do.
//
// Example:
//
//	err := easydococr.Open("scan.pdf").Save("scan.txt")
func (r *Run) Save(outPath string) error {
	text, _, err := r.Text()
	if err != nil {
		return err
	}
	return export.WriteText(outPath, text)
}

// Preview returns the first page exactly as the engine would see it,
// preprocessing included. Useful for checking settings before a long
// run.
//
// Example:
//
//	img, err := easydococr.Open("scan.pdf").DPI(300).Preview()
func (r *Run) Preview() (image.Image, error) {
	if r.err != nil {
		return nil, r.err
	}
	if err := r.opts.cfg.Validate(); err != nil {
		return nil, err
	}

	loader := document.NewLoader(rasterize.NewRenderer(r.opts.cfg.PopplerPath, r.opts.cfg.DPI))
	src, err := loader.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	img, err := src.Page(context.Background(), 1)
	if err != nil {
		return nil, err
	}

	pre := preprocess.Disabled()
	if r.opts.cfg.Preprocess {
		pre = preprocess.Default()
	}
	return pre.Apply(img), nil
}

// failuresOf converts a result's failed pages to the public type.
func failuresOf(res *job.Result) []Failure {
	if len(res.Failed) == 0 {
		return nil
	}
	failures := make([]Failure, len(res.Failed))
	for i, p := range res.Failed {
		failures[i] = Failure{Page: p.Index, Err: p.Err}
	}
	return failures
}
