package job

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Djnihaal/EasyDocOCR/aggregate"
	"github.com/Djnihaal/EasyDocOCR/config"
	"github.com/Djnihaal/EasyDocOCR/document"
	"github.com/Djnihaal/EasyDocOCR/errs"
	"github.com/Djnihaal/EasyDocOCR/lang"
	"github.com/Djnihaal/EasyDocOCR/ocr"
	"github.com/Djnihaal/EasyDocOCR/preprocess"
	"github.com/Djnihaal/EasyDocOCR/rasterize"
)

// sampleMinConfidence filters noise words out of the language detection
// sample when the engine reports per-word confidence.
const sampleMinConfidence = 40

// Runner executes OCR jobs one at a time.
type Runner struct {
	cfg    config.Config
	engine ocr.Engine
	log    zerolog.Logger
	open   func(path string) (document.Source, error)

	mu      sync.Mutex
	current *Job
}

// NewRunner returns a runner using the given engine, or the tesseract
// CLI engine built from cfg when engine is nil.
func NewRunner(cfg config.Config, engine ocr.Engine, logger zerolog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		engine = ocr.NewCLI(
			ocr.WithCommand(cfg.TesseractCmd),
			ocr.WithTessdataPrefix(cfg.TessdataPrefix),
			ocr.WithOEM(ocr.EngineMode(cfg.OEM)),
			ocr.WithPSM(ocr.PageSegMode(cfg.PSM)),
		)
	}
	loader := document.NewLoader(rasterize.NewRenderer(cfg.PopplerPath, cfg.DPI))
	return &Runner{
		cfg:    cfg,
		engine: engine,
		log:    logger,
		open:   loader.Open,
	}, nil
}

// Start begins a job for req. It returns ErrBusy while another job is
// running; rejected requests are not queued. Cancelling ctx cancels the
// job the same way Job.Cancel does.
func (r *Runner) Start(ctx context.Context, req Request) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && !r.current.State().Terminal() {
		return nil, ErrBusy
	}

	jobCtx, cancel := context.WithCancel(ctx)
	j := newJob(req, cancel)
	r.current = j

	r.log.Info().
		Str("job_id", j.id).
		Str("path", req.Path).
		Msg("job accepted")

	go r.run(jobCtx, j)
	return j, nil
}

func (r *Runner) run(ctx context.Context, j *Job) {
	defer j.cancel()

	j.state.Store(int32(StateRunning))
	start := time.Now()

	result, err := r.pipeline(ctx, j)
	switch {
	case err != nil && ctx.Err() != nil:
		r.log.Info().
			Str("job_id", j.id).
			Dur("elapsed", time.Since(start)).
			Msg("job cancelled")
		j.finish(StateCancelled, nil, ErrCancelled)
	case err != nil:
		r.log.Error().
			Err(err).
			Str("job_id", j.id).
			Msg("job failed")
		j.finish(StateFailed, nil, err)
	default:
		result.Duration = time.Since(start)
		r.log.Info().
			Str("job_id", j.id).
			Int("pages", result.Pages).
			Int("failed_pages", len(result.Failed)).
			Dur("elapsed", result.Duration).
			Msg("job completed")
		j.finish(StateCompleted, result, nil)
	}
}

// pipeline runs load, language resolution, recognition, and assembly.
func (r *Runner) pipeline(ctx context.Context, j *Job) (*Result, error) {
	if err := r.engine.Available(); err != nil {
		return nil, err
	}

	src, err := r.open(j.req.Path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	total := src.PageCount()
	pre := preprocess.Disabled()
	if r.cfg.Preprocess {
		pre = preprocess.Default()
	}

	explicit := lang.Set(j.req.Languages)
	var sample string
	if explicit.Empty() {
		sample, err = r.sampleText(ctx, src, pre)
		if err != nil {
			return nil, err
		}
	}
	langs, source := lang.NewResolver(r.cfg.DefaultLanguage).Resolve(explicit, sample)

	r.log.Info().
		Str("job_id", j.id).
		Str("languages", langs.Join()).
		Str("language_source", source.String()).
		Int("pages", total).
		Msg("recognizing")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]aggregate.PageResult, total)
	var completed atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.MaxWorkers())
	for n := 1; n <= total; n++ {
		eg.Go(func() error {
			// Pages queued after a cancel or fatal error are skipped;
			// pages already in flight finish.
			if err := egCtx.Err(); err != nil {
				return err
			}
			pr, fatal := r.processPage(egCtx, src, pre, langs, n)
			if fatal != nil {
				return fatal
			}
			results[n-1] = pr
			j.emitProgress(n, int(completed.Add(1)), total)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	agg := aggregate.Assemble(results)
	return &Result{
		JobID:     j.id,
		Path:      j.req.Path,
		Text:      agg.Text,
		Summary:   agg.Summary(),
		Languages: langs,
		Source:    source,
		Pages:     agg.Total,
		Failed:    agg.Failed,
	}, nil
}

// sampleText recognizes the first page with the default language to feed
// detection. A sample that cannot be produced is not fatal; resolution
// falls back to the default language. Only an undecodable input image or
// a dead engine aborts here.
func (r *Runner) sampleText(ctx context.Context, src document.Source, pre preprocess.Pipeline) (string, error) {
	pageCtx := context.WithoutCancel(ctx)

	img, err := src.Page(pageCtx, 1)
	if err != nil {
		if errs.IsKind(err, errs.KindInvalidImage) {
			return "", err
		}
		return "", nil
	}

	prepped := pre.Apply(img)
	probe := lang.Set{r.cfg.DefaultLanguage}

	if wr, ok := r.engine.(ocr.WordRecognizer); ok {
		words, err := wr.RecognizeWords(pageCtx, prepped, probe)
		switch {
		case err == nil:
			if s := ocr.JoinConfident(words, sampleMinConfidence); s != "" {
				return s, nil
			}
		case errs.IsKind(err, errs.KindEngineUnavailable):
			return "", err
		}
	}

	text, err := r.engine.Recognize(pageCtx, prepped, probe)
	if err != nil {
		if errs.IsKind(err, errs.KindEngineUnavailable) {
			return "", err
		}
		return "", nil
	}
	return text, nil
}

// processPage loads, preprocesses, and recognizes one page. The page
// runs to completion even if the job is cancelled mid-page; ctx governs
// only whether it starts. The returned error is fatal for the whole job;
// contained failures travel inside the PageResult.
func (r *Runner) processPage(ctx context.Context, src document.Source, pre preprocess.Pipeline, langs lang.Set, n int) (aggregate.PageResult, error) {
	pageCtx := context.WithoutCancel(ctx)

	img, err := src.Page(pageCtx, n)
	if err != nil {
		if errs.IsKind(err, errs.KindInvalidImage) {
			return aggregate.PageResult{}, err
		}
		return aggregate.PageResult{Index: n, Err: errs.PageOCR(n, err)}, nil
	}

	text, err := r.engine.Recognize(pageCtx, pre.Apply(img), langs)
	if err != nil {
		switch {
		case errs.IsKind(err, errs.KindEngineUnavailable):
			return aggregate.PageResult{}, err
		case errs.IsKind(err, errs.KindUnknownLanguage):
			return aggregate.PageResult{Index: n, Err: err}, nil
		default:
			return aggregate.PageResult{Index: n, Err: errs.PageOCR(n, err)}, nil
		}
	}

	return aggregate.PageResult{Index: n, Text: text}, nil
}
