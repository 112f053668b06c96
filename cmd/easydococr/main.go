// Command easydococr recognizes text in a scanned document and prints or
// saves it.
//
// Usage:
//
//	easydococr [flags] <document>
//
// The input may be an image (PNG, JPEG, TIFF, BMP, GIF, WebP) or a PDF.
// Configuration is read from the environment (a .env file is honored) and
// may be overridden per run with flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	easydococr "github.com/Djnihaal/EasyDocOCR"
	"github.com/Djnihaal/EasyDocOCR/config"
	"github.com/Djnihaal/EasyDocOCR/export"
	"github.com/Djnihaal/EasyDocOCR/job"
)

type options struct {
	path      string
	languages string
	outPath   string
	verbose   bool
	quiet     bool
	cfg       config.Config
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "easydococr: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "easydococr: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: easydococr [flags] <document>\n")
		flag.PrintDefaults()
	}
	langs := flag.String("langs", "", "Engine language codes, e.g. eng+deu (detected when empty)")
	out := flag.String("out", "", "Write recognized text to this file instead of stdout")
	dpi := flag.Int("dpi", cfg.DPI, "Resolution for rendering PDF pages")
	workers := flag.Int("workers", cfg.Workers, "Concurrent page recognitions")
	noPreprocess := flag.Bool("no-preprocess", false, "Skip image cleanup before recognition")
	tesseract := flag.String("tesseract", cfg.TesseractCmd, "Tesseract executable")
	poppler := flag.String("poppler", cfg.PopplerPath, "Directory holding the pdftoppm executable")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	quiet := flag.Bool("quiet", false, "Log warnings and errors only")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing document path")
	}

	cfg.DPI = *dpi
	cfg.Workers = *workers
	cfg.TesseractCmd = *tesseract
	cfg.PopplerPath = *poppler
	if *noPreprocess {
		cfg.Preprocess = false
	}

	return options{
		path:      flag.Arg(0),
		languages: *langs,
		outPath:   *out,
		verbose:   *verbose,
		quiet:     *quiet,
		cfg:       cfg,
	}, nil
}

func run(opts options) error {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	if opts.quiet {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	r := easydococr.OpenWithConfig(opts.path, opts.cfg).Logger(logger)
	if opts.languages != "" {
		r = r.Languages(opts.languages)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j, err := r.Start(ctx)
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		s, ok := <-sig
		if !ok {
			return
		}
		logger.Warn().Str("signal", s.String()).Msg("cancelling, current page will finish")
		j.Cancel()
	}()

	for ev := range j.Events() {
		if ev.Type == job.EventProgress {
			logger.Info().
				Int("page", ev.Page).
				Int("done", ev.Completed).
				Int("total", ev.Total).
				Msg("page recognized")
		}
	}

	res, err := j.Result()
	if err != nil {
		if errors.Is(err, job.ErrCancelled) {
			return fmt.Errorf("cancelled before completion")
		}
		return err
	}

	logger.Info().
		Str("languages", res.Languages.Join()).
		Str("source", res.Source.String()).
		Int("pages", res.Pages).
		Dur("took", res.Duration).
		Msg("recognition finished")
	if res.Summary != "" {
		logger.Warn().Msg(res.Summary)
		for _, p := range res.Failed {
			logger.Warn().Int("page", p.Index).Err(p.Err).Msg("page failed")
		}
	}

	if opts.outPath != "" {
		if err := export.WriteText(opts.outPath, res.Text); err != nil {
			return err
		}
		logger.Info().Str("path", opts.outPath).Msg("text saved")
		return nil
	}
	fmt.Println(res.Text)
	return nil
}
