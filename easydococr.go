// Package easydococr provides a fluent API for running OCR over scanned
// documents and images.
//
// Basic usage:
//
//	text, failures, err := easydococr.Open("scan.pdf").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(failures) > 0 {
//	    log.Println("Failed pages:", easydococr.FormatFailures(failures))
//	}
//
// With options:
//
//	text, _, err := easydococr.Open("letter.png").
//	    Languages("deu").
//	    Preprocess(false).
//	    Text()
//
// For progress reporting and cancellation, Start returns a job whose
// events can be observed; the lower-level job package is also available.
package easydococr

import (
	"fmt"
	"strings"

	"github.com/Djnihaal/EasyDocOCR/config"
)

// Failure describes a page that could not be recognized. Failed pages do
// not abort a run; they appear as placeholders in the output text.
type Failure struct {
	// Page is the 1-based page index.
	Page int
	// Err is the page's classified error.
	Err error
}

func (f Failure) String() string {
	return fmt.Sprintf("page %d: %v", f.Page, f.Err)
}

// FormatFailures renders failures one per line for display or logging.
func FormatFailures(failures []Failure) string {
	if len(failures) == 0 {
		return ""
	}
	lines := make([]string, len(failures))
	for i, f := range failures {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}

// Open starts a run for the document at path using default settings.
// Nothing is read until a terminal operation like Text() executes.
//
// Example:
//
//	text, failures, err := easydococr.Open("scan.pdf").Text()
func Open(path string) *Run {
	return &Run{
		path: path,
		opts: defaultOptions(),
	}
}

// OpenWithConfig starts a run using cfg instead of the defaults. Combine
// with config.FromEnv to honor the OCR_* environment variables.
//
// Example:
//
//	text, _, err := easydococr.OpenWithConfig("scan.pdf", config.FromEnv()).Text()
func OpenWithConfig(path string, cfg config.Config) *Run {
	r := Open(path)
	r.opts.cfg = cfg
	return r
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	img := easydococr.Must(easydococr.Open("scan.pdf").Preview())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to Text() and panics if the
// error is non-nil. It discards page failures and returns just the text.
// It is intended for use in scripts or tests where error handling would
// be cumbersome.
//
// Example:
//
//	text := easydococr.MustText(easydococr.Open("scan.pdf").Text())
func MustText[T any](val T, _ []Failure, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
