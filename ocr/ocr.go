// Package ocr provides OCR (Optical Character Recognition) engines for
// extracting text from page images.
//
// The default engine shells out to the Tesseract binary, which must be
// installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// An in-process engine linked against the Tesseract C library is also
// available behind the "ocr" build tag.
package ocr

import (
	"context"
	"image"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Djnihaal/EasyDocOCR/lang"
)

// Engine recognizes text on a single page image. Implementations must be
// safe for concurrent Recognize calls.
type Engine interface {
	// Name identifies the engine in logs and error messages.
	Name() string
	// Available reports whether the engine can run at all. It is checked
	// once at job start.
	Available() error
	// Recognize returns the text of one page. Language codes the engine
	// cannot load surface here, not earlier.
	Recognize(ctx context.Context, img image.Image, langs lang.Set) (string, error)
}

// WordRecognizer is implemented by engines that can report per-word
// confidence. It is optional; callers fall back to Recognize.
type WordRecognizer interface {
	RecognizeWords(ctx context.Context, img image.Image, langs lang.Set) ([]Word, error)
}

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes.
const (
	PSM_OSD_ONLY               PageSegMode = 0  // Orientation and script detection only
	PSM_AUTO_OSD               PageSegMode = 1  // Automatic with OSD
	PSM_AUTO_ONLY              PageSegMode = 2  // Automatic, no OSD or OCR
	PSM_AUTO                   PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN          PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK_VERT_TEXT PageSegMode = 5  // Single uniform block of vertically aligned text
	PSM_SINGLE_BLOCK           PageSegMode = 6  // Single uniform block of text
	PSM_SINGLE_LINE            PageSegMode = 7  // Single text line
	PSM_SINGLE_WORD            PageSegMode = 8  // Single word
	PSM_CIRCLE_WORD            PageSegMode = 9  // Single word in a circle
	PSM_SINGLE_CHAR            PageSegMode = 10 // Single character
	PSM_SPARSE_TEXT            PageSegMode = 11 // Find as much text as possible
	PSM_SPARSE_TEXT_OSD        PageSegMode = 12 // Sparse text with OSD
	PSM_RAW_LINE               PageSegMode = 13 // Treat image as single text line
)

// EngineMode represents Tesseract's OCR engine modes.
type EngineMode int

// OCR engine modes.
const (
	OEM_TESSERACT_ONLY EngineMode = 0 // Legacy engine only
	OEM_LSTM_ONLY      EngineMode = 1 // Neural net LSTM engine only
	OEM_TESSERACT_LSTM EngineMode = 2 // Legacy plus LSTM
	OEM_DEFAULT        EngineMode = 3 // Whatever is available (default)
)

// Normalize canonicalizes engine output: Unicode NFC, LF line endings,
// and trimmed surrounding whitespace. Identical page content always
// yields identical text regardless of how the engine composed it.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}
