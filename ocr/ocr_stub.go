//go:build !ocr

package ocr

import (
	"context"
	"errors"
	"image"

	"github.com/Djnihaal/EasyDocOCR/lang"
)

// ErrOCRNotEnabled is returned when the in-process engine is requested
// but was not compiled in. Rebuild with -tags ocr to enable it; this
// requires the Tesseract development libraries to be installed. The CLI
// engine works without the tag.
var ErrOCRNotEnabled = errors.New("in-process OCR not enabled; rebuild with -tags ocr")

// InProcess is a stub engine that reports itself unavailable.
type InProcess struct{}

// NewInProcess returns an error indicating in-process OCR is not
// enabled. To enable it, rebuild with: go build -tags ocr
func NewInProcess(tessdataPrefix string, psm PageSegMode) (*InProcess, error) {
	return nil, ErrOCRNotEnabled
}

// Name returns the engine identifier.
func (e *InProcess) Name() string {
	return "gosseract"
}

// Available returns ErrOCRNotEnabled.
func (e *InProcess) Available() error {
	return ErrOCRNotEnabled
}

// Close is a no-op for the stub engine.
// It is safe to call on a nil engine.
func (e *InProcess) Close() error {
	return nil
}

// Recognize returns ErrOCRNotEnabled.
func (e *InProcess) Recognize(ctx context.Context, img image.Image, langs lang.Set) (string, error) {
	return "", ErrOCRNotEnabled
}

// RecognizeWords returns ErrOCRNotEnabled.
func (e *InProcess) RecognizeWords(ctx context.Context, img image.Image, langs lang.Set) ([]Word, error) {
	return nil, ErrOCRNotEnabled
}
