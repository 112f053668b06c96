//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/Djnihaal/EasyDocOCR/errs"
	"github.com/Djnihaal/EasyDocOCR/internal/imgutil"
	"github.com/Djnihaal/EasyDocOCR/lang"
)

// InProcess runs recognition through the linked Tesseract C library via
// gosseract. The underlying client is not safe for concurrent use, so
// calls are serialized; prefer CLI when page-level concurrency matters.
//
// Recognition is not interruptible once started. The context is only
// checked between calls.
type InProcess struct {
	mu     sync.Mutex
	client *gosseract.Client
	psm    PageSegMode
}

// NewInProcess creates an in-process engine. tessdataPrefix may be empty
// to use the library's compiled-in default. The engine must be closed
// when no longer needed to release resources.
func NewInProcess(tessdataPrefix string, psm PageSegMode) (*InProcess, error) {
	client := gosseract.NewClient()
	if tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(tessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	return &InProcess{client: client, psm: psm}, nil
}

// Name returns the engine identifier.
func (e *InProcess) Name() string {
	return "gosseract"
}

// Available reports whether the library can recognize at all.
func (e *InProcess) Available() error {
	if e.client == nil {
		return errs.EngineUnavailable(e.Name(), fmt.Errorf("engine closed"))
	}
	return nil
}

// Close releases the Tesseract client.
func (e *InProcess) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

// Recognize returns the normalized text of one page.
func (e *InProcess) Recognize(ctx context.Context, img image.Image, langs lang.Set) (string, error) {
	text, err := e.run(ctx, img, langs, func() (string, error) { return e.client.Text() })
	if err != nil {
		return "", err
	}
	return Normalize(text), nil
}

// RecognizeWords returns the page's words with their confidences.
func (e *InProcess) RecognizeWords(ctx context.Context, img image.Image, langs lang.Set) ([]Word, error) {
	out, err := e.run(ctx, img, langs, func() (string, error) { return e.client.HOCRText() })
	if err != nil {
		return nil, err
	}
	return ParseHOCR(strings.NewReader(out))
}

func (e *InProcess) run(ctx context.Context, img image.Image, langs lang.Set, recognize func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := imgutil.EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("failed to prepare page image: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return "", errs.EngineUnavailable(e.Name(), fmt.Errorf("engine closed"))
	}
	if err := e.client.SetLanguage(langs...); err != nil {
		return "", errs.UnknownLanguage(langs.Join(), err)
	}
	if err := e.client.SetPageSegMode(gosseract.PageSegMode(e.psm)); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := e.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	out, err := recognize()
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "language") {
			return "", errs.UnknownLanguage(langs.Join(), err)
		}
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return out, nil
}
