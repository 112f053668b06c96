//go:build ocr

package ocr

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/Djnihaal/EasyDocOCR/errs"
	"github.com/Djnihaal/EasyDocOCR/lang"
)

// blockImage draws a black block on a white canvas, enough for the
// engine to run against without asserting on recognized content.
func blockImage(width, height int) image.Image {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := 10; x < 50 && x < width; x++ {
		for y := 10; y < 30 && y < height; y++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

func TestInProcessRecognize(t *testing.T) {
	e, err := NewInProcess("", PSM_AUTO)
	if err != nil {
		t.Skipf("tesseract library not available: %v", err)
	}
	defer e.Close()

	if e.Name() != "gosseract" {
		t.Errorf("Name() = %q, want %q", e.Name(), "gosseract")
	}
	if err := e.Available(); err != nil {
		t.Fatalf("Available() error = %v", err)
	}

	// The block is not text; only verify recognition runs.
	_, err = e.Recognize(context.Background(), blockImage(100, 50), lang.Set{"eng"})
	if err != nil {
		t.Skipf("language data not available: %v", err)
	}
}

func TestInProcessClose(t *testing.T) {
	e, err := NewInProcess("", PSM_AUTO)
	if err != nil {
		t.Skipf("tesseract library not available: %v", err)
	}

	if err := e.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestInProcessRecognizeAfterClose(t *testing.T) {
	e, err := NewInProcess("", PSM_AUTO)
	if err != nil {
		t.Skipf("tesseract library not available: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := e.Available(); !errs.IsKind(err, errs.KindEngineUnavailable) {
		t.Errorf("Available() after close = %v, want engine unavailable", err)
	}
	_, err = e.Recognize(context.Background(), blockImage(40, 40), lang.Set{"eng"})
	if !errs.IsKind(err, errs.KindEngineUnavailable) {
		t.Errorf("Recognize() after close = %v, want engine unavailable", err)
	}
}

func TestInProcessCancelledContext(t *testing.T) {
	e, err := NewInProcess("", PSM_AUTO)
	if err != nil {
		t.Skipf("tesseract library not available: %v", err)
	}
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Recognize(ctx, blockImage(40, 40), lang.Set{"eng"}); err != context.Canceled {
		t.Errorf("Recognize() error = %v, want context.Canceled", err)
	}
}
