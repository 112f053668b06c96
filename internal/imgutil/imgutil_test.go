package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testImage(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	return img
}

func TestEncodePNGRoundTrip(t *testing.T) {
	src := testImage(16, 8)

	data, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}

	img, name, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if name != "png" {
		t.Errorf("Decode() format = %q, want %q", name, "png")
	}
	if got := img.Bounds(); got.Dx() != 16 || got.Dy() != 8 {
		t.Errorf("Bounds() = %v, want 16x8", got)
	}
}

func TestDecodeInvalidData(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not an image at all")))
	if err == nil {
		t.Fatal("Decode() error = nil, want error for invalid data")
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.png")

	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(4, 4)); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	img, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if got := img.Bounds(); got.Dx() != 4 || got.Dy() != 4 {
		t.Errorf("Bounds() = %v, want 4x4", got)
	}
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("DecodeFile() error = nil, want error for missing file")
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")

	if err := WritePNG(path, testImage(3, 3)); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}

	img, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if got := img.Bounds(); got.Dx() != 3 || got.Dy() != 3 {
		t.Errorf("Bounds() = %v, want 3x3", got)
	}
}
