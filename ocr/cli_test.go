package ocr

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"reflect"
	"strings"
	"testing"

	"github.com/Djnihaal/EasyDocOCR/errs"
	"github.com/Djnihaal/EasyDocOCR/lang"
)

func TestNewCLIDefaults(t *testing.T) {
	c := NewCLI()

	if c.cmd != "tesseract" {
		t.Errorf("cmd = %q, want %q", c.cmd, "tesseract")
	}
	if c.oem != OEM_DEFAULT {
		t.Errorf("oem = %d, want %d", c.oem, OEM_DEFAULT)
	}
	if c.psm != PSM_AUTO {
		t.Errorf("psm = %d, want %d", c.psm, PSM_AUTO)
	}
}

func TestCLIOptions(t *testing.T) {
	c := NewCLI(
		WithCommand("/usr/local/bin/tesseract"),
		WithTessdataPrefix("/opt/tessdata"),
		WithOEM(OEM_LSTM_ONLY),
		WithPSM(PSM_SINGLE_BLOCK),
	)

	if c.cmd != "/usr/local/bin/tesseract" {
		t.Errorf("cmd = %q, want override", c.cmd)
	}
	if c.tessdataPrefix != "/opt/tessdata" {
		t.Errorf("tessdataPrefix = %q, want %q", c.tessdataPrefix, "/opt/tessdata")
	}
	if c.oem != OEM_LSTM_ONLY {
		t.Errorf("oem = %d, want %d", c.oem, OEM_LSTM_ONLY)
	}
	if c.psm != PSM_SINGLE_BLOCK {
		t.Errorf("psm = %d, want %d", c.psm, PSM_SINGLE_BLOCK)
	}
}

func TestWithCommandEmptyKeepsDefault(t *testing.T) {
	c := NewCLI(WithCommand(""))
	if c.cmd != "tesseract" {
		t.Errorf("cmd = %q, want %q", c.cmd, "tesseract")
	}
}

func TestCLIArgs(t *testing.T) {
	c := NewCLI(WithOEM(OEM_LSTM_ONLY), WithPSM(PSM_SINGLE_LINE))

	got := c.args(lang.Set{"eng", "deu"})
	want := []string{"stdin", "stdout", "-l", "eng+deu", "--oem", "1", "--psm", "7"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args() = %v, want %v", got, want)
	}

	got = c.args(lang.Set{"eng"}, "hocr")
	want = []string{"stdin", "stdout", "-l", "eng", "--oem", "1", "--psm", "7", "hocr"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args(hocr) = %v, want %v", got, want)
	}
}

func TestClassify(t *testing.T) {
	c := NewCLI()
	langs := lang.Set{"xx"}

	tests := []struct {
		name   string
		err    error
		stderr string
		want   errs.Kind
	}{
		{
			name: "binary not found",
			err:  &exec.Error{Name: "tesseract", Err: exec.ErrNotFound},
			want: errs.KindEngineUnavailable,
		},
		{
			name:   "language load failure",
			err:    errors.New("exit status 1"),
			stderr: "Error opening data file ./xx.traineddata\nFailed loading language 'xx'\nTesseract couldn't load any languages!",
			want:   errs.KindUnknownLanguage,
		},
		{
			name:   "initialization failure",
			err:    errors.New("exit status 1"),
			stderr: "Could not initialize tesseract.",
			want:   errs.KindUnknownLanguage,
		},
		{
			name:   "generic failure",
			err:    errors.New("exit status 1"),
			stderr: "read_params_file: Can't open nonsense",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.classify(langs, tt.err, tt.stderr)
			if got == nil {
				t.Fatal("classify() = nil, want error")
			}
			if kind := errs.KindOf(got); kind != tt.want {
				t.Errorf("classify() kind = %q, want %q", kind, tt.want)
			}
		})
	}
}

func TestCLIUnavailableCommand(t *testing.T) {
	c := NewCLI(WithCommand("definitely-not-a-real-binary-name"))

	err := c.Available()
	if err == nil {
		t.Fatal("Available() = nil, want error")
	}
	if !errs.IsKind(err, errs.KindEngineUnavailable) {
		t.Errorf("Available() kind = %q, want %q", errs.KindOf(err), errs.KindEngineUnavailable)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  hello world \n\n", "hello world"},
		{"trims form feed", "hello\n\x0c", "hello"},
		{"crlf to lf", "line one\r\nline two", "line one\nline two"},
		// Combining acute accent composes into U+00E9.
		{"nfc composition", "café", "café"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestCLIRecognizeReal runs the real binary on a rendered word. It skips
// when tesseract is not installed.
func TestCLIRecognizeReal(t *testing.T) {
	c := NewCLI()
	if err := c.Available(); err != nil {
		t.Skip("tesseract not installed")
	}

	// White canvas with a crude black bar; recognition output does not
	// matter, only that the invocation round-trips.
	img := image.NewRGBA(image.Rect(0, 0, 200, 60))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(20, 25, 180, 35), image.NewUniform(color.Black), image.Point{}, draw.Src)

	text, err := c.Recognize(t.Context(), img, lang.Set{"eng"})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if strings.ContainsRune(text, '\x0c') {
		t.Errorf("Recognize() = %q, want form feed stripped", text)
	}
}
