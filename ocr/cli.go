package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Djnihaal/EasyDocOCR/errs"
	"github.com/Djnihaal/EasyDocOCR/internal/imgutil"
	"github.com/Djnihaal/EasyDocOCR/lang"
)

// CLI runs recognition through the tesseract binary. Page images are fed
// over stdin and text comes back on stdout, so no scratch files are
// needed. Each Recognize call starts its own process; concurrent calls
// are independent.
type CLI struct {
	cmd            string
	tessdataPrefix string
	oem            EngineMode
	psm            PageSegMode
}

// CLIOption configures a CLI engine.
type CLIOption func(*CLI)

// WithCommand overrides the tesseract binary name or path.
func WithCommand(cmd string) CLIOption {
	return func(c *CLI) {
		if cmd != "" {
			c.cmd = cmd
		}
	}
}

// WithTessdataPrefix points the engine at an alternate language data
// directory.
func WithTessdataPrefix(dir string) CLIOption {
	return func(c *CLI) { c.tessdataPrefix = dir }
}

// WithOEM sets the OCR engine mode.
func WithOEM(oem EngineMode) CLIOption {
	return func(c *CLI) { c.oem = oem }
}

// WithPSM sets the page segmentation mode.
func WithPSM(psm PageSegMode) CLIOption {
	return func(c *CLI) { c.psm = psm }
}

// NewCLI returns a CLI engine with fully automatic layout analysis and
// the default engine mode.
func NewCLI(opts ...CLIOption) *CLI {
	c := &CLI{
		cmd: "tesseract",
		oem: OEM_DEFAULT,
		psm: PSM_AUTO,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the engine identifier.
func (c *CLI) Name() string {
	return "tesseract"
}

// Available reports whether the tesseract binary can be executed.
func (c *CLI) Available() error {
	if _, err := exec.LookPath(c.cmd); err != nil {
		return errs.EngineUnavailable(c.cmd, err)
	}
	return nil
}

// args builds the tesseract argument list. Extra config names such as
// "hocr" select alternate output formats.
func (c *CLI) args(langs lang.Set, extra ...string) []string {
	args := []string{
		"stdin", "stdout",
		"-l", langs.Join(),
		"--oem", strconv.Itoa(int(c.oem)),
		"--psm", strconv.Itoa(int(c.psm)),
	}
	return append(args, extra...)
}

// Recognize returns the normalized text of one page.
func (c *CLI) Recognize(ctx context.Context, img image.Image, langs lang.Set) (string, error) {
	out, err := c.run(ctx, img, langs)
	if err != nil {
		return "", err
	}
	return Normalize(out), nil
}

// RecognizeWords returns the page's words with their confidences, parsed
// from the engine's hOCR output.
func (c *CLI) RecognizeWords(ctx context.Context, img image.Image, langs lang.Set) ([]Word, error) {
	out, err := c.run(ctx, img, langs, "hocr")
	if err != nil {
		return nil, err
	}
	return ParseHOCR(strings.NewReader(out))
}

func (c *CLI) run(ctx context.Context, img image.Image, langs lang.Set, extra ...string) (string, error) {
	data, err := imgutil.EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("failed to prepare page image: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.cmd, c.args(langs, extra...)...)
	cmd.Stdin = bytes.NewReader(data)
	if c.tessdataPrefix != "" {
		cmd.Env = append(os.Environ(), "TESSDATA_PREFIX="+c.tessdataPrefix)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", c.classify(langs, err, stderr.String())
	}
	return stdout.String(), nil
}

// classify maps a failed invocation onto the error taxonomy. A binary
// that cannot start means the engine is unavailable; a language load
// failure names the codes the engine rejected.
func (c *CLI) classify(langs lang.Set, err error, stderr string) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errs.EngineUnavailable(c.cmd, err)
	}

	detail := strings.TrimSpace(stderr)
	low := strings.ToLower(detail)
	if strings.Contains(low, "failed loading language") || strings.Contains(low, "could not initialize tesseract") {
		return errs.UnknownLanguage(langs.Join(), errors.New(firstLine(detail)))
	}
	if detail == "" {
		return fmt.Errorf("tesseract failed: %w", err)
	}
	return fmt.Errorf("tesseract failed: %w: %s", err, firstLine(detail))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
