// Package config holds the runtime settings for the OCR pipeline.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config carries every tunable the pipeline reads. Zero values are not
// usable; start from Default or FromEnv.
type Config struct {
	// TesseractCmd is the tesseract binary invoked by the CLI engine.
	TesseractCmd string
	// PopplerPath is the directory holding pdftoppm. Empty means $PATH.
	PopplerPath string
	// TessdataPrefix overrides the engine's language data directory.
	TessdataPrefix string
	// DefaultLanguage is used when detection fails or is unavailable.
	DefaultLanguage string
	// Preprocess toggles the grayscale/sharpen/contrast chain.
	Preprocess bool
	// DPI is the PDF rasterization resolution.
	DPI int
	// Workers caps concurrent page recognition. 1 means sequential.
	Workers int
	// OEM is the tesseract OCR engine mode.
	OEM int
	// PSM is the tesseract page segmentation mode.
	PSM int
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		TesseractCmd:    "tesseract",
		DefaultLanguage: "eng",
		Preprocess:      true,
		DPI:             200,
		Workers:         1,
		OEM:             3,
		PSM:             3,
	}
}

// FromEnv returns Default overridden by any OCR_* environment variables
// that are set. Invalid numeric values fall back to the default silently;
// Validate catches out-of-range results.
func FromEnv() Config {
	cfg := Default()
	cfg.TesseractCmd = getEnv("TESSERACT_CMD", cfg.TesseractCmd)
	cfg.PopplerPath = getEnv("POPPLER_PATH", cfg.PopplerPath)
	cfg.TessdataPrefix = getEnv("TESSDATA_PREFIX", cfg.TessdataPrefix)
	cfg.DefaultLanguage = getEnv("OCR_DEFAULT_LANGUAGE", cfg.DefaultLanguage)
	cfg.Preprocess = getEnvBool("OCR_PREPROCESS", cfg.Preprocess)
	cfg.DPI = getEnvInt("OCR_DPI", cfg.DPI)
	cfg.Workers = getEnvInt("OCR_WORKERS", cfg.Workers)
	cfg.OEM = getEnvInt("OCR_OEM", cfg.OEM)
	cfg.PSM = getEnvInt("OCR_PSM", cfg.PSM)
	return cfg
}

// Validate checks ranges. It is called once at job start so later stages
// can trust the values.
func (c Config) Validate() error {
	if c.TesseractCmd == "" {
		return fmt.Errorf("tesseract command must not be empty")
	}
	if c.DefaultLanguage == "" {
		return fmt.Errorf("default language must not be empty")
	}
	if c.DPI < 72 || c.DPI > 600 {
		return fmt.Errorf("dpi %d out of range [72, 600]", c.DPI)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.OEM < 0 || c.OEM > 3 {
		return fmt.Errorf("oem %d out of range [0, 3]", c.OEM)
	}
	if c.PSM < 0 || c.PSM > 13 {
		return fmt.Errorf("psm %d out of range [0, 13]", c.PSM)
	}
	return nil
}

// MaxWorkers returns Workers capped at the machine's logical CPU count.
func (c Config) MaxWorkers() int {
	n := c.Workers
	if cpus := runtime.NumCPU(); n > cpus {
		n = cpus
	}
	if n < 1 {
		n = 1
	}
	return n
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
