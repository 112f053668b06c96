package easydococr

import (
	"github.com/rs/zerolog"

	"github.com/Djnihaal/EasyDocOCR/config"
	"github.com/Djnihaal/EasyDocOCR/ocr"
)

// options holds the configuration accumulated by a Run's chain methods.
type options struct {
	// Pipeline settings
	cfg config.Config

	// Explicit language codes; nil means detect
	languages []string

	// Engine override; nil means the tesseract CLI built from cfg
	engine ocr.Engine

	// Logging; discards by default
	logger zerolog.Logger
}

// defaultOptions returns the default run options.
func defaultOptions() options {
	return options{
		cfg:       config.Default(),
		languages: nil, // nil means detect
		engine:    nil,
		logger:    zerolog.Nop(),
	}
}

// clone creates a deep copy of options.
func (o options) clone() options {
	newOpts := options{
		cfg:    o.cfg,
		engine: o.engine,
		logger: o.logger,
	}

	// Deep copy languages slice
	if o.languages != nil {
		newOpts.languages = make([]string, len(o.languages))
		copy(newOpts.languages, o.languages)
	}

	return newOpts
}
