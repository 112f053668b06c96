// Package errs defines the classified errors shared by the OCR pipeline.
//
// Fatal kinds (a job cannot proceed) are distinguished from per-page kinds
// by the caller: load-time and engine-availability errors abort a job,
// while PageOCR errors are contained and rendered inline.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies a class of pipeline failure.
type Kind string

const (
	// KindInvalidImage marks a page image that could not be decoded.
	KindInvalidImage Kind = "INVALID_IMAGE"
	// KindUnsupportedFormat marks a source file with an unrecognized extension.
	KindUnsupportedFormat Kind = "UNSUPPORTED_FORMAT"
	// KindCorruptFile marks a source the decoder or rasterizer rejects.
	KindCorruptFile Kind = "CORRUPT_FILE"
	// KindPasswordProtected marks a document that requires credentials.
	KindPasswordProtected Kind = "PASSWORD_PROTECTED"
	// KindUnknownLanguage marks language codes the engine cannot load.
	KindUnknownLanguage Kind = "UNKNOWN_LANGUAGE"
	// KindEngineUnavailable marks a missing or unusable OCR engine.
	KindEngineUnavailable Kind = "ENGINE_UNAVAILABLE"
	// KindPageOCR marks a contained, page-local recognition failure.
	KindPageOCR Kind = "PAGE_OCR"
	// KindExport marks a text export write failure.
	KindExport Kind = "EXPORT"
)

// Error is a classified pipeline error. Page is 1-based and zero when the
// error is not tied to a single page.
type Error struct {
	Kind Kind
	Path string
	Page int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Page > 0 {
		msg = fmt.Sprintf("page %d: %s", e.Page, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidImage reports an image that failed to decode.
func InvalidImage(path string, cause error) *Error {
	return &Error{Kind: KindInvalidImage, Path: path, Msg: "cannot decode image " + path, Err: cause}
}

// UnsupportedFormat reports a file extension the pipeline does not handle.
func UnsupportedFormat(path, ext string) *Error {
	if ext == "" {
		ext = "none"
	}
	return &Error{Kind: KindUnsupportedFormat, Path: path, Msg: fmt.Sprintf("unsupported file format (extension %s)", ext)}
}

// CorruptFile reports a source file the decoder or rasterizer rejected.
func CorruptFile(path string, cause error) *Error {
	return &Error{Kind: KindCorruptFile, Path: path, Msg: "cannot read " + path, Err: cause}
}

// PasswordProtected reports a document that requires credentials the
// pipeline does not have.
func PasswordProtected(path string) *Error {
	return &Error{Kind: KindPasswordProtected, Path: path, Msg: path + " is password protected"}
}

// UnknownLanguage reports language codes the engine could not load.
func UnknownLanguage(langs string, cause error) *Error {
	return &Error{Kind: KindUnknownLanguage, Msg: "engine cannot load language " + langs, Err: cause}
}

// EngineUnavailable reports that the OCR engine cannot run at all.
func EngineUnavailable(engine string, cause error) *Error {
	return &Error{Kind: KindEngineUnavailable, Msg: "OCR engine " + engine + " unavailable", Err: cause}
}

// PageOCR wraps a page-local failure. These never abort a job; the
// aggregator renders them inline.
func PageOCR(page int, cause error) *Error {
	return &Error{Kind: KindPageOCR, Page: page, Msg: "recognition failed", Err: cause}
}

// Export reports a text export write failure, distinct from OCR errors.
func Export(path string, cause error) *Error {
	return &Error{Kind: KindExport, Path: path, Msg: "cannot write " + path, Err: cause}
}

// KindOf returns the Kind of err, or the empty Kind when err carries no
// classification anywhere in its chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
