// Package export writes recognition results to disk.
package export

import (
	"os"

	"github.com/Djnihaal/EasyDocOCR/errs"
)

// WriteText writes text to path as UTF-8, creating the file or
// overwriting an existing one. Failures are classified as export errors,
// distinct from recognition failures.
func WriteText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return errs.Export(path, err)
	}
	return nil
}
