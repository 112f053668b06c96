// Package aggregate assembles per-page recognition results into the
// final document text.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Djnihaal/EasyDocOCR/errs"
)

// PageResult is the outcome of one page. Exactly one of Text and Err is
// meaningful: pages that failed carry their error and contribute a
// placeholder instead of text.
type PageResult struct {
	Index int // 1-based
	Text  string
	Err   error
}

// Result is the assembled document.
type Result struct {
	// Text is the full document text in page order, with page markers
	// when the document has more than one page and placeholders for
	// failed pages.
	Text string
	// Total is the number of pages that were processed.
	Total int
	// Failed lists the failed pages in page order.
	Failed []PageResult
}

// Summary describes the failures, e.g. "2 of 7 pages failed". It is
// empty when every page succeeded.
func (r Result) Summary() string {
	if len(r.Failed) == 0 {
		return ""
	}
	return fmt.Sprintf("%d of %d pages failed", len(r.Failed), r.Total)
}

// Assemble stitches page results into document text. Results may arrive
// in any order; output is always ordered by page index.
func Assemble(pages []PageResult) Result {
	sorted := make([]PageResult, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	multi := len(sorted) > 1

	var blocks []string
	var failed []PageResult
	for _, p := range sorted {
		body := p.Text
		if p.Err != nil {
			body = placeholder(p)
			failed = append(failed, p)
		}
		if multi {
			blocks = append(blocks, fmt.Sprintf("--- Page %d ---\n%s", p.Index, body))
		} else {
			blocks = append(blocks, body)
		}
	}

	return Result{
		Text:   strings.Join(blocks, "\n\n"),
		Total:  len(sorted),
		Failed: failed,
	}
}

// placeholder renders a failed page inline, naming the page and the
// failure classification.
func placeholder(p PageResult) string {
	kind := errs.KindOf(p.Err)
	if kind == "" {
		kind = "ERROR"
	}
	return fmt.Sprintf("[page %d failed: %s]", p.Index, kind)
}
