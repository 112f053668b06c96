package ocr

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Word is a single recognized token.
type Word struct {
	// Text is the token with surrounding whitespace removed.
	Text string
	// Confidence is the engine's certainty in percent, 0 to 100.
	Confidence float64
}

// ParseHOCR extracts recognized words from hOCR output. Words appear in
// reading order; empty tokens are dropped.
func ParseHOCR(r io.Reader) ([]Word, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR output: %w", err)
	}

	var words []Word

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocrx_word") {
			text := Normalize(getTextContent(n))
			if text != "" {
				words = append(words, Word{
					Text:       text,
					Confidence: wordConfidence(getAttr(n, "title")),
				})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return words, nil
}

// JoinConfident concatenates the words whose confidence is at least
// minConf, separated by single spaces. It is used to build clean samples
// for language detection.
func JoinConfident(words []Word, minConf float64) string {
	var sb strings.Builder
	for _, w := range words {
		if w.Confidence < minConf {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.Text)
	}
	return sb.String()
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// hasClass checks whether the node's class attribute contains class.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// getTextContent recursively extracts all text from a node.
func getTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(getTextContent(c))
	}
	return sb.String()
}

// wordConfidence pulls the x_wconf field out of an hOCR title attribute,
// e.g. "bbox 100 100 200 150; x_wconf 93".
func wordConfidence(title string) float64 {
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(prop)
		if len(fields) == 2 && fields[0] == "x_wconf" {
			if conf, err := strconv.ParseFloat(fields[1], 64); err == nil {
				return conf
			}
		}
	}
	return 0
}
