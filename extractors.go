package servicemonitor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StatusExtractor turns a parsed status page into a short status label.
//
// Extractors are pure functions of the document. They return an error
// wrapping [ErrStatusNotFound] when the page does not carry a label.
//
// # Panic Safety
//
// Extractors are called within a panic recovery boundary. A panicking
// extractor yields a history line with a correlation ID instead of crashing
// the poll round; the stack trace is logged.
type StatusExtractor func(doc *goquery.Document) (string, error)

// SelectorExtractor returns a [StatusExtractor] that reads the text of the
// first element matching a CSS selector.
//
// Whitespace inside the label is collapsed to single spaces, so multi-line
// markup yields a one-line label.
//
// Example:
//
//	extractor := servicemonitor.SelectorExtractor("span.status.font-large")
func SelectorExtractor(selector string) StatusExtractor {
	return func(doc *goquery.Document) (string, error) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", fmt.Errorf("%w: no element matches %q", ErrStatusNotFound, selector)
		}

		label := normalizeLabel(sel.Text())
		if label == "" {
			return "", fmt.Errorf("%w: element %q is empty", ErrStatusNotFound, selector)
		}
		return label, nil
	}
}

// FirstMatch returns a [StatusExtractor] that tries extractors in order and
// returns the first label found.
//
// This is useful when a provider ships more than one page layout.
//
// Example:
//
//	extractor := servicemonitor.FirstMatch(
//	    servicemonitor.SelectorExtractor("span.status.font-large"),
//	    servicemonitor.SelectorExtractor(".page-status .status"),
//	)
func FirstMatch(extractors ...StatusExtractor) StatusExtractor {
	return func(doc *goquery.Document) (string, error) {
		lastErr := fmt.Errorf("%w: no extractors configured", ErrStatusNotFound)
		for _, extractor := range extractors {
			label, err := extractor(doc)
			if err == nil {
				return label, nil
			}
			lastErr = err
		}
		return "", lastErr
	}
}

// extractStatus parses body as HTML and applies extractor.
func extractStatus(body []byte, extractor StatusExtractor) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	return extractor(doc)
}

// normalizeLabel trims the label and collapses inner whitespace runs.
func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
