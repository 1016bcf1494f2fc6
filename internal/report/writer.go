package report

import (
	"fmt"
	"io"

	"github.com/nao1215/qrreader/internal/model"
	"github.com/nao1215/qrreader/internal/outcome"
)

// Writer defines the interface for report output.
// Implementations write read results in various formats.
type Writer interface {
	// Write outputs the read reports followed by their summary.
	// Returns the number of bytes written and any error encountered.
	Write(reports []*model.ReadReport) (int, error)

	// WriteCatalog outputs the error catalog.
	WriteCatalog(entries []outcome.Entry) (int, error)

	// WriteHistory outputs stored reads and the overall statistics.
	WriteHistory(records []model.ReadRecord, stats model.Summary) (int, error)
}

// Format selects a Writer implementation.
type Format int

const (
	// FormatSimple is human-readable text.
	FormatSimple Format = iota
	// FormatJSON is indented JSON.
	FormatJSON
	// FormatMarkdown is GitHub Flavored Markdown.
	FormatMarkdown
)

// NewWriter returns the writer for format. version is embedded in JSON output.
func NewWriter(format Format, output io.Writer, version string) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint(), WithVersion(version))
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// nonNil drops nil entries so writers never dereference them.
func nonNil(reports []*model.ReadReport) []*model.ReadReport {
	out := make([]*model.ReadReport, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// statusText is the one-line status of an outcome, e.g. "ParseError (2001)".
func statusText(o outcome.Outcome) string {
	if o.IsSuccess() {
		return "Success"
	}
	return fmt.Sprintf("%s (%d)", o.Kind(), o.Kind().Code())
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
