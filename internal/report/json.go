package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/qrreader/internal/model"
	"github.com/nao1215/qrreader/internal/outcome"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is the qrreader version embedded in read reports.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion sets the version recorded in read reports.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps read reports with output metadata.
type JSONReport struct {
	// Version is the qrreader version that generated this report.
	Version string `json:"version,omitempty"`

	// Reports are the individual reads in input order.
	Reports []*model.ReadReport `json:"reports"`

	// Summary counts the reads by outcome.
	Summary model.Summary `json:"summary"`
}

// JSONHistory is the JSON document for stored reads.
type JSONHistory struct {
	Reads []model.ReadRecord `json:"reads"`
	Stats model.Summary      `json:"stats"`
}

// Write outputs the reports wrapped with a summary.
func (w *JSONWriter) Write(reports []*model.ReadReport) (int, error) {
	reports = nonNil(reports)
	return w.writeJSON(&JSONReport{
		Version: w.version,
		Reports: reports,
		Summary: model.Summarize(reports),
	})
}

// WriteCatalog outputs the catalog entries.
func (w *JSONWriter) WriteCatalog(entries []outcome.Entry) (int, error) {
	if entries == nil {
		entries = []outcome.Entry{}
	}
	return w.writeJSON(entries)
}

// WriteHistory outputs stored reads and statistics.
func (w *JSONWriter) WriteHistory(records []model.ReadRecord, stats model.Summary) (int, error) {
	if records == nil {
		records = []model.ReadRecord{}
	}
	return w.writeJSON(&JSONHistory{Reads: records, Stats: stats})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
