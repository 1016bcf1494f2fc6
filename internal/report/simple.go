package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/qrreader/internal/imaging"
	"github.com/nao1215/qrreader/internal/model"
	"github.com/nao1215/qrreader/internal/outcome"
)

// ruleWidth is the width of the horizontal rules in text output.
const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds fetch details and the internal error of failed reads.
	verbose bool

	upper cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		upper:      cases.Upper(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs every report and, for more than one, a summary.
func (w *SimpleWriter) Write(reports []*model.ReadReport) (int, error) {
	reports = nonNil(reports)

	var sb strings.Builder
	for _, r := range reports {
		w.writeReport(&sb, r)
	}
	if len(reports) > 1 {
		w.writeSummary(&sb, model.Summarize(reports))
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeReport writes one read report.
func (w *SimpleWriter) writeReport(sb *strings.Builder, r *model.ReadReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                         QRREADER REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("URL:        %s\n", r.URL))
	sb.WriteString(fmt.Sprintf("Read Date:  %s\n", r.DateRead.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", r.Duration))
	sb.WriteString(fmt.Sprintf("Status:     %s\n", statusText(r.Outcome)))
	sb.WriteString("\n")

	writeSection(sb, "RESULT")
	if r.Outcome.IsSuccess() {
		sb.WriteString(fmt.Sprintf("  [+] %s\n", r.Outcome.Text()))
	} else {
		sb.WriteString(fmt.Sprintf("  [!] %s\n", r.Outcome.Kind().Description()))
	}
	sb.WriteString("\n")

	if !w.verbose {
		return
	}

	writeSection(sb, "DETAILS")
	if r.HTTPStatus != 0 {
		sb.WriteString(fmt.Sprintf("  HTTP Status:   %d\n", r.HTTPStatus))
	}
	if r.ContentType != "" {
		sb.WriteString(fmt.Sprintf("  Content-Type:  %s\n", r.ContentType))
	}
	if r.FetchedBytes > 0 {
		sb.WriteString(fmt.Sprintf("  Size:          %d bytes\n", r.FetchedBytes))
	}
	if r.Digest != "" {
		sb.WriteString(fmt.Sprintf("  SHA3-256:      %s\n", r.Digest))
	}
	if r.Format != imaging.FormatUnknown {
		sb.WriteString(fmt.Sprintf("  Format:        %s\n", w.upper.String(r.Format.String())))
	}
	if r.Width > 0 {
		sb.WriteString(fmt.Sprintf("  Dimensions:    %dx%d\n", r.Width, r.Height))
	}
	if len(r.PerformedSteps) > 0 {
		sb.WriteString(fmt.Sprintf("  Steps:         %s\n", strings.Join(r.PerformedSteps, " -> ")))
	}
	if r.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("  Error:         %s\n", r.ErrorMessage))
	}
	sb.WriteString("\n")
}

// writeSummary writes outcome counts.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, s model.Summary) {
	writeSection(sb, "SUMMARY")

	sb.WriteString(fmt.Sprintf("  READ:      %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("  SUCCEEDED: %d\n", s.Succeeded))
	sb.WriteString(fmt.Sprintf("  FAILED:    %d\n", s.Failed))
	for _, kind := range s.FailedKinds() {
		sb.WriteString(fmt.Sprintf("    %-18s %d\n", kind.String()+":", s.ByKind[kind.String()]))
	}
	sb.WriteString("\n")
}

// WriteCatalog outputs the error catalog as an aligned table.
func (w *SimpleWriter) WriteCatalog(entries []outcome.Entry) (int, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-18s %s\n", "CODE", "NAME", "DESCRIPTION"))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%-6d %-18s %s\n", e.Code, e.Name, e.Description))
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteHistory outputs stored reads, newest first, and the statistics.
func (w *SimpleWriter) WriteHistory(records []model.ReadRecord, stats model.Summary) (int, error) {
	var sb strings.Builder

	writeSection(&sb, "HISTORY")
	if len(records) == 0 {
		sb.WriteString("  No reads recorded\n\n")
	}
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("  #%-5d %s  %-24s %s\n",
			rec.ID,
			rec.DateRead.Local().Format("2006-01-02 15:04:05"),
			statusText(rec.Outcome),
			rec.URL,
		))
		if rec.Outcome.IsSuccess() {
			sb.WriteString(fmt.Sprintf("         %s\n", truncateString(rec.Outcome.Text(), 60)))
		}
	}
	if len(records) > 0 {
		sb.WriteString("\n")
	}

	w.writeSummary(&sb, stats)

	return w.output.Write([]byte(sb.String()))
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by qrreader\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

// writeSection writes a titled section separator.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}
