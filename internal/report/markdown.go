package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/qrreader/internal/imaging"
	"github.com/nao1215/qrreader/internal/model"
	"github.com/nao1215/qrreader/internal/outcome"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs every report and, for more than one, a summary with a
// mermaid pie chart.
func (w *MarkdownWriter) Write(reports []*model.ReadReport) (int, error) {
	reports = nonNil(reports)
	md := markdown.NewMarkdown(w.output)

	md.H1("QR Read Report")
	md.PlainText("")

	for _, r := range reports {
		w.writeReport(md, r)
	}

	if len(reports) > 1 {
		w.writeSummary(md, model.Summarize(reports))
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeReport writes one read as a property table and an alert.
func (w *MarkdownWriter) writeReport(md *markdown.Markdown, r *model.ReadReport) {
	md.H2(truncateString(r.URL, 80))
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + r.URL + "`"},
		{"Read Date", r.DateRead.Format("2006-01-02 15:04:05 MST")},
		{"Duration", r.Duration.String()},
		{"Status", w.getStatusText(r.Outcome)},
	}
	if r.HTTPStatus != 0 {
		rows = append(rows, []string{"HTTP Status", strconv.Itoa(r.HTTPStatus)})
	}
	if r.Format != imaging.FormatUnknown {
		rows = append(rows, []string{"Format", r.Format.String()})
	}
	if r.Width > 0 {
		rows = append(rows, []string{"Dimensions", strconv.Itoa(r.Width) + "x" + strconv.Itoa(r.Height)})
	}
	if r.Digest != "" {
		rows = append(rows, []string{"SHA3-256", "`" + r.Digest + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeAlert(md, r.Outcome)
}

// getStatusText returns the status cell for an outcome.
func (w *MarkdownWriter) getStatusText(o outcome.Outcome) string {
	if o.IsSuccess() {
		return "✅ " + statusText(o)
	}
	return "❌ " + statusText(o)
}

// writeAlert writes the decoded text or the failure description.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, o outcome.Outcome) {
	switch {
	case o.IsSuccess():
		md.Tip("Decoded text: " + o.Text())
	case o.Kind() == outcome.KindException:
		md.Cautionf("%s (code %d).", o.Kind().Description(), o.Kind().Code())
	default:
		md.Warningf("%s (code %d).", o.Kind().Description(), o.Kind().Code())
	}
	md.PlainText("")
}

// writeSummary writes outcome counts and a pie chart of the outcomes.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	rows := [][]string{
		{"✅ Succeeded", strconv.Itoa(s.Succeeded)},
	}
	for _, kind := range s.FailedKinds() {
		rows = append(rows, []string{"❌ " + kind.String(), strconv.Itoa(s.ByKind[kind.String()])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(s.Total) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if s.Total == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Read Outcomes"),
		piechart.WithShowData(true),
	)
	if s.Succeeded > 0 {
		chart.LabelAndIntValue("Success", uint64(s.Succeeded))
	}
	for _, kind := range s.FailedKinds() {
		chart.LabelAndIntValue(kind.String(), uint64(s.ByKind[kind.String()]))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteCatalog outputs the error catalog as a table.
func (w *MarkdownWriter) WriteCatalog(entries []outcome.Entry) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Error Codes")
	md.PlainText("")

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{strconv.Itoa(e.Code), e.Name, e.Description}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Code", "Name", "Description"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteHistory outputs stored reads as a table followed by the statistics.
func (w *MarkdownWriter) WriteHistory(records []model.ReadRecord, stats model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Read History")
	md.PlainText("")

	if len(records) == 0 {
		md.Note("No reads recorded.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(records))
		for i, rec := range records {
			text := "-"
			if rec.Outcome.IsSuccess() {
				text = truncateString(rec.Outcome.Text(), 40)
			}
			rows[i] = []string{
				strconv.FormatInt(rec.ID, 10),
				rec.DateRead.Local().Format("2006-01-02 15:04:05"),
				truncateString(rec.URL, 60),
				w.getStatusText(rec.Outcome),
				text,
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"ID", "Date", "URL", "Status", "Text"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	w.writeSummary(md, stats)

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by qrreader*")
}
