package model

import (
	"time"

	"github.com/nao1215/qrreader/internal/imaging"
	"github.com/nao1215/qrreader/internal/outcome"
)

// ReadReport is the working record of one read: everything the pipeline
// learned about a URL on its way to the final outcome.
//
// A ReadReport belongs to a single request. Steps fill it in as they run;
// after the pipeline finishes it is printed by the CLI and stored in the
// history database.
type ReadReport struct {
	// ID is the history row ID. Zero until the report has been saved.
	ID int64 `json:"id,omitempty"`

	// RequestID correlates the report with server log lines.
	RequestID string `json:"request_id,omitempty"`

	// URL is the URL that was read.
	URL string `json:"url"`

	// DateRead is when the read started.
	DateRead time.Time `json:"date_read"`

	// Duration is the wall time of the whole read.
	Duration time.Duration `json:"duration"`

	// === Fetch ===

	// HTTPStatus is the status code of the fetch response.
	HTTPStatus int `json:"http_status,omitempty"`

	// ContentType is the Content-Type header sent by the server.
	ContentType string `json:"content_type,omitempty"`

	// DeclaredBytes is the Content-Length header, or -1 if absent.
	DeclaredBytes int64 `json:"declared_bytes,omitempty"`

	// FetchedBytes is the number of body bytes actually read.
	FetchedBytes int64 `json:"fetched_bytes,omitempty"`

	// Digest is the hex SHA3-256 digest of the fetched bytes.
	Digest string `json:"sha3_256,omitempty"` //nolint:tagliatelle // algorithm name

	// === Image ===

	// Format is the sniffed container format.
	Format imaging.Format `json:"format,omitempty"`

	// Width and Height are the decoded, upright image dimensions.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Body holds the fetched bytes between the fetch and decode steps.
	// The pipeline releases it once the image is decoded.
	Body []byte `json:"-"`

	// Pixels holds the decoded image until recognition is done.
	Pixels *imaging.PixelBuffer `json:"-"`

	// === Result ===

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Outcome is the terminal result of the read.
	Outcome outcome.Outcome `json:"outcome"`

	// Error is the internal error that ended the read, if any.
	// It is never returned to API callers.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for reports and storage.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewReadReport creates a report for url. The outcome starts as an
// Exception so that a report abandoned half way is never a success.
func NewReadReport(url string) *ReadReport {
	return &ReadReport{
		URL:           url,
		DateRead:      time.Now(),
		DeclaredBytes: -1,
		Outcome:       outcome.Failure(outcome.KindException),
	}
}

// AddStep records that a pipeline step ran.
func (r *ReadReport) AddStep(name string) {
	r.PerformedSteps = append(r.PerformedSteps, name)
}

// Succeed sets a successful outcome.
func (r *ReadReport) Succeed(text string) {
	r.Outcome = outcome.Success(text)
	r.Error = nil
	r.ErrorMessage = ""
}

// Fail records err and sets the failure outcome classified from it.
func (r *ReadReport) Fail(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	r.Outcome = outcome.Failure(outcome.KindOf(err))
}

// Succeeded reports whether the read produced QR text.
func (r *ReadReport) Succeeded() bool {
	return r.Outcome.IsSuccess()
}
