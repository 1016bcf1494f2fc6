package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/qrreader/internal/fetch"
	"github.com/nao1215/qrreader/internal/imaging"
	"github.com/nao1215/qrreader/internal/model"
	"github.com/nao1215/qrreader/internal/outcome"
	"github.com/nao1215/qrreader/internal/qr"
)

// Step names as they appear in reports and logs.
const (
	StepFetch     = "fetch"
	StepSniff     = "sniff"
	StepDecode    = "decode"
	StepRecognize = "recognize"
)

// ErrNoSymbol is the cause of a ParseError: the image decoded but no QR
// symbol was found in it.
var ErrNoSymbol = errors.New("no QR symbol found")

// Fetcher retrieves the resource behind a URL.
// *fetch.Fetcher is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Resource, error)
}

// FetchStep downloads the resource under the configured constraints.
type FetchStep struct {
	fetcher Fetcher
}

// NewFetchStep creates a fetch step.
func NewFetchStep(f Fetcher) *FetchStep {
	return &FetchStep{fetcher: f}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return StepFetch
}

// Do executes the fetch step. A fetch that hits its own timeout is
// Unavailable, like any other transport failure.
func (s *FetchStep) Do(ctx context.Context, report *model.ReadReport) error {
	res, err := s.fetcher.Fetch(ctx, report.URL)
	if err != nil {
		if ctx.Err() != nil {
			// The caller went away; the remote image was never judged.
			return outcome.Wrap(outcome.KindException, err)
		}
		if errors.Is(err, fetch.ErrSizeExceeded) {
			return outcome.Wrap(outcome.KindSizeExceeded, err)
		}
		return outcome.Wrap(outcome.KindUnavailable, err)
	}

	report.HTTPStatus = res.StatusCode
	report.ContentType = res.ContentType
	report.DeclaredBytes = res.DeclaredLength
	report.FetchedBytes = int64(len(res.Body))
	report.Digest = res.Digest()
	report.Body = res.Body
	return nil
}

// SniffStep identifies the container format from the magic number.
// It never fails; unknown bytes are rejected by the decode step.
type SniffStep struct{}

// NewSniffStep creates a sniff step.
func NewSniffStep() *SniffStep {
	return &SniffStep{}
}

// Name returns the step name.
func (s *SniffStep) Name() string {
	return StepSniff
}

// Do executes the sniff step.
func (s *SniffStep) Do(_ context.Context, report *model.ReadReport) error {
	report.Format = imaging.Sniff(report.Body)
	return nil
}

// DecodeStep decodes the fetched bytes into pixels and releases the bytes.
type DecodeStep struct{}

// NewDecodeStep creates a decode step.
func NewDecodeStep() *DecodeStep {
	return &DecodeStep{}
}

// Name returns the step name.
func (s *DecodeStep) Name() string {
	return StepDecode
}

// Do executes the decode step.
func (s *DecodeStep) Do(_ context.Context, report *model.ReadReport) error {
	buf, err := imaging.Decode(report.Body, report.Format)
	report.Body = nil
	if err != nil {
		if errors.Is(err, imaging.ErrDecodePanic) {
			return outcome.Wrap(outcome.KindException, err)
		}
		return outcome.Wrap(outcome.KindUnsupportedFormat, err)
	}

	report.Width = buf.Width
	report.Height = buf.Height
	report.Pixels = buf
	return nil
}

// RecognizeStep looks for a QR symbol in the decoded pixels.
type RecognizeStep struct {
	recognizer qr.Recognizer
	logger     *slog.Logger
}

// RecognizeStepOption configures a RecognizeStep.
type RecognizeStepOption func(*RecognizeStep)

// WithRecognizeLogger sets a custom logger for the recognize step.
func WithRecognizeLogger(logger *slog.Logger) RecognizeStepOption {
	return func(s *RecognizeStep) {
		s.logger = logger
	}
}

// NewRecognizeStep creates a recognize step backed by r.
func NewRecognizeStep(r qr.Recognizer, opts ...RecognizeStepOption) *RecognizeStep {
	s := &RecognizeStep{
		recognizer: r,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RecognizeStep) Name() string {
	return StepRecognize
}

// Do executes the recognize step. Not finding a symbol is a ParseError.
func (s *RecognizeStep) Do(_ context.Context, report *model.ReadReport) error {
	res, err := s.recognizer.Recognize(report.Pixels)
	report.Pixels = nil
	if err != nil {
		return outcome.Wrap(outcome.KindException, err)
	}
	if !res.Found {
		return outcome.Wrap(outcome.KindParseError, ErrNoSymbol)
	}

	s.logger.Debug("QR symbol decoded", "url", report.URL, "length", len(res.Text))
	report.Succeed(res.Text)
	return nil
}

// DefaultPipeline creates a pipeline with the four read steps in order:
// fetch, sniff, decode and recognize.
func DefaultPipeline(f Fetcher, r qr.Recognizer, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewFetchStep(f),
		NewSniffStep(),
		NewDecodeStep(),
		NewRecognizeStep(r, WithRecognizeLogger(p.logger)),
	)

	return p
}
