package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/qrreader/internal/model"
	"github.com/nao1215/qrreader/internal/outcome"
)

// DefaultProcessTimeout bounds a whole read when no timeout is configured.
const DefaultProcessTimeout = 20 * time.Second

// ErrAbandoned is the cause of an Exception reported when a read did not
// finish before its deadline.
var ErrAbandoned = errors.New("read abandoned after deadline")

type requestIDKey struct{}

// ContextWithRequestID returns a context carrying a request ID that is
// copied into every report produced under it.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Processor runs one pipeline per read under a deadline.
// It is safe for concurrent use; every call gets its own report.
type Processor struct {
	pipeline *Pipeline
	timeout  time.Duration
	logger   *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessTimeout sets the deadline of a whole read.
func WithProcessTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProcessorLogger sets a custom logger for the processor.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor running p.
func NewProcessor(p *Pipeline, opts ...ProcessorOption) *Processor {
	proc := &Processor{
		pipeline: p,
		timeout:  DefaultProcessTimeout,
	}

	for _, opt := range opts {
		opt(proc)
	}

	if proc.logger == nil {
		proc.logger = slog.Default()
	}

	proc.logger.Debug("processor ready",
		"steps", strings.Join(p.StepNames(), ","),
		"timeout", proc.timeout,
	)

	return proc
}

// Process reads url and returns the terminal outcome.
func (p *Processor) Process(ctx context.Context, url string) outcome.Outcome {
	return p.Run(ctx, url).Outcome
}

// Run reads url and returns the full report.
//
// The pipeline runs in its own goroutine. If the deadline passes first the
// run is abandoned and an Exception report is returned; the abandoned
// goroutine finishes on its own and its report is discarded. A failed
// report that arrives after ctx has ended is also reported as abandoned, so
// a cancelled read never surfaces as whatever error the interrupted step
// happened to return.
func (p *Processor) Run(ctx context.Context, url string) *model.ReadReport {
	requestID := RequestIDFromContext(ctx)
	p.logger.Info("read request", "url", url, "request_id", requestID)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan *model.ReadReport, 1)

	go func() {
		report := model.NewReadReport(url)
		report.RequestID = requestID
		report.DateRead = start
		_ = p.pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report
		report.Duration = time.Since(start)
		done <- report
	}()

	select {
	case report := <-done:
		if report.Succeeded() || ctx.Err() == nil {
			return report
		}
		return p.abandoned(ctx, url, requestID, start)
	case <-ctx.Done():
		return p.abandoned(ctx, url, requestID, start)
	}
}

// abandoned builds the Exception report for a read whose context ended.
func (p *Processor) abandoned(ctx context.Context, url, requestID string, start time.Time) *model.ReadReport {
	p.logger.Warn("read abandoned",
		"url", url,
		"request_id", requestID,
		"reason", ctx.Err(),
	)
	report := model.NewReadReport(url)
	report.RequestID = requestID
	report.DateRead = start
	report.Duration = time.Since(start)
	report.Fail(outcome.Wrap(outcome.KindException, errors.Join(ErrAbandoned, ctx.Err())))
	return report
}
