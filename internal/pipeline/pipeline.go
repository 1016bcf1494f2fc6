package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/qrreader/internal/model"
	"github.com/nao1215/qrreader/internal/outcome"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the report
// filled in by previous steps.
type Step interface {
	// Do executes the step. A failure must be returned as an
	// *outcome.Error so that it maps to the right error code; any other
	// error is reported as an Exception.
	Do(ctx context.Context, report *model.ReadReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// A Pipeline holds no per-run state and is safe for concurrent use once
// all steps have been added.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and stops at the first
// failure, which is recorded in the report and returned.
//
// Cancellation is checked before each step; a cancelled run is an
// Exception. Steps handle their own timeouts.
func (p *Pipeline) Execute(ctx context.Context, report *model.ReadReport) error {
	logger := p.logger.With("request_id", report.RequestID)

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			err := outcome.Wrap(outcome.KindException, ctx.Err())
			report.Fail(err)
			return err
		default:
		}

		logger.Debug("executing step",
			"step", step.Name(),
			"url", report.URL,
		)

		report.AddStep(step.Name())

		if err := step.Do(ctx, report); err != nil {
			report.Fail(err)

			level := slog.LevelInfo
			if report.Outcome.Kind() == outcome.KindException {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "step failed",
				"step", step.Name(),
				"url", report.URL,
				"kind", report.Outcome.Kind().String(),
				"error", err,
			)
			return err
		}

		logger.Debug("step completed",
			"step", step.Name(),
			"url", report.URL,
		)
	}

	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
