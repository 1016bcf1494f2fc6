package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/qrreader/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor reads multiple URLs concurrently.
// It uses errgroup to manage goroutines and respect the concurrency limit.
type BatchProcessor struct {
	// processor runs each read; it is shared since it holds no run state.
	processor *Processor

	// concurrency is the maximum number of concurrent reads.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent reads.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(processor *Processor, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		processor:   processor,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch reads every URL and returns the reports in input order.
//
// A failed read never stops the batch; its outcome is in its report. The
// error is non-nil only when ctx was cancelled, in which case reads that
// never started have a nil report.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.ReadReport, error) {
	results := make([]*model.ReadReport, len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(report *model.ReadReport, index int) {
		// Each goroutine owns a distinct index.
		results[index] = report
	})
	return results, err
}

// ProcessBatchWithCallback reads every URL and calls callback for each
// completed read with the index of its URL. The callback is called from the
// worker goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(report *model.ReadReport, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := bp.processor.Run(ctx, url)
			if !report.Succeeded() {
				bp.logger.Debug("read failed",
					"url", url,
					"kind", report.Outcome.Kind().String(),
				)
			}

			callback(report, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_urls", len(urls),
		"elapsed", time.Since(startTime),
	)

	return err
}
