package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of builds a BatchProcessor runs at once
// unless configured otherwise.
const DefaultConcurrency = 4

// Target is one document of a batch.
type Target struct {
	Root  string
	Dest  string
	Title string
}

// BatchProcessor builds several independent documents concurrently.
//
// Design decision: We parallelize across documents, never inside one.
// A crawler and its registry belong to a single build, so every build gets
// a fresh pipeline from the factory.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each build.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent builds.
	concurrency int

	// generator is copied onto every build.
	generator string

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

// WithConcurrency sets the maximum number of concurrent builds.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithGenerator sets the generator written into every document.
func WithGenerator(generator string) BatchOption {
	return func(b *BatchProcessor) {
		b.generator = generator
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory is called once per target.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch builds every target and returns the builds in target order.
//
// A failing build does not stop the others; its error is stored in
// Build.Err. The returned error is only set when ctx is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []Target) ([]*Build, error) {
	bp.logger.Info("starting batch",
		"targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	builds := make([]*Build, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		build := NewBuild(target.Root, target.Dest)
		build.Title = target.Title
		build.Generator = bp.generator
		builds[i] = build

		g.Go(func() error {
			select {
			case <-gctx.Done():
				build.Err = gctx.Err()
				return gctx.Err()
			default:
			}

			bp.logger.Info("building",
				"root", target.Root,
				"index", i+1,
				"total", len(targets),
			)

			build.StartedAt = time.Now()
			// Failures are recorded on the build; the other targets keep going.
			if err := bp.pipelineFactory().Execute(gctx, build); err != nil {
				bp.logger.Warn("build failed",
					"root", target.Root,
					"error", err,
				)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	bp.logger.Info("batch complete",
		"targets", len(targets),
		"failed", countFailed(builds),
		"elapsed", time.Since(startTime),
	)

	return builds, err
}

func countFailed(builds []*Build) int {
	n := 0
	for _, b := range builds {
		if b.Err != nil {
			n++
		}
	}
	return n
}
