package pipeline

import (
	"context"
	"log/slog"
)

// Step is one stage of a build.
//
// Design decision: We use an interface rather than function types because:
// 1. Steps carry their own dependencies (crawler, writers, database)
// 2. Name() gives every step a stable label for logs and CompletedSteps
type Step interface {
	// Do runs the step. A returned error stops the pipeline; problems that
	// should not fail the build are logged and nil is returned.
	Do(ctx context.Context, build *Build) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
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
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence and stops at the first error, which
// is also stored in build.Err.
//
// Cancellation is checked before each step. Steps that block check ctx
// themselves.
func (p *Pipeline) Execute(ctx context.Context, build *Build) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			build.Err = ctx.Err()
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"root", build.Root,
		)

		if err := step.Do(ctx, build); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"root", build.Root,
				"error", err,
			)
			build.Err = err
			return err
		}

		build.CompletedSteps = append(build.CompletedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
