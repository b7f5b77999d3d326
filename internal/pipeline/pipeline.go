package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/feichai0017/churn-insight/pkg/logger"
)

// Stage is one batch step of the pipeline. Stages never call each other in
// process; their only contract is the dataset files they read and write.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

type stageFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (s stageFunc) Name() string                  { return s.name }
func (s stageFunc) Run(ctx context.Context) error { return s.fn(ctx) }

// StageFunc wraps a function as a Stage.
func StageFunc(name string, fn func(ctx context.Context) error) Stage {
	return stageFunc{name: name, fn: fn}
}

// Runner executes stages strictly in order, aborting on the first failure.
// A cancelled context stops the run before the next stage starts; the stage
// already running finishes, so its output files stay consistent. There is no
// retry and no partial resume: a failed run is re-run from the stage that
// failed, whose inputs are still on disk.
type Runner struct {
	stages []Stage
	logger logger.Logger
}

func NewRunner(log logger.Logger, stages ...Stage) *Runner {
	return &Runner{stages: stages, logger: log}
}

func (r *Runner) Run(ctx context.Context) error {
	for i, stage := range r.stages {
		// Stages are not required to watch the context themselves, so the
		// cancellation point between stages is the only guaranteed one.
		if err := ctx.Err(); err != nil {
			r.logger.Warn("Pipeline interrupted",
				logger.String("next", stage.Name()),
			)
			return fmt.Errorf("pipeline interrupted before stage %s: %w", stage.Name(), err)
		}

		r.logger.Info("Stage starting",
			logger.String("stage", stage.Name()),
			logger.Int("position", i+1),
			logger.Int("total", len(r.stages)),
		)
		start := time.Now()

		if err := stage.Run(ctx); err != nil {
			r.logger.Error("Stage failed",
				logger.String("stage", stage.Name()),
				logger.Error(err),
			)
			return fmt.Errorf("stage %s failed: %w", stage.Name(), err)
		}

		r.logger.Info("Stage completed",
			logger.String("stage", stage.Name()),
			logger.Duration("elapsed", time.Since(start)),
		)
	}
	return nil
}
