package pipeline

import (
	"context"

	"github.com/feichai0017/churn-insight/config"
	"github.com/feichai0017/churn-insight/internal/dataset"
	"github.com/feichai0017/churn-insight/internal/features"
	"github.com/feichai0017/churn-insight/internal/report"
	"github.com/feichai0017/churn-insight/internal/trainer"
	"github.com/feichai0017/churn-insight/pkg/logger"
	"github.com/feichai0017/churn-insight/pkg/storage"
)

// BuildStages wires the four pipeline stages from configuration. Each stage
// keeps its own service; the factory only decides construction order and the
// shared file keys.
func BuildStages(cfg *config.PipelineConfig, store storage.Storage, log logger.Logger) []Stage {
	gen := dataset.NewGenerator(cfg.Generator.Customers, cfg.Generator.Seed, log.Named("generate"))

	feat := features.NewPipeline(store,
		cfg.Files.Raw, cfg.Files.Analytical, cfg.Files.ModelInput,
		log.Named("features"))

	train := trainer.NewTrainer(store, trainer.Config{
		Trees:     cfg.Model.Trees,
		MaxDepth:  cfg.Model.MaxDepth,
		TestRatio: cfg.Model.TestRatio,
		Seed:      cfg.Model.Seed,
	}, cfg.Files.ModelInput, cfg.Files.Analytical, cfg.Files.Gold, log.Named("train"))

	rep := report.NewReporter(store, cfg.Files.Gold, cfg.Files.ReportDir, log.Named("report"))

	return []Stage{
		StageFunc("generate", func(ctx context.Context) error { return gen.Run(ctx, store, cfg.Files.Raw) }),
		StageFunc("features", feat.Run),
		StageFunc("train", train.Run),
		StageFunc("report", rep.Run),
	}
}
