package main

import (
	"context"
	"os"

	"github.com/feichai0017/churn-insight/config"
	"github.com/feichai0017/churn-insight/internal/trainer"
	"github.com/feichai0017/churn-insight/pkg/logger"
	"github.com/feichai0017/churn-insight/pkg/storage"
)

func main() {
	cfg := config.GetPipelineConfig()

	log, err := logger.NewLogger(
		logger.WithLevel(cfg.Logging.Level),
		logger.WithEncoding(cfg.Logging.Encoding),
		logger.WithOutputPaths(cfg.Logging.OutputPaths),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	store, err := storage.NewStorage(storage.StorageTypeLocal, cfg.DataDir, log)
	if err != nil {
		log.Error("Failed to initialize storage", logger.Error(err))
		os.Exit(1)
	}

	t := trainer.NewTrainer(store, trainer.Config{
		Trees:     cfg.Model.Trees,
		MaxDepth:  cfg.Model.MaxDepth,
		TestRatio: cfg.Model.TestRatio,
		Seed:      cfg.Model.Seed,
	}, cfg.Files.ModelInput, cfg.Files.Analytical, cfg.Files.Gold, log.Named("train"))

	if err := t.Run(context.Background()); err != nil {
		log.Error("Training failed", logger.Error(err))
		os.Exit(1)
	}
}
