package main

import (
	"context"
	"os"

	"github.com/feichai0017/churn-insight/config"
	"github.com/feichai0017/churn-insight/internal/features"
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

	pipe := features.NewPipeline(store,
		cfg.Files.Raw, cfg.Files.Analytical, cfg.Files.ModelInput,
		log.Named("features"))
	if err := pipe.Run(context.Background()); err != nil {
		log.Error("Feature pipeline failed", logger.Error(err))
		os.Exit(1)
	}
}
