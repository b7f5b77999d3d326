package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/feichai0017/churn-insight/config"
	"github.com/feichai0017/churn-insight/internal/pipeline"
	"github.com/feichai0017/churn-insight/pkg/logger"
	"github.com/feichai0017/churn-insight/pkg/storage"
)

// Runs all four stages back to back. Each stage still consumes and produces
// only its dataset files, exactly as when run as a standalone binary.
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Interrupted, stopping after current stage")
		cancel()
	}()

	runner := pipeline.NewRunner(log, pipeline.BuildStages(cfg, store, log)...)
	if err := runner.Run(ctx); err != nil {
		log.Error("Pipeline failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info("Pipeline completed")
}
