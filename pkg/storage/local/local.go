package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/feichai0017/churn-insight/internal/models"
	"github.com/feichai0017/churn-insight/pkg/logger"
)

// LocalStorage keeps datasets on the local filesystem under a base directory.
// The pipeline has no object store; stages hand files to each other through
// the data directory only.
type LocalStorage struct {
	baseDir string
	logger  logger.Logger
}

func NewClient(baseDir string, log logger.Logger) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local storage: empty base directory")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", baseDir, err)
	}
	return &LocalStorage{baseDir: baseDir, logger: log}, nil
}

// Store 实现 Storage 接口的 Store 方法
func (s *LocalStorage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	path := filepath.Join(s.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	f, err := os.Create(path)
	if err != nil {
		s.logger.Error("Failed to create dataset file",
			logger.String("path", path),
			logger.Error(err),
		)
		return "", fmt.Errorf("failed to store dataset: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return "", fmt.Errorf("failed to write dataset %s: %w", key, err)
	}
	return path, nil
}

// Get 实现 Storage 接口的 Get 方法. A missing file is reported as
// models.ErrNotFound so stages can fail fast with the offending path.
func (s *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path := filepath.Join(s.baseDir, key)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	return f, nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) bool {
	_, err := os.Stat(filepath.Join(s.baseDir, key))
	return err == nil
}

// Delete 实现 Storage 接口的 Delete 方法
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	path := filepath.Join(s.baseDir, key)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete dataset %s: %w", path, err)
	}
	return nil
}
