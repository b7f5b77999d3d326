package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/feichai0017/churn-insight/pkg/logger"
	"github.com/feichai0017/churn-insight/pkg/storage/local"
)

// StorageType 定义存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
)

// Storage 接口定义. Every pipeline stage reads its input dataset and writes
// its output dataset through this interface; keys are paths relative to the
// data root (e.g. "raw/telco_customer_churn_simulated.csv").
type Storage interface {
	// Store 存储文件
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get 获取文件
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Exists reports whether a dataset is present.
	Exists(ctx context.Context, key string) bool
	// Delete 删除文件
	Delete(ctx context.Context, key string) error
}

// NewStorage 创建存储实例的工厂方法
func NewStorage(storageType StorageType, baseDir string, logger logger.Logger) (Storage, error) {
	switch storageType {
	case StorageTypeLocal:
		return local.NewClient(baseDir, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
