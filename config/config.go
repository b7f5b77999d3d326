package config

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	pipelineOnce   sync.Once
	pipelineConfig *PipelineConfig
)

// GeneratorConfig 数据生成配置
type GeneratorConfig struct {
	Customers int   `yaml:"customers"`
	Seed      int64 `yaml:"seed"`
}

// ModelConfig holds the forest hyperparameters and the split seed.
type ModelConfig struct {
	Trees     int     `yaml:"trees"`
	MaxDepth  int     `yaml:"maxDepth"`
	TestRatio float64 `yaml:"testRatio"`
	Seed      int64   `yaml:"seed"`
}

// FilesConfig lists the dataset keys, relative to the data directory. The
// stages are separate binaries; these shared paths are their only contract.
type FilesConfig struct {
	Raw        string `yaml:"raw"`
	Analytical string `yaml:"analytical"`
	ModelInput string `yaml:"modelInput"`
	Gold       string `yaml:"gold"`
	ReportDir  string `yaml:"reportDir"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"outputPaths"`
}

type PipelineConfig struct {
	DataDir   string          `yaml:"dataDir"`
	Generator GeneratorConfig `yaml:"generator"`
	Model     ModelConfig     `yaml:"model"`
	Files     FilesConfig     `yaml:"files"`
	Logging   LoggingConfig   `yaml:"logging"`
}

func defaults() *PipelineConfig {
	return &PipelineConfig{
		DataDir: "data",
		Generator: GeneratorConfig{
			Customers: 5000,
			Seed:      42,
		},
		Model: ModelConfig{
			Trees:     100,
			MaxDepth:  10,
			TestRatio: 0.2,
			Seed:      42,
		},
		Files: FilesConfig{
			Raw:        "raw/telco_customer_churn_simulated.csv",
			Analytical: "processed/churn_data_analytical.csv",
			ModelInput: "processed/churn_data_model_input.csv",
			Gold:       "processed/PROJECT_GOLD_DATASET_POWERBI.csv",
			ReportDir:  "reports",
		},
		Logging: LoggingConfig{
			Level:       "info",
			Encoding:    "console",
			OutputPaths: []string{"stdout"},
		},
	}
}

// GetPipelineConfig loads the pipeline configuration once per process:
// defaults, then the YAML file, then environment overrides.
func GetPipelineConfig() *PipelineConfig {
	pipelineOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found, falling back to environment variables")
		}

		cfg := defaults()

		path := os.Getenv("CHURN_CONFIG")
		if path == "" {
			path = "configs/pipeline.yaml"
		}
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				log.Printf("Warning: invalid config file %s: %v, using defaults", path, err)
				cfg = defaults()
			}
		}

		if dir := os.Getenv("CHURN_DATA_DIR"); dir != "" {
			cfg.DataDir = dir
		}
		if level := os.Getenv("CHURN_LOG_LEVEL"); level != "" {
			cfg.Logging.Level = level
		}

		pipelineConfig = cfg
	})
	return pipelineConfig
}

// Load parses a pipeline config from a specific file, bypassing the process
// wide singleton. Used by tests and the orchestrator.
func Load(path string) (*PipelineConfig, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
