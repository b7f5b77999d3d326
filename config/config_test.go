package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	yaml := `
dataDir: /tmp/churn
generator:
  customers: 250
model:
  trees: 20
  maxDepth: 4
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/tmp/churn", cfg.DataDir)
	require.Equal(t, 250, cfg.Generator.Customers)
	require.Equal(t, 20, cfg.Model.Trees)
	require.Equal(t, 4, cfg.Model.MaxDepth)
	require.Equal(t, "debug", cfg.Logging.Level)

	// Untouched keys keep their defaults.
	require.Equal(t, int64(42), cfg.Generator.Seed)
	require.InDelta(t, 0.2, cfg.Model.TestRatio, 1e-9)
	require.Equal(t, "raw/telco_customer_churn_simulated.csv", cfg.Files.Raw)
	require.Equal(t, "reports", cfg.Files.ReportDir)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataDir: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
