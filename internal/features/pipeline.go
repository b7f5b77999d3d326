package features

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/feichai0017/churn-insight/internal/models"
	"github.com/feichai0017/churn-insight/pkg/logger"
	"github.com/feichai0017/churn-insight/pkg/storage"
)

// serviceColumns is the fixed whitelist used for the service-density count.
// Columns absent from the input are silently skipped, which tolerates schema
// drift between simulation versions.
var serviceColumns = []string{
	"phone_service", "multiple_lines", "internet_service", "online_security",
	"online_backup", "device_protection", "tech_support", "streaming_tv",
	"streaming_movies",
}

// notAService contains the values that do not count as an active service.
var notAService = map[string]bool{
	"No":                             true,
	models.NoInternetServiceSentinel: true,
	models.NoPhoneServiceSentinel:    true,
}

// Pipeline transforms the raw table into the analytical dataset and the
// numeric model-input dataset. Load must run before Engineer; Engineer
// before the exports.
type Pipeline struct {
	store   storage.Storage
	logger  logger.Logger
	rawKey  string
	anaKey  string
	mlKey   string
	df      dataframe.DataFrame
	loaded  bool
	derived bool
}

func NewPipeline(store storage.Storage, rawKey, analyticalKey, modelInputKey string, log logger.Logger) *Pipeline {
	return &Pipeline{
		store:  store,
		logger: log,
		rawKey: rawKey,
		anaKey: analyticalKey,
		mlKey:  modelInputKey,
	}
}

// Load reads the raw dataset. A missing input file aborts the stage with
// models.ErrNotFound naming the path.
func (p *Pipeline) Load(ctx context.Context) error {
	rc, err := p.store.Get(ctx, p.rawKey)
	if err != nil {
		return err
	}
	defer rc.Close()

	df := dataframe.ReadCSV(rc)
	if df.Error() != nil {
		return fmt.Errorf("failed to parse raw dataset: %w", df.Error())
	}

	p.df = df
	p.loaded = true
	p.logger.Info("Raw dataset loaded",
		logger.Int("rows", df.Nrow()),
		logger.Int("cols", df.Ncol()),
	)
	return nil
}

// Engineer appends the derived columns: tenure cohort, service density and
// the automatic-payment flag.
func (p *Pipeline) Engineer() error {
	if !p.loaded {
		return fmt.Errorf("%w: run Load before Engineer", models.ErrNotLoaded)
	}

	n := p.df.Nrow()

	tenure := p.df.Col("tenure_months").Float()
	cohorts := make([]string, n)
	for i, months := range tenure {
		cohorts[i] = TenureCohort(int(months))
	}
	p.df = p.df.Mutate(series.New(cohorts, series.String, models.ColTenureGroup))

	p.df = p.df.Mutate(series.New(p.serviceDensity(), series.Int, models.ColTotalServices))

	payments := p.df.Col("payment_method").Records()
	autoPay := make([]int, n)
	for i, method := range payments {
		if strings.Contains(method, "automatic") {
			autoPay[i] = 1
		}
	}
	p.df = p.df.Mutate(series.New(autoPay, series.Int, models.ColIsAutoPayment))

	p.derived = true
	p.logger.Info("Feature engineering completed", logger.Int("cols", p.df.Ncol()))
	return nil
}

// serviceDensity counts, per customer, the whitelist columns whose value is
// an actual service rather than "No" or a not-applicable sentinel.
func (p *Pipeline) serviceDensity() []int {
	present := map[string]bool{}
	for _, name := range p.df.Names() {
		present[name] = true
	}

	counts := make([]int, p.df.Nrow())
	for _, col := range serviceColumns {
		if !present[col] {
			continue
		}
		for i, val := range p.df.Col(col).Records() {
			if !notAService[val] {
				counts[i]++
			}
		}
	}
	return counts
}

// TenureCohort buckets tenure months into the reporting cohorts. Intervals
// are half-open, left-inclusive: [0,12) [12,24) [24,48) [48,inf).
func TenureCohort(months int) string {
	switch {
	case months < 12:
		return "0-1 Year"
	case months < 24:
		return "1-2 Years"
	case months < 48:
		return "2-4 Years"
	default:
		return "4+ Years"
	}
}

// ExportAnalytical writes the human-readable dataset.
func (p *Pipeline) ExportAnalytical(ctx context.Context) error {
	if !p.derived {
		return fmt.Errorf("%w: run Engineer before ExportAnalytical", models.ErrNotLoaded)
	}
	return p.write(ctx, p.df, p.anaKey)
}

// ExportModelInput one-hot encodes the engineered table and writes the
// numeric dataset for the trainer.
func (p *Pipeline) ExportModelInput(ctx context.Context) error {
	if !p.derived {
		return fmt.Errorf("%w: run Engineer before ExportModelInput", models.ErrNotLoaded)
	}

	encoded, err := EncodeModelInput(p.df)
	if err != nil {
		return fmt.Errorf("failed to encode model input: %w", err)
	}
	return p.write(ctx, encoded, p.mlKey)
}

func (p *Pipeline) write(ctx context.Context, df dataframe.DataFrame, key string) error {
	var buf bytes.Buffer
	if err := df.WriteCSV(&buf); err != nil {
		return fmt.Errorf("failed to encode dataset %s: %w", key, err)
	}
	path, err := p.store.Store(ctx, &buf, key)
	if err != nil {
		return err
	}
	p.logger.Info("Dataset written",
		logger.String("path", path),
		logger.Int("rows", df.Nrow()),
		logger.Int("cols", df.Ncol()),
	)
	return nil
}

// Run orchestrates the stage: load, engineer, export both projections.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Load(ctx); err != nil {
		return err
	}
	if err := p.Engineer(); err != nil {
		return err
	}
	if err := p.ExportAnalytical(ctx); err != nil {
		return err
	}
	return p.ExportModelInput(ctx)
}
