package dataset

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"

	"github.com/feichai0017/churn-insight/internal/models"
	"github.com/feichai0017/churn-insight/pkg/logger"
	"github.com/feichai0017/churn-insight/pkg/storage"
)

// Base churn rate and the additive rule weights that inject causal signal
// into the simulated labels. The model stage has to recover exactly these
// patterns, so they are fixed constants rather than configuration.
const (
	baseChurnRate = 0.20

	weightMonthToMonth    = 0.40
	weightFiberOptic      = 0.15
	weightElectronicCheck = 0.10
	weightNewAndExpensive = 0.25
	weightTwoYear         = -0.50
	weightOneYear         = -0.30
	weightDependents      = -0.10
	weightLongTenure      = -0.20
)

// Generator produces a reproducible synthetic customer table. The RNG is
// threaded explicitly so concurrent pipeline runs never share random state.
type Generator struct {
	count  int
	rnd    *rand.Rand
	logger logger.Logger
}

func NewGenerator(count int, seed int64, log logger.Logger) *Generator {
	return &Generator{
		count:  count,
		rnd:    rand.New(rand.NewSource(seed)),
		logger: log,
	}
}

// Generate returns count customer records with the churn label already
// drawn. The per-record probability used for the draw is deliberately not
// part of the record, so the label is the only churn signal persisted.
func (g *Generator) Generate() ([]models.CustomerRecord, error) {
	records := make([]models.CustomerRecord, g.count)
	for i := range records {
		rec, err := g.sampleProfile()
		if err != nil {
			return nil, err
		}
		rec.TotalCharges = g.totalCharges(rec.TenureMonths, rec.MonthlyCharges)

		p := ChurnProbability(rec)
		if g.rnd.Float64() < p {
			rec.Churn = "Yes"
		} else {
			rec.Churn = "No"
		}
		records[i] = rec
	}
	return records, nil
}

func (g *Generator) sampleProfile() (models.CustomerRecord, error) {
	id, err := uuid.NewRandomFromReader(g.rnd)
	if err != nil {
		return models.CustomerRecord{}, fmt.Errorf("failed to generate customer id: %w", err)
	}

	return models.CustomerRecord{
		CustomerID:    id.String(),
		Gender:        choice(g.rnd, "Male", "Female"),
		SeniorCitizen: g.rnd.Intn(2),
		Partner:       choice(g.rnd, "Yes", "No"),
		Dependents:    choice(g.rnd, "Yes", "No"),
		TenureMonths:  1 + g.rnd.Intn(72),
		PhoneService:  "Yes",
		MultipleLines: choice(g.rnd, models.NoPhoneServiceSentinel, "No", "Yes"),
		InternetService: choice(g.rnd,
			string(models.DSL), string(models.FiberOptic), string(models.NoInternet)),
		Contract: choice(g.rnd,
			string(models.MonthToMonth), string(models.OneYear), string(models.TwoYear)),
		PaperlessBilling: choice(g.rnd, "Yes", "No"),
		PaymentMethod: choice(g.rnd,
			string(models.ElectronicCheck), string(models.MailedCheck),
			string(models.BankTransfer), string(models.CreditCard)),
		MonthlyCharges: round2(18.25 + g.rnd.Float64()*(118.75-18.25)),
	}, nil
}

// totalCharges is tenure times monthly charges plus small Gaussian noise,
// floored at zero.
func (g *Generator) totalCharges(tenure int, monthly float64) float64 {
	total := float64(tenure)*monthly + g.rnd.NormFloat64()*5
	if total < 0 {
		return 0
	}
	return round2(total)
}

// ChurnProbability applies the weighted churn rules to one record and clips
// the result to [0,1]. Exported so the injected signal is testable directly;
// the value itself never leaves this stage.
func ChurnProbability(rec models.CustomerRecord) float64 {
	p := baseChurnRate

	switch models.Contract(rec.Contract) {
	case models.MonthToMonth:
		p += weightMonthToMonth
	case models.TwoYear:
		p += weightTwoYear
	case models.OneYear:
		p += weightOneYear
	}

	if models.InternetService(rec.InternetService) == models.FiberOptic {
		p += weightFiberOptic
	}
	if models.PaymentMethod(rec.PaymentMethod) == models.ElectronicCheck {
		p += weightElectronicCheck
	}
	if rec.TenureMonths < 12 && rec.MonthlyCharges > 70 {
		p += weightNewAndExpensive
	}
	if rec.Dependents == "Yes" {
		p += weightDependents
	}
	if rec.TenureMonths > 60 {
		p += weightLongTenure
	}

	return clip01(p)
}

// Run generates the dataset and writes the raw CSV through the store.
func (g *Generator) Run(ctx context.Context, store storage.Storage, key string) error {
	g.logger.Info("Generating synthetic customer dataset",
		logger.Int("customers", g.count),
	)

	records, err := g.Generate()
	if err != nil {
		return err
	}

	df := dataframe.LoadStructs(records)
	if df.Error() != nil {
		return fmt.Errorf("failed to build dataframe: %w", df.Error())
	}

	var buf bytes.Buffer
	if err := df.WriteCSV(&buf); err != nil {
		return fmt.Errorf("failed to encode raw dataset: %w", err)
	}

	path, err := store.Store(ctx, &buf, key)
	if err != nil {
		return err
	}

	g.logger.Info("Raw dataset written",
		logger.String("path", path),
		logger.Int("rows", len(records)),
	)
	return nil
}

func choice(rnd *rand.Rand, opts ...string) string {
	return opts[rnd.Intn(len(opts))]
}

func clip01(p float64) float64 {
	return math.Min(1, math.Max(0, p))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
