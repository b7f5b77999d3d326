package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feichai0017/churn-insight/internal/models"
	"github.com/feichai0017/churn-insight/pkg/logger"
	"github.com/feichai0017/churn-insight/pkg/storage"
)

func TestChurnProbabilityRules(t *testing.T) {
	tests := []struct {
		name string
		rec  models.CustomerRecord
		want float64
	}{
		{
			name: "base rate only",
			rec: models.CustomerRecord{
				Contract: "none", InternetService: string(models.DSL),
				PaymentMethod: string(models.MailedCheck),
				TenureMonths:  24, MonthlyCharges: 50, Dependents: "No",
			},
			want: 0.20,
		},
		{
			name: "month-to-month adds 0.40",
			rec: models.CustomerRecord{
				Contract: string(models.MonthToMonth), InternetService: string(models.DSL),
				PaymentMethod: string(models.MailedCheck),
				TenureMonths:  24, MonthlyCharges: 50, Dependents: "No",
			},
			want: 0.60,
		},
		{
			name: "new and expensive customer adds 0.25",
			rec: models.CustomerRecord{
				Contract: "none", InternetService: string(models.DSL),
				PaymentMethod: string(models.MailedCheck),
				TenureMonths:  6, MonthlyCharges: 80, Dependents: "No",
			},
			want: 0.45,
		},
		{
			name: "all risk factors clip at 1",
			rec: models.CustomerRecord{
				Contract:        string(models.MonthToMonth),
				InternetService: string(models.FiberOptic),
				PaymentMethod:   string(models.ElectronicCheck),
				TenureMonths:    6, MonthlyCharges: 99, Dependents: "No",
			},
			want: 1.0, // 0.20+0.40+0.15+0.10+0.25 = 1.10 clipped
		},
		{
			name: "all retention factors clip at 0",
			rec: models.CustomerRecord{
				Contract: string(models.TwoYear), InternetService: string(models.NoInternet),
				PaymentMethod: string(models.CreditCard),
				TenureMonths:  66, MonthlyCharges: 30, Dependents: "Yes",
			},
			want: 0.0, // 0.20-0.50-0.10-0.20 = -0.60 clipped
		},
		{
			name: "one year contract reduces 0.30",
			rec: models.CustomerRecord{
				Contract: string(models.OneYear), InternetService: string(models.DSL),
				PaymentMethod: string(models.MailedCheck),
				TenureMonths:  24, MonthlyCharges: 50, Dependents: "No",
			},
			want: 0.0, // 0.20-0.30 clipped
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, ChurnProbability(tt.rec), 1e-9)
		})
	}
}

func TestChurnProbabilityAlwaysInUnitInterval(t *testing.T) {
	gen := NewGenerator(500, 7, logger.NewTestLogger())
	records, err := gen.Generate()
	require.NoError(t, err)

	for _, rec := range records {
		p := ChurnProbability(rec)
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 1.0)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := NewGenerator(200, 42, logger.NewTestLogger()).Generate()
	require.NoError(t, err)
	b, err := NewGenerator(200, 42, logger.NewTestLogger()).Generate()
	require.NoError(t, err)

	require.Equal(t, a, b, "same seed must reproduce the exact same records")

	c, err := NewGenerator(200, 43, logger.NewTestLogger()).Generate()
	require.NoError(t, err)
	require.NotEqual(t, a, c, "different seeds should diverge")
}

func TestGenerateInvariants(t *testing.T) {
	records, err := NewGenerator(300, 42, logger.NewTestLogger()).Generate()
	require.NoError(t, err)
	require.Len(t, records, 300)

	seen := map[string]bool{}
	for _, rec := range records {
		require.GreaterOrEqual(t, rec.TotalCharges, 0.0)
		require.GreaterOrEqual(t, rec.TenureMonths, 1)
		require.LessOrEqual(t, rec.TenureMonths, 72)
		require.GreaterOrEqual(t, rec.MonthlyCharges, 18.25)
		require.LessOrEqual(t, rec.MonthlyCharges, 118.75)
		require.Contains(t, []string{"Yes", "No"}, rec.Churn)
		require.False(t, seen[rec.CustomerID], "customer ids must be unique")
		seen[rec.CustomerID] = true
	}
}

func TestRunWritesByteIdenticalCSV(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger()

	write := func(dir string) []byte {
		store, err := storage.NewStorage(storage.StorageTypeLocal, dir, log)
		require.NoError(t, err)

		gen := NewGenerator(100, 42, log)
		require.NoError(t, gen.Run(ctx, store, "raw/customers.csv"))

		data, err := os.ReadFile(filepath.Join(dir, "raw", "customers.csv"))
		require.NoError(t, err)
		return data
	}

	first := write(t.TempDir())
	second := write(t.TempDir())
	require.Equal(t, first, second, "same seed and N must produce byte-identical output")

	header := strings.SplitN(string(first), "\n", 2)[0]
	require.Equal(t, strings.Join(models.RawColumns, ","), header)
	require.NotContains(t, header, "churn_probability",
		"the internal probability must not be persisted")
}
