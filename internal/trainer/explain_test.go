package trainer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feichai0017/churn-insight/internal/models"
)

func TestDominantReason(t *testing.T) {
	names := []string{"contract_Two year", "internet_service_Fiber optic", "tenure_months"}

	tests := []struct {
		name     string
		contribs []float64
		want     string
		ok       bool
	}{
		{"single positive", []float64{-0.1, 0.3, 0.05}, "internet_service_Fiber optic", true},
		{"tie resolves to first in column order", []float64{0.2, 0.2, 0.1}, "contract_Two year", true},
		{"all negative", []float64{-0.4, -0.1, -0.02}, "", false},
		{"all zero", []float64{0, 0, 0}, "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DominantReason(tt.contribs, names)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRiskSegmentBoundaries(t *testing.T) {
	tests := []struct {
		p    float64
		want models.RiskSegment
	}{
		{0.0, models.LowRisk},
		{0.30, models.LowRisk},
		{0.3000001, models.MediumRisk},
		{0.70, models.MediumRisk},
		{0.7000001, models.HighRisk},
		{1.0, models.HighRisk},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, RiskSegmentFor(tt.p), "probability %v", tt.p)
	}
}

func TestNormalizeAttributionsTensorLayout(t *testing.T) {
	// 2 records, 3 features, 2 classes, laid out [record][feature][class].
	raw := [][][]float64{
		{{0.1, -0.1}, {0.2, -0.2}, {0.3, -0.3}},
		{{0.4, -0.4}, {0.5, -0.5}, {0.6, -0.6}},
	}

	got, err := NormalizeAttributions(raw, 2, 3, 2, 1)
	require.NoError(t, err)
	require.Equal(t, [][]float64{
		{-0.1, -0.2, -0.3},
		{-0.4, -0.5, -0.6},
	}, got)
}

func TestNormalizeAttributionsPerClassLayout(t *testing.T) {
	// 2 classes, 3 records, 2 features, laid out [class][record][feature].
	raw := [][][]float64{
		{{1, 2}, {3, 4}, {5, 6}},
		{{-1, -2}, {-3, -4}, {-5, -6}},
	}

	got, err := NormalizeAttributions(raw, 3, 2, 2, 1)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{-1, -2}, {-3, -4}, {-5, -6}}, got)
}

func TestNormalizeAttributionsRejectsUnknownShapes(t *testing.T) {
	raw := [][][]float64{{{1, 2, 3}}}

	_, err := NormalizeAttributions(raw, 2, 3, 2, 1)
	require.ErrorIs(t, err, models.ErrShapeMismatch)

	_, err = NormalizeAttributions(raw, 1, 1, 3, 5)
	require.ErrorIs(t, err, models.ErrShapeMismatch)
}

func TestHumanizeReason(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"contract_Month-to-month", "Contract Month-To-Month"},
		{"payment_method_Electronic check", "Payment Method Electronic Check"},
		{"payment_method_Credit card (automatic)", "Payment Method Credit Card (Automatic)"},
		{"tenure_months", "Tenure Months"},
		{"internet_service_Fiber optic", "Internet Service Fiber Optic"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, HumanizeReason(tt.in))
	}
}
