package features

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/feichai0017/churn-insight/internal/models"
)

// Columns excluded from the model input: identifiers and cohort labels carry
// no predictive signal (the cohort duplicates tenure_months).
var modelInputDrops = map[string]bool{
	"customer_id":         true,
	models.ColTenureGroup: true,
}

// EncodeModelInput converts the engineered table into a purely numeric one:
// the churn label becomes 0/1 and every remaining categorical column is
// one-hot expanded in place.
//
// Category ordering is canonical: the distinct values of a column are sorted
// lexicographically and the first is dropped as the reference category (its
// presence is the all-zeros row). Fixing the ordering here is what keeps the
// encoded column layout identical across independent runs, so a model
// trained on one export never sees shifted columns from another.
func EncodeModelInput(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	var out []series.Series

	for _, name := range df.Names() {
		if modelInputDrops[name] {
			continue
		}
		col := df.Col(name)

		if name == "churn" {
			labels := make([]int, df.Nrow())
			for i, v := range col.Records() {
				if v == "Yes" {
					labels[i] = 1
				}
			}
			out = append(out, series.New(labels, series.Int, "churn"))
			continue
		}

		switch col.Type() {
		case series.Int, series.Float, series.Bool:
			out = append(out, col)
		default:
			out = append(out, oneHot(name, col.Records())...)
		}
	}

	encoded := dataframe.New(out...)
	if encoded.Error() != nil {
		return encoded, fmt.Errorf("failed to assemble model input: %w", encoded.Error())
	}
	return encoded, nil
}

// oneHot expands one categorical column into indicator columns named
// "<column>_<category>", one per category except the dropped reference.
func oneHot(name string, values []string) []series.Series {
	categories := Categories(values)
	if len(categories) < 2 {
		// A constant column carries no information once the reference
		// category is dropped.
		return nil
	}

	cols := make([]series.Series, 0, len(categories)-1)
	for _, cat := range categories[1:] {
		indicator := make([]int, len(values))
		for i, v := range values {
			if v == cat {
				indicator[i] = 1
			}
		}
		cols = append(cols, series.New(indicator, series.Int, name+"_"+cat))
	}
	return cols
}

// Categories returns the distinct values of a column in canonical (sorted)
// order. The first entry is the reference category the encoder drops.
func Categories(values []string) []string {
	seen := map[string]bool{}
	var cats []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			cats = append(cats, v)
		}
	}
	sort.Strings(cats)
	return cats
}

// DecodeOneHot recovers the original category from the indicator columns of
// a single encoded row. An all-zeros row decodes to the dropped reference
// category.
func DecodeOneHot(categories []string, indicators []int) (string, error) {
	if len(indicators) != len(categories)-1 {
		return "", fmt.Errorf("expected %d indicator columns, got %d", len(categories)-1, len(indicators))
	}
	for i, v := range indicators {
		if v == 1 {
			return categories[i+1], nil
		}
	}
	return categories[0], nil
}
