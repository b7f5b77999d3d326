package features

import (
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/require"
)

func TestEncodeModelInput(t *testing.T) {
	df := dataframe.ReadCSV(strings.NewReader(
		"customer_id,tenure_months,contract,tenure_group,churn\n" +
			"c-1,5,Month-to-month,0-1 Year,Yes\n" +
			"c-2,30,Two year,2-4 Years,No\n" +
			"c-3,13,One year,1-2 Years,No\n" +
			"c-4,2,Month-to-month,0-1 Year,No\n"))
	require.NoError(t, df.Error())

	encoded, err := EncodeModelInput(df)
	require.NoError(t, err)

	names := encoded.Names()
	require.NotContains(t, names, "customer_id")
	require.NotContains(t, names, "tenure_group")
	require.NotContains(t, names, "contract")

	// Categories sort to [Month-to-month, One year, Two year]; the first is
	// the dropped reference, so exactly two indicator columns remain.
	require.Contains(t, names, "contract_One year")
	require.Contains(t, names, "contract_Two year")
	require.NotContains(t, names, "contract_Month-to-month")

	require.Equal(t, []string{"1", "0", "0", "0"}, encoded.Col("churn").Records())
	require.Equal(t, []string{"0", "0", "1", "0"}, encoded.Col("contract_One year").Records())
	require.Equal(t, []string{"0", "1", "0", "0"}, encoded.Col("contract_Two year").Records())

	// Numeric columns pass through untouched.
	require.Equal(t, []string{"5", "30", "13", "2"}, encoded.Col("tenure_months").Records())
}

func TestEncodeIsStableAcrossRowOrder(t *testing.T) {
	a := dataframe.ReadCSV(strings.NewReader(
		"contract,churn\nTwo year,No\nMonth-to-month,Yes\nOne year,No\n"))
	b := dataframe.ReadCSV(strings.NewReader(
		"contract,churn\nMonth-to-month,Yes\nOne year,No\nTwo year,No\n"))

	ea, err := EncodeModelInput(a)
	require.NoError(t, err)
	eb, err := EncodeModelInput(b)
	require.NoError(t, err)

	// Canonical category ordering keeps the column layout identical no
	// matter which category shows up first in the data.
	require.Equal(t, ea.Names(), eb.Names())
}

func TestOneHotRoundTrip(t *testing.T) {
	values := []string{"Month-to-month", "Two year", "One year", "Month-to-month"}
	categories := Categories(values)
	require.Equal(t, []string{"Month-to-month", "One year", "Two year"}, categories)

	cols := oneHot("contract", values)
	require.Len(t, cols, 2)

	for i, want := range values {
		indicators := make([]int, len(cols))
		for j, col := range cols {
			v, err := col.Elem(i).Int()
			require.NoError(t, err)
			indicators[j] = v
		}
		got, err := DecodeOneHot(categories, indicators)
		require.NoError(t, err)
		require.Equal(t, want, got, "row %d", i)
	}
}

func TestDecodeOneHotAllZerosIsReference(t *testing.T) {
	categories := []string{"DSL", "Fiber optic", "No"}
	got, err := DecodeOneHot(categories, []int{0, 0})
	require.NoError(t, err)
	require.Equal(t, "DSL", got)

	_, err = DecodeOneHot(categories, []int{0})
	require.Error(t, err)
}
