package ml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// A tiny dataset split perfectly by feature 1 at 0.5.
var (
	toyX = [][]float64{
		{0.0, 0.1},
		{1.0, 0.2},
		{0.0, 0.3},
		{1.0, 0.4},
		{0.0, 0.8},
		{1.0, 0.9},
		{0.0, 0.7},
		{1.0, 0.6},
	}
	toyY = []int{0, 0, 0, 0, 1, 1, 1, 1}
)

func TestTreeFitsSeparableData(t *testing.T) {
	tree := NewDecisionTree(WithTreeSeed(1))
	require.NoError(t, tree.Fit(toyX, toyY))

	preds := tree.Predict(toyX)
	require.Equal(t, toyY, preds)

	for _, probs := range tree.PredictProba(toyX) {
		sum := 0.0
		for _, p := range probs {
			require.GreaterOrEqual(t, p, 0.0)
			require.LessOrEqual(t, p, 1.0)
			sum += p
		}
		require.InDelta(t, 1.0, sum, 1e-12)
	}
}

func TestTreeFitValidation(t *testing.T) {
	tree := NewDecisionTree()
	require.Error(t, tree.Fit(nil, nil))
	require.Error(t, tree.Fit([][]float64{{1}}, []int{0, 1}))
	require.Error(t, tree.Fit([][]float64{{1, 2}, {1}}, []int{0, 1}))
}

func TestTreeClassOrderFollowsFirstOccurrence(t *testing.T) {
	tree := NewDecisionTree()
	require.NoError(t, tree.Fit(toyX, []int{1, 1, 1, 1, 0, 0, 0, 0}))
	require.Equal(t, []int{1, 0}, tree.Classes())
}

func TestTreeContributionsAreAdditive(t *testing.T) {
	tree := NewDecisionTree(WithMaxDepth(4), WithTreeSeed(3))
	require.NoError(t, tree.Fit(toyX, toyY))

	probs := tree.PredictProba(toyX)
	for i, x := range toyX {
		contribs, bias := tree.Contributions(x)
		require.Len(t, contribs, len(x))

		for c := range tree.Classes() {
			total := bias[c]
			for f := range contribs {
				total += contribs[f][c]
			}
			require.InDelta(t, probs[i][c], total, 1e-12,
				"bias plus contributions must reproduce the prediction (row %d class %d)", i, c)
		}
	}
}

func TestTreeDeterministicWithSeed(t *testing.T) {
	fit := func() []int {
		tree := NewDecisionTree(WithMaxDepth(3), WithMaxFeatures(1), WithTreeSeed(11))
		require.NoError(t, tree.Fit(toyX, toyY))
		return tree.Predict(toyX)
	}
	require.Equal(t, fit(), fit())
}
