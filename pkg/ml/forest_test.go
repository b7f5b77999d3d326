package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// xorData labels points by the sign of x1*x2, a shape a single linear split
// cannot capture but a small forest learns easily.
func xorData(n int, seed int64) (X [][]float64, y []int) {
	rnd := rand.New(rand.NewSource(seed))
	X = make([][]float64, n)
	y = make([]int, n)
	for i := 0; i < n; i++ {
		x1 := rnd.Float64()*2 - 1
		x2 := rnd.Float64()*2 - 1
		X[i] = []float64{x1, x2}
		if x1*x2 > 0 {
			y[i] = 1
		}
	}
	return
}

func TestForestLearnsNonLinearSignal(t *testing.T) {
	X, y := xorData(400, 5)

	rf := NewRandomForest(
		WithNEstimators(30),
		WithForestDepth(8),
		WithForestSeed(42),
		WithForestMaxFeatures(2),
	)
	require.NoError(t, rf.Fit(X, y))

	acc := Accuracy(y, rf.Predict(X))
	require.Greater(t, acc, 0.9, "forest should fit the training signal")
}

func TestForestProbasAreDistributions(t *testing.T) {
	X, y := xorData(200, 9)
	rf := NewRandomForest(WithNEstimators(15), WithForestDepth(6), WithForestSeed(1))
	require.NoError(t, rf.Fit(X, y))

	for _, probs := range rf.PredictProba(X) {
		sum := 0.0
		for _, p := range probs {
			require.GreaterOrEqual(t, p, 0.0)
			require.LessOrEqual(t, p, 1.0)
			sum += p
		}
		require.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestForestDeterministicAcrossFits(t *testing.T) {
	X, y := xorData(150, 3)

	fit := func() [][]float64 {
		rf := NewRandomForest(WithNEstimators(20), WithForestDepth(6), WithForestSeed(7))
		require.NoError(t, rf.Fit(X, y))
		return rf.PredictProba(X)
	}

	// Trees train concurrently, but per-tree seeding makes the fitted
	// forest independent of goroutine scheduling.
	require.Equal(t, fit(), fit())
}

func TestExplainerAdditivity(t *testing.T) {
	X, y := xorData(120, 13)
	rf := NewRandomForest(WithNEstimators(10), WithForestDepth(5), WithForestSeed(21))
	require.NoError(t, rf.Fit(X, y))

	explainer := NewTreeExplainer(rf)
	tensor := explainer.ContributionTensor(X)
	expected := explainer.ExpectedValue()
	probs := rf.PredictProba(X)

	for i := range X {
		for c := range rf.Classes() {
			total := expected[c]
			for f := range tensor[i] {
				total += tensor[i][f][c]
			}
			require.InDelta(t, probs[i][c], total, 1e-9,
				"expected value plus contributions must reproduce PredictProba")
		}
	}
}

func TestContributionsByClassMatchesTensor(t *testing.T) {
	X, y := xorData(50, 17)
	rf := NewRandomForest(WithNEstimators(5), WithForestDepth(4), WithForestSeed(2))
	require.NoError(t, rf.Fit(X, y))

	explainer := NewTreeExplainer(rf)
	tensor := explainer.ContributionTensor(X)
	byClass := explainer.ContributionsByClass(X)

	require.Len(t, byClass, len(rf.Classes()))
	for c := range rf.Classes() {
		for i := range X {
			for f := range tensor[i] {
				require.Equal(t, tensor[i][f][c], byClass[c][i][f])
			}
		}
	}
}

func TestTrainTestSplitIsSeeded(t *testing.T) {
	X, y := xorData(100, 1)

	XTrainA, XTestA, _, _ := TrainTestSplit(X, y, 0.2, rand.New(rand.NewSource(42)))
	XTrainB, XTestB, _, _ := TrainTestSplit(X, y, 0.2, rand.New(rand.NewSource(42)))

	require.Equal(t, XTrainA, XTrainB)
	require.Equal(t, XTestA, XTestB)
	require.Len(t, XTestA, 20)
	require.Len(t, XTrainA, 80)
}
