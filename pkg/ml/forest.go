package ml

import (
	"errors"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// RandomForest is a bagged ensemble of DecisionTrees. Every tree is seeded
// RandomState+treeIndex and stored by index, so the fitted forest is
// identical regardless of goroutine scheduling.
type RandomForest struct {
	// Hyperparameters / options
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 => sqrt(p)
	Bootstrap       bool
	RandomState     int64

	// Internal state
	Trees   []*DecisionTree
	classes []int
}

// ForestOption functional config for RandomForest
type ForestOption func(*RandomForest)

func WithNEstimators(n int) ForestOption  { return func(rf *RandomForest) { rf.NEstimators = n } }
func WithForestDepth(d int) ForestOption  { return func(rf *RandomForest) { rf.MaxDepth = d } }
func WithBootstrap(b bool) ForestOption   { return func(rf *RandomForest) { rf.Bootstrap = b } }
func WithForestSeed(s int64) ForestOption { return func(rf *RandomForest) { rf.RandomState = s } }
func WithForestMaxFeatures(k int) ForestOption {
	return func(rf *RandomForest) { rf.MaxFeatures = k }
}

// NewRandomForest initializes the forest with sensible defaults.
func NewRandomForest(opts ...ForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MaxFeatures:     0,
		Bootstrap:       true,
		RandomState:     1,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Classes returns the class labels in probability-vector order.
func (rf *RandomForest) Classes() []int { return rf.classes }

// Fit trains the forest. The class list is collected once from y in
// first-occurrence order and shared with every tree, so all probability
// vectors are aligned.
func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("randomforest: empty X")
	}
	n := len(X)
	if len(y) != n {
		return errors.New("randomforest: X and y length mismatch")
	}

	rf.classes = nil
	seen := map[int]bool{}
	for _, lab := range y {
		if !seen[lab] {
			seen[lab] = true
			rf.classes = append(rf.classes, lab)
		}
	}

	maxFeatures := rf.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = int(math.Sqrt(float64(len(X[0]))))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	rf.Trees = make([]*DecisionTree, rf.NEstimators)
	var g errgroup.Group
	for i := 0; i < rf.NEstimators; i++ {
		idx := i
		g.Go(func() error {
			treeRand := rand.New(rand.NewSource(rf.RandomState + int64(idx)))

			// Bootstrap sampling by index, not by copying rows.
			Xb := make([][]float64, n)
			yb := make([]int, n)
			for j := 0; j < n; j++ {
				src := j
				if rf.Bootstrap {
					src = treeRand.Intn(n)
				}
				Xb[j] = X[src]
				yb[j] = y[src]
			}

			tree := NewDecisionTree(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMaxFeatures(maxFeatures),
				WithTreeSeed(rf.RandomState+int64(idx)),
				WithClasses(rf.classes),
			)
			if err := tree.Fit(Xb, yb); err != nil {
				return err
			}
			rf.Trees[idx] = tree
			return nil
		})
	}
	return g.Wait()
}

// PredictProba averages the per-tree class distributions.
func (rf *RandomForest) PredictProba(X [][]float64) [][]float64 {
	n := len(X)
	nc := len(rf.classes)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, nc)
	}
	if len(rf.Trees) == 0 {
		return out
	}
	for _, tree := range rf.Trees {
		probs := tree.PredictProba(X)
		for i := range probs {
			for c := 0; c < nc; c++ {
				out[i][c] += probs[i][c]
			}
		}
	}
	inv := 1.0 / float64(len(rf.Trees))
	for i := range out {
		for c := 0; c < nc; c++ {
			out[i][c] *= inv
		}
	}
	return out
}

// Predict returns the class with the largest averaged probability.
func (rf *RandomForest) Predict(X [][]float64) []int {
	probs := rf.PredictProba(X)
	out := make([]int, len(X))
	for i, p := range probs {
		best := 0
		for c := 1; c < len(p); c++ {
			if p[c] > p[best] {
				best = c
			}
		}
		out[i] = rf.classes[best]
	}
	return out
}
