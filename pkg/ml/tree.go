package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// DecisionTree is a CART-style classifier over numeric features. Categorical
// inputs are expected to be one-hot encoded upstream.
type DecisionTree struct {
	// Hyperparameters / options
	MaxDepth        int    // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit int    // minimum samples to attempt a split
	MinSamplesLeaf  int    // minimum samples required in each leaf
	Criterion       string // "gini" (default) or "entropy"
	MaxFeatures     int    // 0 => all features, >0 => features sampled per node
	RandomState     int64  // seed for feature subsampling

	// internals
	root      *treeNode
	classes   []int // class labels, in probability-vector order
	nFeatures int
}

type treeNode struct {
	isLeaf    bool
	feature   int
	threshold float64 // x <= threshold => left
	left      *treeNode
	right     *treeNode

	n      int
	probas []float64 // class distribution at this node, aligned with classes
}

// TreeOption functional config
type TreeOption func(*DecisionTree)

func WithMaxDepth(d int) TreeOption { return func(t *DecisionTree) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) TreeOption {
	return func(t *DecisionTree) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) TreeOption {
	return func(t *DecisionTree) { t.MinSamplesLeaf = n }
}
func WithCriterion(c string) TreeOption   { return func(t *DecisionTree) { t.Criterion = c } }
func WithMaxFeatures(k int) TreeOption    { return func(t *DecisionTree) { t.MaxFeatures = k } }
func WithTreeSeed(seed int64) TreeOption  { return func(t *DecisionTree) { t.RandomState = seed } }
func WithClasses(classes []int) TreeOption {
	return func(t *DecisionTree) { t.classes = append([]int(nil), classes...) }
}

// NewDecisionTree returns a classifier with sensible defaults.
func NewDecisionTree(opts ...TreeOption) *DecisionTree {
	t := &DecisionTree{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		MaxFeatures:     0,
		RandomState:     1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Classes returns the class labels in probability-vector order.
func (t *DecisionTree) Classes() []int { return t.classes }

// Fit trains the tree on X (n x p) and integer labels y. When the class list
// was not fixed via WithClasses, classes are collected in first-occurrence
// order of y.
func (t *DecisionTree) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("tree: empty X")
	}
	n := len(X)
	if len(y) != n {
		return errors.New("tree: X and y length mismatch")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errors.New("tree: inconsistent number of features in X rows")
		}
	}

	if t.classes == nil {
		seen := map[int]bool{}
		for _, lab := range y {
			if !seen[lab] {
				seen[lab] = true
				t.classes = append(t.classes, lab)
			}
		}
	}
	if len(t.classes) == 0 {
		return errors.New("tree: no classes in y")
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	t.nFeatures = p
	rnd := rand.New(rand.NewSource(t.RandomState))
	impurity := giniFromCounts
	if t.Criterion == "entropy" {
		impurity = entropyFromCounts
	}

	t.root = t.buildNode(X, y, idx, 0, p, impurity, rnd)
	return nil
}

// Predict returns the majority-class label for each row.
func (t *DecisionTree) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		probs := t.predictProbaSingle(X[i])
		best := 0
		for j := 1; j < len(probs); j++ {
			if probs[j] > probs[best] {
				best = j
			}
		}
		out[i] = t.classes[best]
	}
	return out
}

// PredictProba returns the per-class probability vectors for rows in X.
func (t *DecisionTree) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = t.predictProbaSingle(X[i])
	}
	return out
}

func (t *DecisionTree) predictProbaSingle(x []float64) []float64 {
	node := t.root
	for !node.isLeaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.probas
}

// Contributions walks the decision path of one sample and returns the
// additive per-feature, per-class contributions (p x classes) plus the bias
// (the root class distribution). Each traversed edge credits its split
// feature with the change in class distribution, so
// bias + sum(contributions) equals the predicted probability vector.
func (t *DecisionTree) Contributions(x []float64) (contribs [][]float64, bias []float64) {
	p := t.nFeatures
	nc := len(t.classes)
	contribs = make([][]float64, p)
	for i := range contribs {
		contribs[i] = make([]float64, nc)
	}
	if t.root == nil {
		return contribs, make([]float64, nc)
	}

	bias = append([]float64(nil), t.root.probas...)
	node := t.root
	for !node.isLeaf {
		var child *treeNode
		if x[node.feature] <= node.threshold {
			child = node.left
		} else {
			child = node.right
		}
		for c := 0; c < nc; c++ {
			contribs[node.feature][c] += child.probas[c] - node.probas[c]
		}
		node = child
	}
	return contribs, bias
}

type splitCandidate struct {
	found     bool
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
}

func (t *DecisionTree) buildNode(X [][]float64, y []int, idx []int, depth, p int, impurity func([]int) float64, rnd *rand.Rand) *treeNode {
	node := &treeNode{n: len(idx)}

	counts := make([]int, len(t.classes))
	for _, ii := range idx {
		counts[t.classIndex(y[ii])]++
	}

	if isPure(counts) || len(idx) < t.MinSamplesSplit {
		return makeLeaf(node, counts)
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return makeLeaf(node, counts)
	}

	feats := t.candidateFeatures(p, rnd)
	parent := impurity(counts)

	// Features are scanned in ascending column order with a strict gain
	// comparison, so ties resolve to the first feature deterministically.
	best := splitCandidate{feature: -1}
	for _, f := range feats {
		cand := t.bestSplitForFeature(X, y, idx, f, parent, impurity)
		if cand.found && cand.gain > best.gain {
			best = cand
			best.found = true
		}
	}
	if !best.found || best.gain <= 0 {
		return makeLeaf(node, counts)
	}

	node.feature = best.feature
	node.threshold = best.threshold
	node.probas = countsToProbas(counts)
	node.left = t.buildNode(X, y, best.leftIdx, depth+1, p, impurity, rnd)
	node.right = t.buildNode(X, y, best.rightIdx, depth+1, p, impurity, rnd)
	return node
}

// candidateFeatures returns the feature columns to scan at a node, in
// ascending order even when subsampled.
func (t *DecisionTree) candidateFeatures(p int, rnd *rand.Rand) []int {
	feats := make([]int, p)
	for j := range feats {
		feats[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		for i := 0; i < t.MaxFeatures; i++ {
			j := i + rnd.Intn(p-i)
			feats[i], feats[j] = feats[j], feats[i]
		}
		feats = feats[:t.MaxFeatures]
		sort.Ints(feats)
	}
	return feats
}

func (t *DecisionTree) bestSplitForFeature(X [][]float64, y []int, idx []int, f int, parent float64, impurity func([]int) float64) splitCandidate {
	result := splitCandidate{feature: -1}

	vals := make([]pair, 0, len(idx))
	for _, ii := range idx {
		vals = append(vals, pair{X[ii][f], ii})
	}
	sort.Slice(vals, func(a, b int) bool { return vals[a].v < vals[b].v })

	nc := len(t.classes)
	total := len(idx)
	leftCounts := make([]int, nc)
	rightCounts := make([]int, nc)
	for _, pv := range vals {
		rightCounts[t.classIndex(y[pv.i])]++
	}

	for s := 1; s < len(vals); s++ {
		ci := t.classIndex(y[vals[s-1].i])
		leftCounts[ci]++
		rightCounts[ci]--

		if vals[s].v == vals[s-1].v {
			continue
		}
		if s < t.MinSamplesLeaf || total-s < t.MinSamplesLeaf {
			continue
		}

		impL := impurity(leftCounts)
		impR := impurity(rightCounts)
		weighted := (float64(s)/float64(total))*impL + (float64(total-s)/float64(total))*impR
		gain := parent - weighted
		if gain > result.gain {
			result.found = true
			result.gain = gain
			result.feature = f
			result.threshold = (vals[s-1].v + vals[s].v) / 2.0
			result.leftIdx = indicesFromPairs(vals[:s])
			result.rightIdx = indicesFromPairs(vals[s:])
		}
	}
	return result
}

func (t *DecisionTree) classIndex(label int) int {
	for i, v := range t.classes {
		if v == label {
			return i
		}
	}
	return 0
}

// ---------------------------
// Utilities: impurity & misc
// ---------------------------

type pair struct {
	v float64
	i int
}

func indicesFromPairs(pairs []pair) []int {
	out := make([]int, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.i)
	}
	return out
}

func makeLeaf(node *treeNode, counts []int) *treeNode {
	node.isLeaf = true
	node.probas = countsToProbas(counts)
	return node
}

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / n
		res += p * (1 - p)
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	p := make([]float64, len(counts))
	if n == 0 {
		return p
	}
	for i := range counts {
		p[i] = float64(counts[i]) / float64(n)
	}
	return p
}
