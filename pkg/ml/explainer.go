package ml

// TreeExplainer produces additive local attributions for a fitted forest.
// Each sample's decision path through each tree credits the split features
// with the change in class distribution; the forest attribution is the mean
// over trees. The expected value (mean root distribution) plus the summed
// contributions reproduces PredictProba exactly.
type TreeExplainer struct {
	forest *RandomForest
}

func NewTreeExplainer(rf *RandomForest) *TreeExplainer {
	return &TreeExplainer{forest: rf}
}

// ContributionTensor returns attributions laid out [record][feature][class],
// with classes in the forest's class order.
func (e *TreeExplainer) ContributionTensor(X [][]float64) [][][]float64 {
	n := len(X)
	nc := len(e.forest.classes)
	nt := len(e.forest.Trees)

	out := make([][][]float64, n)
	for i := range X {
		var acc [][]float64
		for _, tree := range e.forest.Trees {
			contribs, _ := tree.Contributions(X[i])
			if acc == nil {
				acc = make([][]float64, len(contribs))
				for f := range acc {
					acc[f] = make([]float64, nc)
				}
			}
			for f := range contribs {
				for c := 0; c < nc; c++ {
					acc[f][c] += contribs[f][c]
				}
			}
		}
		if nt > 0 {
			inv := 1.0 / float64(nt)
			for f := range acc {
				for c := 0; c < nc; c++ {
					acc[f][c] *= inv
				}
			}
		}
		out[i] = acc
	}
	return out
}

// ContributionsByClass returns attributions laid out [class][record][feature],
// the flat per-class matrix layout older attribution tooling emits.
func (e *TreeExplainer) ContributionsByClass(X [][]float64) [][][]float64 {
	tensor := e.ContributionTensor(X)
	nc := len(e.forest.classes)

	out := make([][][]float64, nc)
	for c := 0; c < nc; c++ {
		out[c] = make([][]float64, len(tensor))
		for i := range tensor {
			row := make([]float64, len(tensor[i]))
			for f := range tensor[i] {
				row[f] = tensor[i][f][c]
			}
			out[c][i] = row
		}
	}
	return out
}

// ExpectedValue returns the mean root class distribution over all trees,
// the additive baseline of every attribution.
func (e *TreeExplainer) ExpectedValue() []float64 {
	nc := len(e.forest.classes)
	out := make([]float64, nc)
	if len(e.forest.Trees) == 0 {
		return out
	}
	for _, tree := range e.forest.Trees {
		for c := 0; c < nc; c++ {
			out[c] += tree.root.probas[c]
		}
	}
	inv := 1.0 / float64(len(e.forest.Trees))
	for c := range out {
		out[c] *= inv
	}
	return out
}
