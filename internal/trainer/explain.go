package trainer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/feichai0017/churn-insight/internal/models"
)

// NormalizeAttributions converts an attribution result into the canonical
// per-record, per-feature churn-class matrix. Attribution tooling has
// shipped two layouts over time: the tensor form [record][feature][class]
// and the older per-class matrix form [class][record][feature]. Both are
// accepted here so nothing downstream ever branches on layout; anything
// else is a models.ErrShapeMismatch.
//
// When nRecords == nClasses the two layouts are indistinguishable by
// dimensions alone; the tensor form wins, matching what the explainer in
// pkg/ml emits.
func NormalizeAttributions(raw [][][]float64, nRecords, nFeatures, nClasses, churnIdx int) ([][]float64, error) {
	if churnIdx < 0 || churnIdx >= nClasses {
		return nil, fmt.Errorf("%w: churn class index %d out of %d classes", models.ErrShapeMismatch, churnIdx, nClasses)
	}

	if matchesDims(raw, nRecords, nFeatures, nClasses) {
		out := make([][]float64, nRecords)
		for i := range raw {
			row := make([]float64, nFeatures)
			for f := range raw[i] {
				row[f] = raw[i][f][churnIdx]
			}
			out[i] = row
		}
		return out, nil
	}

	if matchesDims(raw, nClasses, nRecords, nFeatures) {
		out := make([][]float64, nRecords)
		for i, row := range raw[churnIdx] {
			out[i] = append([]float64(nil), row...)
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: got outer dimension %d, want %d records or %d classes",
		models.ErrShapeMismatch, len(raw), nRecords, nClasses)
}

func matchesDims(raw [][][]float64, d0, d1, d2 int) bool {
	if len(raw) != d0 {
		return false
	}
	for _, m := range raw {
		if len(m) != d1 {
			return false
		}
		for _, row := range m {
			if len(row) != d2 {
				return false
			}
		}
	}
	return true
}

// DominantReason picks the feature with the single largest positive
// contribution toward churn. Ties resolve to the first feature in column
// order (strict > comparison). Returns false when no contribution is
// positive, i.e. nothing pushes this customer toward churn.
func DominantReason(contribs []float64, names []string) (string, bool) {
	best := -1
	bestVal := 0.0
	for i, v := range contribs {
		if v > bestVal {
			best = i
			bestVal = v
		}
	}
	if best < 0 {
		return "", false
	}
	return names[best], true
}

// RiskSegmentFor buckets a churn probability. Intervals are half-open with
// an inclusive upper bound: [0,0.3] low, (0.3,0.7] medium, (0.7,1] high.
func RiskSegmentFor(p float64) models.RiskSegment {
	switch {
	case p <= 0.3:
		return models.LowRisk
	case p <= 0.7:
		return models.MediumRisk
	default:
		return models.HighRisk
	}
}

// HumanizeReason turns an encoded feature name into narrative text:
// underscores become spaces and every letter run gets title-cased, with any
// non-letter restarting capitalization. "contract_Month-to-month" reads
// "Contract Month-To-Month" and "payment_method_Credit card (automatic)"
// reads "Payment Method Credit Card (Automatic)".
func HumanizeReason(feature string) string {
	runes := []rune(strings.ReplaceAll(feature, "_", " "))
	prevLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if prevLetter {
				runes[i] = unicode.ToLower(r)
			} else {
				runes[i] = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(runes)
}
