package ml

import "math/rand"

// TrainTestSplit partitions X, y into train and test sets by ratio using the
// caller's RNG, so runs sharing a seed produce the same partition.
func TrainTestSplit(X [][]float64, y []int, testRatio float64, rnd *rand.Rand) (XTrain, XTest [][]float64, yTrain, yTest []int) {
	n := len(X)
	indices := rnd.Perm(n)
	nTest := int(float64(n) * testRatio)
	for i, idx := range indices {
		if i < nTest {
			XTest = append(XTest, X[idx])
			yTest = append(yTest, y[idx])
		} else {
			XTrain = append(XTrain, X[idx])
			yTrain = append(yTrain, y[idx])
		}
	}
	return
}
