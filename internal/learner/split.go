package learner

import "fmt"

// Fold is one walk-forward train/test partition over row indices. The test
// block strictly follows the train block in time; rows are never shuffled.
type Fold struct {
	TrainEnd  int // training rows are [0, TrainEnd)
	TestStart int // test rows are [TestStart, TestEnd)
	TestEnd   int
}

// WalkForward produces k expanding-window folds over n time-ordered rows.
// Fold i trains on everything before its test block; test blocks are equal
// sized tail partitions, so the first fold keeps at least one block of
// history for training. This is mandatory for time series: a shuffled
// split would leak future bars into past-bar validation.
func WalkForward(n, k int) ([]Fold, error) {
	if k <= 0 {
		return nil, fmt.Errorf("walk-forward splits must be > 0, got %d", k)
	}
	testSize := n / (k + 1)
	if testSize < 1 {
		return nil, fmt.Errorf("walk-forward: %d rows is not enough for %d splits", n, k)
	}
	folds := make([]Fold, 0, k)
	for i := 0; i < k; i++ {
		testStart := n - (k-i)*testSize
		folds = append(folds, Fold{
			TrainEnd:  testStart,
			TestStart: testStart,
			TestEnd:   testStart + testSize,
		})
	}
	return folds, nil
}
