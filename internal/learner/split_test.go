package learner

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestWalkForwardFiveSplits(t *testing.T) {
	folds, err := WalkForward(600, 5)
	if err != nil {
		t.Fatalf("walk-forward: %v", err)
	}
	if len(folds) != 5 {
		t.Fatalf("got %d folds, want 5", len(folds))
	}
	if folds[0].TrainEnd == 0 {
		t.Fatalf("first fold has no training data")
	}
	if folds[len(folds)-1].TestEnd != 600 {
		t.Fatalf("last fold must end at the dataset tail, got %d", folds[len(folds)-1].TestEnd)
	}
}

func TestWalkForwardTooFewRows(t *testing.T) {
	if _, err := WalkForward(4, 5); err == nil {
		t.Fatalf("expected error for 4 rows / 5 splits")
	}
	if _, err := WalkForward(100, 0); err == nil {
		t.Fatalf("expected error for 0 splits")
	}
}

// Every training row must strictly precede every test row of its fold, and
// folds must advance monotonically. This is the invariant that prevents
// lookahead leakage in validation.
func TestWalkForwardOrdering_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("train precedes test in every fold", prop.ForAll(
		func(n, k int) bool {
			folds, err := WalkForward(n, k)
			if err != nil {
				// undersized inputs are allowed to fail, not to mis-split
				return n/(k+1) < 1
			}
			prevTestEnd := 0
			for _, f := range folds {
				if f.TrainEnd != f.TestStart {
					return false
				}
				if f.TestStart >= f.TestEnd || f.TestEnd > n {
					return false
				}
				if f.TestStart < prevTestEnd {
					return false
				}
				prevTestEnd = f.TestEnd
			}
			return true
		},
		gen.IntRange(1, 5000),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
