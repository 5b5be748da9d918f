package learner

import (
	"math"
	"math/rand"
	"testing"
)

// separableDataset builds rows where the first feature alone decides the
// label; the rest is noise.
func separableDataset(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		signal := rng.Float64()*2 - 1
		X[i] = []float64{signal, rng.NormFloat64(), rng.NormFloat64()}
		if signal > 0 {
			y[i] = 1
		}
	}
	return X, y
}

func TestTrainRejectsEmptyData(t *testing.T) {
	tr := New(NewStore(), DefaultTrainParams(), nil)
	if _, err := tr.Train(nil, nil, "m"); err == nil {
		t.Fatalf("expected error for empty dataset")
	}
}

func TestTrainRejectsSingleClassLabels(t *testing.T) {
	X, _ := separableDataset(200, 1)
	y := make([]int, len(X))
	tr := New(NewStore(), DefaultTrainParams(), nil)
	if _, err := tr.Train(X, y, "m"); err == nil {
		t.Fatalf("expected error for single-class labels")
	}
}

func TestTrainFailureLeavesPriorModel(t *testing.T) {
	X, y := separableDataset(300, 2)
	store := NewStore()
	tr := New(store, DefaultTrainParams(), nil)
	if _, err := tr.Train(X, y, "m"); err != nil {
		t.Fatalf("train: %v", err)
	}
	before := tr.ConfidenceScores(X[:5], "m")

	bad := make([]int, len(X))
	if _, err := tr.Train(X, bad, "m"); err == nil {
		t.Fatalf("expected degenerate-label error")
	}
	after := tr.ConfidenceScores(X[:5], "m")
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("failed retrain mutated the deployed model")
		}
	}
}

func TestTrainPredictSeparable(t *testing.T) {
	X, y := separableDataset(400, 3)
	tr := New(NewStore(), DefaultTrainParams(), nil)
	cv, err := tr.Train(X, y, "ensemble")
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if cv.Mean < 0.5 {
		t.Fatalf("cv mean %v on separable data, want > 0.5", cv.Mean)
	}

	probe := [][]float64{
		{0.9, 0, 0},
		{-0.9, 0, 0},
	}
	scores := tr.ConfidenceScores(probe, "ensemble")
	if scores[0] <= scores[1] {
		t.Fatalf("positive-side probe scored %v <= negative-side %v", scores[0], scores[1])
	}
	preds := tr.Predict(probe, "ensemble", 0.5)
	if preds[0] != 1 || preds[1] != 0 {
		t.Fatalf("predictions %v, want [1 0]", preds)
	}
}

func TestTrainDeterministicAcrossRuns(t *testing.T) {
	X, y := separableDataset(300, 4)
	a := New(NewStore(), DefaultTrainParams(), nil)
	b := New(NewStore(), DefaultTrainParams(), nil)
	cvA, err := a.Train(X, y, "m")
	if err != nil {
		t.Fatalf("train a: %v", err)
	}
	cvB, err := b.Train(X, y, "m")
	if err != nil {
		t.Fatalf("train b: %v", err)
	}
	if cvA != cvB {
		t.Fatalf("cv diverged across identical runs: %+v vs %+v", cvA, cvB)
	}
	sa := a.ConfidenceScores(X[:10], "m")
	sb := b.ConfidenceScores(X[:10], "m")
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("scores diverged at row %d: %v vs %v", i, sa[i], sb[i])
		}
	}
}

func TestUnknownModelYieldsZeros(t *testing.T) {
	tr := New(NewStore(), DefaultTrainParams(), nil)
	X := [][]float64{{1, 2, 3}, {4, 5, 6}}
	scores := tr.ConfidenceScores(X, "ghost")
	for i, s := range scores {
		if s != 0 {
			t.Fatalf("score[%d] = %v for unknown model, want 0", i, s)
		}
	}
	preds := tr.Predict(X, "ghost", 0.5)
	for i, p := range preds {
		if p != 0 {
			t.Fatalf("pred[%d] = %v for unknown model, want 0", i, p)
		}
	}
	if imp := tr.FeatureImportance("ghost"); len(imp) != 0 {
		t.Fatalf("importance for unknown model = %v, want empty", imp)
	}
}

func TestFeatureImportanceFavorsSignal(t *testing.T) {
	X, y := separableDataset(400, 5)
	tr := New(NewStore(), DefaultTrainParams(), nil)
	if _, err := tr.Train(X, y, "m"); err != nil {
		t.Fatalf("train: %v", err)
	}
	imp := tr.FeatureImportance("m")
	var total float64
	for _, v := range imp {
		total += v
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("importance sums to %v, want 1", total)
	}
	if imp[0] <= imp[1] || imp[0] <= imp[2] {
		t.Fatalf("informative feature not ranked first: %v", imp)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	X, y := separableDataset(300, 6)
	tr := New(NewStore(), DefaultTrainParams(), nil)
	if _, err := tr.Train(X, y, "m"); err != nil {
		t.Fatalf("train: %v", err)
	}
	blob, err := tr.Encode("m")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	restored := New(NewStore(), DefaultTrainParams(), nil)
	if err := restored.Decode("m", blob); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := tr.ConfidenceScores(X[:20], "m")
	got := restored.ConfidenceScores(X[:20], "m")
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("restored model diverges at row %d: %v vs %v", i, got[i], want[i])
		}
	}
}

func TestStandardizerFitTransform(t *testing.T) {
	X := [][]float64{{1, 5, 7}, {3, 5, 9}, {5, 5, 11}}
	s, err := FitStandardizer(X)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	scaled := s.Transform(X)
	// first column: mean 3, centered values sum to zero
	var sum float64
	for _, row := range scaled {
		sum += row[0]
	}
	if math.Abs(sum) > 1e-9 {
		t.Fatalf("standardized column not zero-mean: sum %v", sum)
	}
	// constant column must pass through the zero-division guard
	for i, row := range scaled {
		if row[1] != 0 {
			t.Fatalf("constant column row %d = %v, want 0", i, row[1])
		}
	}
	// transform must not refit: new data uses the original statistics
	probe := s.Transform([][]float64{{3, 5, 9}})
	if probe[0][0] != 0 {
		t.Fatalf("probe at training mean standardized to %v, want 0", probe[0][0])
	}
}
