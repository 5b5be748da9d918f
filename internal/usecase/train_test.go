package usecase

import (
	"context"
	"testing"

	"TradeForge/internal/domain/models"
	"TradeForge/internal/learner"
	internalrepo "TradeForge/internal/repository"
	pkgcache "TradeForge/pkg/cache"
)

func newTrainFixture(t *testing.T, bars []models.Bar) (*TrainUseCase, *learner.Learner) {
	t.Helper()
	mc := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	lr := learner.New(learner.NewStore(), learner.TrainParams{
		Splits:   3,
		CVForest: learner.ForestParams{NumTrees: 10, MaxDepth: 4},
		CVBoost:  learner.BoostParams{NumTrees: 10, LearningRate: 0.1, MaxDepth: 3},
		Final:    learner.ForestParams{NumTrees: 10, MaxDepth: 4},
		Seed:     7,
	}, nil)
	uc := NewTrainUseCase(&stubCollector{bars: bars}, lr, internalrepo.NewCacheModelStore(mc), &fakeMetrics{}, nil)
	return uc, lr
}

func TestTrainPipelinePersistsVersionedModel(t *testing.T) {
	uc, lr := newTrainFixture(t, sineBars("BTCUSDT", 200))

	req := models.TrainRequest{Symbol: "BTCUSDT", Days: 200, Lookahead: 5, Threshold: 0.01, Model: "ensemble"}
	res, err := uc.Train(context.Background(), req)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if res.Version != 1 {
		t.Fatalf("version = %d, want 1", res.Version)
	}
	if res.Samples <= 0 {
		t.Fatalf("samples = %d", res.Samples)
	}
	if len(res.Importance) == 0 {
		t.Fatal("expected named feature importance")
	}
	for name := range res.Importance {
		if name == "" {
			t.Fatal("importance key must be a column name")
		}
	}

	// a second run bumps the version
	res2, err := uc.Train(context.Background(), req)
	if err != nil {
		t.Fatalf("Train again: %v", err)
	}
	if res2.Version != 2 {
		t.Fatalf("version = %d, want 2", res2.Version)
	}

	// the deployed model scores rows in [0, 1]
	scores := lr.ConfidenceScores([][]float64{make([]float64, 12)}, "ensemble")
	if len(scores) != 1 || scores[0] < 0 || scores[0] > 1 {
		t.Fatalf("confidence scores = %v", scores)
	}
}

func TestTrainLoadModelRoundTrip(t *testing.T) {
	uc, _ := newTrainFixture(t, sineBars("BTCUSDT", 200))

	req := models.TrainRequest{Symbol: "BTCUSDT", Days: 200, Lookahead: 5, Threshold: 0.01, Model: "roundtrip"}
	if _, err := uc.Train(context.Background(), req); err != nil {
		t.Fatalf("Train: %v", err)
	}

	info, err := uc.LoadModel(context.Background(), "roundtrip", 0)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if info.Name != "roundtrip" || info.Version != 1 {
		t.Fatalf("info = %+v", info)
	}

	infos, err := uc.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("listed %d models, want 1", len(infos))
	}

	if err := uc.DeleteModel(context.Background(), "roundtrip"); err != nil {
		t.Fatalf("DeleteModel: %v", err)
	}
	if _, err := uc.LoadModel(context.Background(), "roundtrip", 0); err == nil {
		t.Fatal("expected load after delete to fail")
	}
}

func TestTrainAbortsOnBadData(t *testing.T) {
	bars := sineBars("BTCUSDT", 200)
	// corrupt one row so validation fails
	bars[50].High = bars[50].Low / 2

	uc, _ := newTrainFixture(t, bars)
	_, err := uc.Train(context.Background(), models.TrainRequest{
		Symbol: "BTCUSDT", Days: 200, Lookahead: 5, Threshold: 0.01, Model: "ensemble",
	})
	if err == nil {
		t.Fatal("expected validation failure to abort training")
	}
}
