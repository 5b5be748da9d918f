// Package learner trains and serves the blended tree ensembles behind the
// ML signal source. Validation is walk-forward only; features are
// standardized with statistics fit on training data and reapplied
// unchanged at inference time.
package learner

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"sync"

	applogger "TradeForge/pkg/logger"
)

// TrainParams configure one training run. Zero values fall back to the
// defaults the deployed models were tuned with.
type TrainParams struct {
	Splits    int
	CVForest  ForestParams
	CVBoost   BoostParams
	Final     ForestParams
	Seed      int64
}

// DefaultTrainParams mirror the reference model configuration.
func DefaultTrainParams() TrainParams {
	return TrainParams{
		Splits:   5,
		CVForest: ForestParams{NumTrees: 100, MaxDepth: 10},
		CVBoost:  BoostParams{NumTrees: 50, LearningRate: 0.1, MaxDepth: 3},
		Final:    ForestParams{NumTrees: 150, MaxDepth: 12},
		Seed:     42,
	}
}

// CVResult summarizes cross-validated fold scores.
type CVResult struct {
	Mean float64 `json:"cv_mean"`
	Std  float64 `json:"cv_std"`
}

// deployed pairs a fitted standardizer with the final classifier. Immutable
// once stored; retraining replaces the entry wholesale.
type deployed struct {
	Standardizer *Standardizer
	Forest       *Forest
	CV           CVResult
}

// Store is an explicit, owned model registry (name -> deployed model).
// The caller controls its lifetime; there is no process-wide state.
type Store struct {
	mu     sync.RWMutex
	models map[string]*deployed
}

// NewStore creates an empty model registry.
func NewStore() *Store {
	return &Store{models: make(map[string]*deployed)}
}

func (s *Store) get(name string) (*deployed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.models[name]
	return d, ok
}

func (s *Store) put(name string, d *deployed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[name] = d
}

// Names lists the registered model names.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.models))
	for name := range s.models {
		out = append(out, name)
	}
	return out
}

// Learner trains ensembles into a Store and serves predictions from it.
type Learner struct {
	store  *Store
	params TrainParams
	l      *applogger.Logger
}

// New creates a Learner over the given registry. The logger may be nil.
func New(store *Store, params TrainParams, l *applogger.Logger) *Learner {
	if params.Splits == 0 {
		params = DefaultTrainParams()
	}
	return &Learner{store: store, params: params, l: l}
}

// Train standardizes X, runs walk-forward cross-validation with a bagged
// and a boosted ensemble per fold, then fits the final bagged classifier
// on the entire dataset and deploys it under modelName. Training is atomic:
// on error the previously deployed model, if any, is left untouched.
func (t *Learner) Train(X [][]float64, y []int, modelName string) (CVResult, error) {
	var cv CVResult
	if len(X) == 0 {
		return cv, fmt.Errorf("train %s: empty dataset", modelName)
	}
	if len(X) != len(y) {
		return cv, fmt.Errorf("train %s: %d feature rows vs %d labels", modelName, len(X), len(y))
	}
	if degenerate(y) {
		return cv, fmt.Errorf("train %s: labels are single-class, nothing to learn", modelName)
	}

	scaler, err := FitStandardizer(X)
	if err != nil {
		return cv, fmt.Errorf("train %s: %w", modelName, err)
	}
	scaled := scaler.Transform(X)

	folds, err := WalkForward(len(scaled), t.params.Splits)
	if err != nil {
		return cv, fmt.Errorf("train %s: %w", modelName, err)
	}

	rng := rand.New(rand.NewSource(t.params.Seed))
	scores := make([]float64, 0, len(folds))
	for i, fold := range folds {
		trainX, trainY := scaled[:fold.TrainEnd], y[:fold.TrainEnd]
		testX, testY := scaled[fold.TestStart:fold.TestEnd], y[fold.TestStart:fold.TestEnd]

		forest := FitForest(trainX, trainY, t.params.CVForest, rng)
		boost := FitBoost(trainX, trainY, t.params.CVBoost, rng)

		fp := forest.PredictProba(testX)
		bp := boost.PredictProba(testX)

		score := foldScore(fp, bp, testY)
		scores = append(scores, score)
		if t.l != nil {
			t.l.Info("cv fold scored",
				applogger.String("model", modelName),
				applogger.Int("fold", i+1),
				applogger.Any("score", score),
			)
		}
	}
	cv.Mean, cv.Std = meanStd(scores)

	final := FitForest(scaled, y, t.params.Final, rng)
	t.store.put(modelName, &deployed{Standardizer: scaler, Forest: final, CV: cv})

	if t.l != nil {
		t.l.Info("model trained",
			applogger.String("model", modelName),
			applogger.Int("samples", len(X)),
			applogger.Any("cv_mean", cv.Mean),
			applogger.Any("cv_std", cv.Std),
		)
	}
	return cv, nil
}

// foldScore is the fraction of true-positive test rows where the averaged
// ensemble probability exceeds 0.5. A fold without positive rows scores 0.
func foldScore(forestProba, boostProba []float64, y []int) float64 {
	var hits, positives int
	for i := range y {
		if y[i] != 1 {
			continue
		}
		positives++
		if (forestProba[i]+boostProba[i])/2 > 0.5 {
			hits++
		}
	}
	if positives == 0 {
		return 0
	}
	return float64(hits) / float64(positives)
}

// Predict returns the binary decision per row: 1 iff the deployed model's
// positive-class probability exceeds confidenceThreshold. An unknown model
// name yields all zeros and a warning; demo flows hit this path routinely.
func (t *Learner) Predict(X [][]float64, modelName string, confidenceThreshold float64) []int {
	out := make([]int, len(X))
	scores := t.ConfidenceScores(X, modelName)
	for i, p := range scores {
		if p > confidenceThreshold {
			out[i] = 1
		}
	}
	return out
}

// ConfidenceScores returns raw positive-class probabilities, or zeros when
// the model name is unknown.
func (t *Learner) ConfidenceScores(X [][]float64, modelName string) []float64 {
	d, ok := t.store.get(modelName)
	if !ok {
		if t.l != nil {
			t.l.Warn("model not found, returning zero scores", applogger.String("model", modelName))
		}
		return make([]float64, len(X))
	}
	return d.Forest.PredictProba(d.Standardizer.Transform(X))
}

// FeatureImportance exposes the deployed model's per-feature contribution
// scores indexed by feature position. Mapping position back to a name is
// the caller's job.
func (t *Learner) FeatureImportance(modelName string) map[int]float64 {
	d, ok := t.store.get(modelName)
	if !ok {
		return map[int]float64{}
	}
	out := make(map[int]float64, len(d.Forest.Importance))
	for i, v := range d.Forest.Importance {
		out[i] = v
	}
	return out
}

// CV returns the cross-validation result recorded at deploy time.
func (t *Learner) CV(modelName string) (CVResult, bool) {
	d, ok := t.store.get(modelName)
	if !ok {
		return CVResult{}, false
	}
	return d.CV, true
}

// artifact is the gob-encoded persisted form of a deployed model.
type artifact struct {
	Standardizer *Standardizer
	Forest       *Forest
	CV           CVResult
}

// Encode serializes the deployed model for the persistence collaborator.
func (t *Learner) Encode(modelName string) ([]byte, error) {
	d, ok := t.store.get(modelName)
	if !ok {
		return nil, fmt.Errorf("encode: model %s not found", modelName)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(artifact{Standardizer: d.Standardizer, Forest: d.Forest, CV: d.CV}); err != nil {
		return nil, fmt.Errorf("encode %s: %w", modelName, err)
	}
	return buf.Bytes(), nil
}

// Decode restores a persisted model blob into the registry under modelName.
func (t *Learner) Decode(modelName string, blob []byte) error {
	var a artifact
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&a); err != nil {
		return fmt.Errorf("decode %s: %w", modelName, err)
	}
	if a.Standardizer == nil || a.Forest == nil {
		return fmt.Errorf("decode %s: incomplete artifact", modelName)
	}
	t.store.put(modelName, &deployed{Standardizer: a.Standardizer, Forest: a.Forest, CV: a.CV})
	return nil
}

func degenerate(y []int) bool {
	if len(y) == 0 {
		return true
	}
	first := y[0]
	for _, v := range y[1:] {
		if v != first {
			return false
		}
	}
	return true
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, v := range xs {
		mean += v
	}
	mean /= float64(len(xs))
	for _, v := range xs {
		d := v - mean
		std += d * d
	}
	return mean, math.Sqrt(std / float64(len(xs)))
}
