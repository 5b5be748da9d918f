package models

import "time"

// ModelArtifact is an opaque, persisted snapshot of a trained model and its
// fitted standardizer. Artifacts are immutable: retraining supersedes the
// previous version instead of mutating it.
type ModelArtifact struct {
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	SavedAt   time.Time `json:"saved_at"`
	Blob      []byte    `json:"blob"`
	CVMean    float64   `json:"cv_mean"`
	CVStd     float64   `json:"cv_std"`
	// Importance maps feature position to its contribution score.
	// Mapping index back to name is the caller's responsibility.
	Importance map[int]float64 `json:"importance"`
}

// ModelInfo is the listing view of a persisted model.
type ModelInfo struct {
	Name    string    `json:"name"`
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	CVMean  float64   `json:"cv_mean"`
	CVStd   float64   `json:"cv_std"`
}
