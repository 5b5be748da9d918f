package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TradeForge/internal/domain/models"
	domrepo "TradeForge/internal/domain/repository"
	"TradeForge/pkg/cache"
)

const (
	modelKeyPrefix = "model:"
	modelIndexKey  = "model:index"
	indexLockKey   = "model:index:lock"
	indexLockTTL   = 5 * time.Second
)

// ErrModelNotFound reports a load for a name or version that was never
// saved.
var ErrModelNotFound = errors.New("model store: not found")

// CacheModelStore keeps versioned model artifacts in a cache service,
// Redis in production and the in-memory implementation in tests. Version
// counters are monotonic per name; artifacts are never overwritten.
type CacheModelStore struct {
	c cache.Service
}

// NewCacheModelStore builds a model store over any cache backend.
func NewCacheModelStore(c cache.Service) *CacheModelStore {
	return &CacheModelStore{c: c}
}

func versionKey(name string, version int) string {
	return fmt.Sprintf("%s%s:v%d", modelKeyPrefix, name, version)
}

func latestKey(name string) string {
	return modelKeyPrefix + name + ":latest"
}

func seqKey(name string) string {
	return modelKeyPrefix + name + ":seq"
}

// Save persists the artifact under the next version for its name and
// returns that version.
func (s *CacheModelStore) Save(ctx context.Context, artifact models.ModelArtifact) (int, error) {
	if artifact.Name == "" {
		return 0, fmt.Errorf("model store: empty name")
	}
	version, err := s.c.Increment(ctx, seqKey(artifact.Name))
	if err != nil {
		return 0, fmt.Errorf("model store: next version: %w", err)
	}
	artifact.Version = int(version)
	if artifact.SavedAt.IsZero() {
		artifact.SavedAt = time.Now().UTC()
	}

	if err := s.c.Set(ctx, versionKey(artifact.Name, artifact.Version), artifact, 0); err != nil {
		return 0, fmt.Errorf("model store: save artifact: %w", err)
	}
	if err := s.c.Set(ctx, latestKey(artifact.Name), artifact.Version, 0); err != nil {
		return 0, fmt.Errorf("model store: save latest pointer: %w", err)
	}
	if err := s.addToIndex(ctx, artifact.Name); err != nil {
		return 0, err
	}
	return artifact.Version, nil
}

// Load fetches an artifact; version 0 means latest.
func (s *CacheModelStore) Load(ctx context.Context, name string, version int) (models.ModelArtifact, error) {
	if version <= 0 {
		var latest int
		if err := s.c.Get(ctx, latestKey(name), &latest); err != nil {
			if errors.Is(err, cache.ErrCacheMiss) {
				return models.ModelArtifact{}, fmt.Errorf("%w: %s", ErrModelNotFound, name)
			}
			return models.ModelArtifact{}, fmt.Errorf("model store: latest pointer: %w", err)
		}
		version = latest
	}

	var artifact models.ModelArtifact
	if err := s.c.Get(ctx, versionKey(name, version), &artifact); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.ModelArtifact{}, fmt.Errorf("%w: %s v%d", ErrModelNotFound, name, version)
		}
		return models.ModelArtifact{}, fmt.Errorf("model store: load artifact: %w", err)
	}
	return artifact, nil
}

// List returns the latest version of every saved model.
func (s *CacheModelStore) List(ctx context.Context) ([]models.ModelInfo, error) {
	names, err := s.readIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ModelInfo, 0, len(names))
	for _, name := range names {
		artifact, err := s.Load(ctx, name, 0)
		if err != nil {
			if errors.Is(err, ErrModelNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, models.ModelInfo{
			Name:    artifact.Name,
			Version: artifact.Version,
			SavedAt: artifact.SavedAt,
			CVMean:  artifact.CVMean,
			CVStd:   artifact.CVStd,
		})
	}
	return out, nil
}

// Delete removes all versions of a model and its index entry.
func (s *CacheModelStore) Delete(ctx context.Context, name string) error {
	if err := s.c.DeleteByPattern(ctx, modelKeyPrefix+name+":*"); err != nil {
		return fmt.Errorf("model store: delete %s: %w", name, err)
	}
	return s.removeFromIndex(ctx, name)
}

func (s *CacheModelStore) addToIndex(ctx context.Context, name string) error {
	return s.updateIndex(ctx, func(names []string) []string {
		for _, n := range names {
			if n == name {
				return names
			}
		}
		return append(names, name)
	})
}

func (s *CacheModelStore) removeFromIndex(ctx context.Context, name string) error {
	return s.updateIndex(ctx, func(names []string) []string {
		out := names[:0]
		for _, n := range names {
			if n != name {
				out = append(out, n)
			}
		}
		return out
	})
}

func (s *CacheModelStore) readIndex(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.c.Get(ctx, modelIndexKey, &names); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("model store: read index: %w", err)
	}
	return names, nil
}

func (s *CacheModelStore) updateIndex(ctx context.Context, mutate func([]string) []string) error {
	locked, err := s.c.TryLock(ctx, indexLockKey, indexLockTTL)
	if err != nil {
		return fmt.Errorf("model store: index lock: %w", err)
	}
	if locked {
		defer func() { _ = s.c.Unlock(ctx, indexLockKey) }()
	}

	names, err := s.readIndex(ctx)
	if err != nil {
		return err
	}
	if err := s.c.Set(ctx, modelIndexKey, mutate(names), 0); err != nil {
		return fmt.Errorf("model store: write index: %w", err)
	}
	return nil
}

var _ domrepo.ModelStore = (*CacheModelStore)(nil)
