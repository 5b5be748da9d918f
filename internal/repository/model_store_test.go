package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"TradeForge/internal/domain/models"
	"TradeForge/pkg/cache"
)

func newTestStore(t *testing.T) *CacheModelStore {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return NewCacheModelStore(mc)
}

func artifact(name string) models.ModelArtifact {
	return models.ModelArtifact{
		Name:       name,
		SavedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Blob:       []byte("model-bytes"),
		CVMean:     0.61,
		CVStd:      0.04,
		Importance: map[int]float64{0: 0.7, 1: 0.3},
	}
}

func TestSaveAssignsIncreasingVersions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v1, err := s.Save(ctx, artifact("momentum"))
	if err != nil {
		t.Fatal(err)
	}
	v2, err := s.Save(ctx, artifact("momentum"))
	if err != nil {
		t.Fatal(err)
	}
	if v1 != 1 || v2 != 2 {
		t.Fatalf("versions %d, %d; want 1, 2", v1, v2)
	}
}

func TestLoadLatestAndSpecificVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := artifact("momentum")
	first.CVMean = 0.5
	if _, err := s.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := artifact("momentum")
	second.CVMean = 0.7
	if _, err := s.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	latest, err := s.Load(ctx, "momentum", 0)
	if err != nil {
		t.Fatal(err)
	}
	if latest.Version != 2 || latest.CVMean != 0.7 {
		t.Fatalf("latest = v%d cv %v, want v2 cv 0.7", latest.Version, latest.CVMean)
	}

	old, err := s.Load(ctx, "momentum", 1)
	if err != nil {
		t.Fatal(err)
	}
	if old.CVMean != 0.5 {
		t.Fatalf("v1 cv %v, want 0.5", old.CVMean)
	}
	if string(old.Blob) != "model-bytes" {
		t.Fatalf("blob round trip failed: %q", old.Blob)
	}
}

func TestLoadUnknownModel(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(context.Background(), "ghost", 0)
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("err %v, want ErrModelNotFound", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Save(ctx, artifact("momentum")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, artifact("meanrev")); err != nil {
		t.Fatal(err)
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("listed %d models, want 2", len(infos))
	}

	if err := s.Delete(ctx, "momentum"); err != nil {
		t.Fatal(err)
	}
	infos, err = s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Name != "meanrev" {
		t.Fatalf("after delete: %+v", infos)
	}
	if _, err := s.Load(ctx, "momentum", 1); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("deleted model still loadable: %v", err)
	}
}
