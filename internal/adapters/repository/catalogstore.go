package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/replaytune/internal/domain/model"
	"github.com/okian/replaytune/pkg/logger"
	"github.com/okian/replaytune/pkg/metrics"
)

// SnapshotLoader produces catalog snapshots. *Loader implements it.
type SnapshotLoader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// CatalogStore caches the catalog after the first successful load. Readers
// go through an atomic pointer and never block each other; loads are
// serialized so concurrent first callers trigger a single read.
type CatalogStore struct {
	src SnapshotLoader
	log logger.Logger

	loadMu   sync.Mutex
	snapshot atomic.Pointer[Snapshot]
}

// NewCatalogStore builds a store over src. Nothing is read until the first
// call to Songs or Reload.
func NewCatalogStore(src SnapshotLoader, opts ...Option) *CatalogStore {
	s := &CatalogStore{src: src, log: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Songs implements Catalog. A failed first load is not cached; the next
// call retries.
func (s *CatalogStore) Songs(ctx context.Context) ([]model.SongCatalogEntry, error) {
	if snap := s.snapshot.Load(); snap != nil {
		return snap.Songs, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if snap := s.snapshot.Load(); snap != nil {
		return snap.Songs, nil
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.snapshot.Store(snap)
	return snap.Songs, nil
}

// Reload reads the source again and swaps the snapshot on success. On
// failure the previous snapshot stays in place.
func (s *CatalogStore) Reload(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.snapshot.Store(snap)
	return nil
}

// Snapshot returns the current snapshot, or nil before the first load.
func (s *CatalogStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

func (s *CatalogStore) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	snap, err := s.src.Load(ctx)
	if err != nil {
		metrics.RecordCatalogLoad("error", 0, 0)
		metrics.RecordErrorByComponent("repository", "catalog_load")
		s.log.Error(ctx, "catalog load failed", logger.Error(err))
		return nil, err
	}

	metrics.RecordCatalogLoad("ok", len(snap.Songs), len(snap.Skipped))
	s.log.Info(ctx, "catalog loaded",
		logger.String("source", snap.Source),
		logger.Int("songs", len(snap.Songs)),
		logger.Int("skipped", len(snap.Skipped)),
		logger.Float64("took_ms", float64(time.Since(start).Microseconds())/1000),
	)
	return snap, nil
}
