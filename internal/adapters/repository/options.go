package repository

import "github.com/okian/replaytune/pkg/logger"

// Option applies a configuration option to the CatalogStore.
type Option func(*CatalogStore)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *CatalogStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSnapshot seeds the store with an already loaded catalog.
func WithSnapshot(snap *Snapshot) Option {
	return func(s *CatalogStore) {
		if snap != nil {
			s.snapshot.Store(snap)
		}
	}
}
