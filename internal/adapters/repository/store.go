// Package repository loads and caches the song catalog.
package repository

import (
	"context"
	"time"

	"github.com/okian/replaytune/internal/domain/model"
)

// Warning records one catalog entry that was skipped during a load.
type Warning struct {
	Index  int    `json:"index"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
}

// Snapshot is an immutable, fully validated catalog.
type Snapshot struct {
	Songs    []model.SongCatalogEntry
	Skipped  []Warning
	Source   string
	LoadedAt time.Time
}

// Catalog provides read access to the song catalog.
type Catalog interface {
	// Songs returns the catalog in file order. Callers must not modify the slice.
	// Errors match ErrCatalogUnavailable or ErrCatalogEmpty.
	Songs(ctx context.Context) ([]model.SongCatalogEntry, error)
}
