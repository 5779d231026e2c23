package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/replaytune/internal/domain/model"
	"github.com/okian/replaytune/internal/validation"
	"github.com/okian/replaytune/pkg/logger"
)

// catalogRecord is the persisted shape of one song. BPM is a pointer so a
// missing value is told apart from zero.
type catalogRecord struct {
	Title     string   `json:"title" validate:"required"`
	Artist    string   `json:"artist" validate:"required"`
	BPM       *float64 `json:"bpm" validate:"required"`
	Energy    string   `json:"energy" validate:"required"`
	Moods     []string `json:"moods"`
	Themes    []string `json:"themes"`
	SourceURL string   `json:"source_url"`
}

func (r catalogRecord) entry() model.SongCatalogEntry {
	e := model.SongCatalogEntry{
		Title:     r.Title,
		Artist:    r.Artist,
		BPM:       *r.BPM,
		Energy:    r.Energy,
		Moods:     r.Moods,
		Themes:    r.Themes,
		SourceURL: r.SourceURL,
	}
	if e.Moods == nil {
		e.Moods = []string{}
	}
	if e.Themes == nil {
		e.Themes = []string{}
	}
	return e
}

// LoaderOption applies a configuration option to the Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the logger used for skipped-entry warnings.
func WithLoaderLogger(l logger.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// Loader reads a JSON catalog file.
type Loader struct {
	path string
	log  logger.Logger
	now  func() time.Time
}

// NewLoader creates a Loader for the file at path.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{path: path, log: logger.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the catalog file path.
func (l *Loader) Path() string { return l.path }

// Load reads and decodes the catalog file.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	snap, err := l.Decode(ctx, f)
	if err != nil {
		return nil, err
	}
	snap.Source = l.path
	return snap, nil
}

// Decode parses a catalog document. Each array element is decoded on its own:
// an element with the wrong shape or missing required fields is skipped and
// reported in Snapshot.Skipped.
func (l *Loader) Decode(ctx context.Context, r io.Reader) (*Snapshot, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: catalog must be a JSON array: %w", ErrCatalogUnavailable, err)
	}

	snap := &Snapshot{
		Songs:    make([]model.SongCatalogEntry, 0, len(raw)),
		LoadedAt: l.now(),
	}
	for i, elem := range raw {
		var rec catalogRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			snap.Skipped = append(snap.Skipped, l.skip(ctx, i, "", err.Error()))
			continue
		}
		if verr := validation.ValidateStruct(&rec); verr != nil {
			snap.Skipped = append(snap.Skipped, l.skip(ctx, i, rec.Title, verr.Error()))
			continue
		}
		snap.Songs = append(snap.Songs, rec.entry())
	}

	if len(snap.Songs) == 0 {
		return nil, fmt.Errorf("%w: %d entries, none usable", ErrCatalogEmpty, len(raw))
	}
	return snap, nil
}

func (l *Loader) skip(ctx context.Context, index int, title, reason string) Warning {
	l.log.Warn(ctx, "skipping catalog entry",
		logger.Int("index", index),
		logger.String("title", title),
		logger.String("reason", reason),
		logger.Error(ErrMalformedEntry),
	)
	return Warning{Index: index, Title: title, Reason: reason}
}
