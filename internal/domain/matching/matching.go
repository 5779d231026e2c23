// Package matching scores catalog songs against a desired profile.
package matching

import (
	"fmt"
	"slices"
	"sort"

	"github.com/okian/replaytune/internal/domain/model"
)

// Default scoring weights.
const (
	defaultBPMInRange   = 3.0
	defaultBPMNearRange = 1.5
	defaultBPMTolerance = 10.0
	defaultEnergy       = 2.0
	defaultMood         = 1.0
	defaultTheme        = 1.0
)

// Weights are the points awarded per criterion.
type Weights struct {
	BPMInRange float64
	// BPMNearRange is awarded when the tempo misses the band by at most BPMTolerance.
	BPMNearRange float64
	BPMTolerance float64
	Energy       float64
	// Mood and Theme are awarded once per matched label.
	Mood  float64
	Theme float64
}

// DefaultWeights returns the stock scoring table.
func DefaultWeights() Weights {
	return Weights{
		BPMInRange:   defaultBPMInRange,
		BPMNearRange: defaultBPMNearRange,
		BPMTolerance: defaultBPMTolerance,
		Energy:       defaultEnergy,
		Mood:         defaultMood,
		Theme:        defaultTheme,
	}
}

// Validate rejects negative weights.
func (w Weights) Validate() error {
	vals := []struct {
		name string
		v    float64
	}{
		{"bpm_in_range", w.BPMInRange},
		{"bpm_near_range", w.BPMNearRange},
		{"bpm_tolerance", w.BPMTolerance},
		{"energy", w.Energy},
		{"mood", w.Mood},
		{"theme", w.Theme},
	}
	for _, f := range vals {
		if f.v < 0 {
			return fmt.Errorf("%w: %s is %v", ErrInvalidWeights, f.name, f.v)
		}
	}
	return nil
}

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithWeights replaces the default weights.
func WithWeights(w Weights) Option {
	return func(m *Matcher) {
		m.weights = w
	}
}

// Matcher ranks catalogs. It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	weights Weights
}

// New creates a Matcher with configuration options.
func New(opts ...Option) *Matcher {
	m := &Matcher{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Weights returns the active scoring table.
func (m *Matcher) Weights() Weights { return m.weights }

// Score evaluates one entry. Labels must match exactly. Details are appended
// in evaluation order: tempo, energy, each matched mood, each matched theme.
func (m *Matcher) Score(song model.SongCatalogEntry, p model.DesiredProfile) model.RankedRecommendation {
	rec := model.RankedRecommendation{
		SongCatalogEntry:       normalize(song),
		MatchedCriteriaDetails: []string{},
	}
	w := m.weights

	switch {
	case p.BPM.Contains(song.BPM):
		rec.MatchScore += w.BPMInRange
		rec.MatchedCriteriaDetails = append(rec.MatchedCriteriaDetails, "BPM in desired range")
	case w.BPMNearRange > 0 && p.BPM.Distance(song.BPM) <= w.BPMTolerance:
		rec.MatchScore += w.BPMNearRange
		rec.MatchedCriteriaDetails = append(rec.MatchedCriteriaDetails, "BPM near desired range")
	}

	if p.Energy != "" && song.Energy == string(p.Energy) {
		rec.MatchScore += w.Energy
		rec.MatchedCriteriaDetails = append(rec.MatchedCriteriaDetails, "Energy match: "+string(p.Energy))
	}

	for _, mood := range p.Moods.Items() {
		if slices.Contains(song.Moods, mood) {
			rec.MatchScore += w.Mood
			rec.MatchedCriteriaDetails = append(rec.MatchedCriteriaDetails, "Mood match: "+mood)
		}
	}
	for _, theme := range p.Themes.Items() {
		if slices.Contains(song.Themes, theme) {
			rec.MatchScore += w.Theme
			rec.MatchedCriteriaDetails = append(rec.MatchedCriteriaDetails, "Theme match: "+theme)
		}
	}
	return rec
}

// Rank scores every entry, sorts by score descending keeping catalog order on
// ties, and returns at most topN results. topN <= 0 yields an empty slice.
func (m *Matcher) Rank(catalog []model.SongCatalogEntry, p model.DesiredProfile, topN int) []model.RankedRecommendation {
	if topN <= 0 || len(catalog) == 0 {
		return []model.RankedRecommendation{}
	}

	ranked := make([]model.RankedRecommendation, 0, len(catalog))
	for _, song := range catalog {
		ranked = append(ranked, m.Score(song, p))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	if topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked
}

func normalize(song model.SongCatalogEntry) model.SongCatalogEntry {
	if song.Moods == nil {
		song.Moods = []string{}
	}
	if song.Themes == nil {
		song.Themes = []string{}
	}
	return song
}
