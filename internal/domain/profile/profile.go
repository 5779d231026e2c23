// Package profile composes extraction, metrics, categorisation and the rule
// table into a single report for one player of one replay.
package profile

import (
	"math"

	"github.com/okian/replaytune/internal/domain/category"
	"github.com/okian/replaytune/internal/domain/extract"
	"github.com/okian/replaytune/internal/domain/model"
	"github.com/okian/replaytune/internal/domain/rules"
	"github.com/okian/replaytune/internal/domain/telemetry"
)

// Metrics is the rounded numeric section of a Report.
type Metrics struct {
	IntensityScore   float64       `json:"intensity_score"`
	PerformanceScore float64       `json:"performance_score"`
	TeamworkFactor   float64       `json:"teamwork_factor"`
	GameOutcome      model.Outcome `json:"game_outcome"`
}

// Report is the profile computed for one player.
type Report struct {
	PlayerName         string               `json:"player_name"`
	Metrics            Metrics              `json:"metrics"`
	Categories         model.CategorySet    `json:"categories"`
	DesiredSongProfile model.DesiredProfile `json:"desired_song_profile"`

	// Raw holds the unrounded metrics the categories were derived from.
	Raw model.MetricSet `json:"-"`
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithCategorizer replaces the default categorizer.
func WithCategorizer(c *category.Categorizer) Option {
	return func(b *Builder) {
		if c != nil {
			b.categorizer = c
		}
	}
}

// WithEngine replaces the default rule engine.
func WithEngine(e *rules.Engine) Option {
	return func(b *Builder) {
		if e != nil {
			b.engine = e
		}
	}
}

// Builder runs the profile pipeline. It is stateless and safe for concurrent use.
type Builder struct {
	categorizer *category.Categorizer
	engine      *rules.Engine
}

// New creates a Builder with configuration options.
func New(opts ...Option) *Builder {
	b := &Builder{
		categorizer: category.New(),
		engine:      rules.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Compute builds the report for playerID. Errors come from extraction and
// match extract.ErrPlayerNotFound, extract.ErrMissingDuration or
// extract.ErrOpponentNotFound.
func (b *Builder) Compute(game model.GameRecord, playerID string) (Report, error) {
	ex, err := extract.Extract(game, playerID)
	if err != nil {
		return Report{}, err
	}

	m := telemetry.Calculate(ex)
	cats := b.categorizer.Categorize(m, ex.Overtime)
	desired := b.engine.Apply(rules.Input{Categories: cats, WinStatus: m.Outcome.WinStatus})

	return Report{
		PlayerName: ex.Player.Name,
		Metrics: Metrics{
			IntensityScore:   round2(m.Intensity),
			PerformanceScore: round2(m.Performance),
			TeamworkFactor:   round2(m.Teamwork),
			GameOutcome:      m.Outcome,
		},
		Categories:         cats,
		DesiredSongProfile: desired,
		Raw:                m,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
