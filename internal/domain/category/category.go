// Package category discretizes numeric metrics into ordinal labels.
package category

import (
	"fmt"

	"github.com/okian/replaytune/internal/domain/model"
)

// Band holds the two cut points of a metric. Both bounds are inclusive:
// values >= High are High, values <= Low are Low, anything between is Medium.
type Band struct {
	High float64
	Low  float64
}

// Level classifies v. High is checked before Low.
func (b Band) Level(v float64) model.Level {
	if v >= b.High {
		return model.LevelHigh
	}
	if v <= b.Low {
		return model.LevelLow
	}
	return model.LevelMedium
}

// Thresholds is the immutable tuning of a Categorizer.
type Thresholds struct {
	Intensity   Band
	Performance Band
	Teamwork    Band
	// CloseMargin is the largest absolute goal difference still "Very Close".
	CloseMargin int
	// ModerateMargin is the largest absolute goal difference still "Moderately Close".
	ModerateMargin int
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Intensity:      Band{High: 1400, Low: 1100},
		Performance:    Band{High: 300, Low: 100},
		Teamwork:       Band{High: 0.5, Low: 0.2},
		CloseMargin:    1,
		ModerateMargin: 2,
	}
}

// Validate rejects overlapping bands and inverted margins.
func (t Thresholds) Validate() error {
	bands := []struct {
		name string
		band Band
	}{
		{"intensity", t.Intensity},
		{"performance", t.Performance},
		{"teamwork", t.Teamwork},
	}
	for _, b := range bands {
		if b.band.High <= b.band.Low {
			return fmt.Errorf("%w: %s high (%v) must exceed low (%v)", ErrInvalidThresholds, b.name, b.band.High, b.band.Low)
		}
	}
	if t.CloseMargin < 0 || t.ModerateMargin < t.CloseMargin {
		return fmt.Errorf("%w: margins must satisfy 0 <= close (%d) <= moderate (%d)", ErrInvalidThresholds, t.CloseMargin, t.ModerateMargin)
	}
	return nil
}

// Option applies a configuration option to the Categorizer.
type Option func(*Categorizer)

// WithThresholds replaces the default thresholds.
func WithThresholds(t Thresholds) Option {
	return func(c *Categorizer) {
		c.thresholds = t
	}
}

// Categorizer maps a MetricSet to a CategorySet. It holds no mutable state
// and is safe for concurrent use.
type Categorizer struct {
	thresholds Thresholds
}

// New creates a Categorizer with configuration options.
func New(opts ...Option) *Categorizer {
	c := &Categorizer{thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Thresholds returns the active tuning.
func (c *Categorizer) Thresholds() Thresholds { return c.thresholds }

// Closeness consults overtime before the goal difference.
func (c *Categorizer) Closeness(absDiff int, overtime bool) model.Closeness {
	switch {
	case overtime || absDiff <= c.thresholds.CloseMargin:
		return model.ClosenessVeryClose
	case absDiff <= c.thresholds.ModerateMargin:
		return model.ClosenessModerately
	default:
		return model.ClosenessNotClose
	}
}

// Categorize discretizes every metric.
func (c *Categorizer) Categorize(m model.MetricSet, overtime bool) model.CategorySet {
	return model.CategorySet{
		Intensity:   c.thresholds.Intensity.Level(m.Intensity),
		Performance: c.thresholds.Performance.Level(m.Performance),
		Teamwork:    c.thresholds.Teamwork.Level(m.Teamwork),
		Closeness:   c.Closeness(m.Outcome.AbsScoreDifferential, overtime),
	}
}
