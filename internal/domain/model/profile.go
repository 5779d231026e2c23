package model

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/okian/replaytune/internal/domain/types"
)

// Level is an ordinal category label.
type Level string

// Levels in ascending order.
const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Rank orders levels: Low=1, Medium=2, High=3, anything else 0.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	default:
		return 0
	}
}

// Closeness describes how narrowly a match was decided.
type Closeness string

// Closeness labels.
const (
	ClosenessVeryClose  Closeness = "Very Close / Overtime"
	ClosenessModerately Closeness = "Moderately Close"
	ClosenessNotClose   Closeness = "Not Close"
)

// WinStatus is the result of a match from the player's team point of view.
type WinStatus string

// Win statuses.
const (
	StatusWin  WinStatus = "win"
	StatusLoss WinStatus = "loss"
	StatusDraw WinStatus = "draw"
)

// Outcome is the score summary of a match for the player's team.
type Outcome struct {
	WinStatus            WinStatus `json:"win_status"`
	ScoreDifferential    int       `json:"score_differential"`
	AbsScoreDifferential int       `json:"abs_score_differential"`
}

// MetricSet holds the numeric metrics derived for one (player, game) pair.
type MetricSet struct {
	Intensity   float64
	Performance float64
	Teamwork    float64
	Outcome     Outcome
}

// CategorySet holds the discretized metrics.
type CategorySet struct {
	Intensity   Level     `json:"intensity"`
	Performance Level     `json:"performance"`
	Teamwork    Level     `json:"teamwork"`
	Closeness   Closeness `json:"closeness"`
}

// BPMBand is a labeled, inclusive tempo range.
type BPMBand struct {
	Label string
	Min   float64
	Max   float64
}

// Contains reports whether bpm falls inside the band, bounds included.
func (b BPMBand) Contains(bpm float64) bool {
	return bpm >= b.Min && bpm <= b.Max
}

// Distance returns how far bpm lies outside the band, 0 when inside.
func (b BPMBand) Distance(bpm float64) float64 {
	switch {
	case bpm < b.Min:
		return b.Min - bpm
	case bpm > b.Max:
		return bpm - b.Max
	default:
		return 0
	}
}

// MarshalJSON encodes the band as its label.
func (b BPMBand) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Label)
}

// UnmarshalJSON accepts the label of one of the predefined bands.
func (b *BPMBand) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	for _, known := range []BPMBand{BandLow, BandMedium, BandHigh} {
		if known.Label == label {
			*b = known
			return nil
		}
	}
	return fmt.Errorf("unknown bpm band %q", label)
}

// Predefined tempo bands.
var (
	BandLow    = BPMBand{Label: "Low (80-110)", Min: 80, Max: 110}
	BandMedium = BPMBand{Label: "Medium (110-140)", Min: 110, Max: 140}
	BandHigh   = BPMBand{Label: "High (140-180)", Min: 140, Max: 180}
)

// DesiredProfile is the song-attribute query produced by the rule engine.
type DesiredProfile struct {
	BPM    BPMBand          `json:"bpm"`
	Energy Level            `json:"energy"`
	Moods  types.OrderedSet `json:"moods"`
	Themes types.OrderedSet `json:"themes"`
}
