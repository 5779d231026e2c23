// Package rules maps a category combination to the desired song profile.
//
// Rules run in a fixed order and only add attributes. The single exception is
// the teamwork energy floor, which raises an unset or Low energy to Medium.
package rules

import (
	"github.com/okian/replaytune/internal/domain/model"
)

// Mood and theme labels emitted by the rules.
const (
	MoodTriumphant  = "Triumphant"
	MoodEnergetic   = "Energetic"
	MoodFocused     = "Focused"
	MoodReflective  = "Reflective"
	MoodNeutral     = "Neutral"
	MoodUplifting   = "Uplifting"
	MoodTense       = "Tense"
	MoodDramatic    = "Dramatic"
	MoodClutch      = "Clutch"
	MoodHeartbreak  = "Heartbreak"
	MoodSuspenseful = "Suspenseful"

	ThemeVictory       = "Victory"
	ThemeCollaborative = "Collaborative"
)

// Input is everything the rules read.
type Input struct {
	Categories model.CategorySet
	WinStatus  model.WinStatus
}

// Engine applies the rule table. The zero value is ready to use.
type Engine struct{}

// New returns a rule engine.
func New() *Engine { return &Engine{} }

// Apply runs every rule in order and returns the resulting profile.
func (e *Engine) Apply(in Input) model.DesiredProfile {
	var p model.DesiredProfile

	p.BPM = bandFor(in.Categories.Intensity)
	applyPerformance(&p, in)
	applyTeamwork(&p, in)
	applyCloseness(&p, in)

	// Rule 2 always sets energy; kept for rule sets that may skip it.
	if p.Energy == "" {
		p.Energy = energyFor(in.Categories.Intensity)
	}
	return p
}

func bandFor(intensity model.Level) model.BPMBand {
	switch intensity {
	case model.LevelHigh:
		return model.BandHigh
	case model.LevelMedium:
		return model.BandMedium
	default:
		return model.BandLow
	}
}

func energyFor(intensity model.Level) model.Level {
	switch intensity {
	case model.LevelHigh:
		return model.LevelHigh
	case model.LevelMedium:
		return model.LevelMedium
	default:
		return model.LevelLow
	}
}

func applyPerformance(p *model.DesiredProfile, in Input) {
	switch in.Categories.Performance {
	case model.LevelHigh:
		p.Energy = model.LevelHigh
		if in.WinStatus == model.StatusWin {
			p.Themes.Add(ThemeVictory)
			p.Moods.Add(MoodTriumphant)
		} else {
			p.Moods.Add(MoodEnergetic)
		}
	case model.LevelMedium:
		p.Energy = model.LevelMedium
		p.Moods.Add(MoodFocused)
	default:
		p.Energy = model.LevelLow
		if in.WinStatus == model.StatusLoss {
			p.Moods.Add(MoodReflective)
		} else {
			p.Moods.Add(MoodNeutral)
		}
	}
}

func applyTeamwork(p *model.DesiredProfile, in Input) {
	if in.Categories.Teamwork != model.LevelHigh {
		return
	}
	p.Themes.Add(ThemeCollaborative)
	p.Moods.Add(MoodUplifting)
	if p.Energy == "" || p.Energy == model.LevelLow {
		p.Energy = model.LevelMedium
	}
}

func applyCloseness(p *model.DesiredProfile, in Input) {
	switch in.Categories.Closeness {
	case model.ClosenessVeryClose:
		p.Moods.Add(MoodTense, MoodDramatic)
		switch in.WinStatus {
		case model.StatusWin:
			p.Moods.Add(MoodClutch)
		case model.StatusLoss:
			p.Moods.Add(MoodHeartbreak)
		}
	case model.ClosenessModerately:
		p.Moods.Add(MoodSuspenseful)
	}
}
