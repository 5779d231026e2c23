// Package telemetry derives numeric performance metrics from extracted replay stats.
package telemetry

import (
	"github.com/okian/replaytune/internal/domain/extract"
	"github.com/okian/replaytune/internal/domain/model"
)

// Metric weights.
const (
	supersonicWeight = 2
	goalWeight       = 100
	saveWeight       = 50
)

// Intensity is distance per second plus twice the supersonic time share.
// A non-positive duration yields 0.
func Intensity(p model.PlayerRecord, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return p.Movement.TotalDistance/duration + p.Movement.TimeSupersonicSpeedPercent*supersonicWeight
}

// Performance rewards goals, saves and shooting accuracy.
func Performance(p model.PlayerRecord) float64 {
	return float64(p.Goals)*goalWeight + float64(p.Saves)*saveWeight + p.ShootingPercentage
}

// Teamwork is the share of team goals the player assisted; 0 when the team did not score.
func Teamwork(p model.PlayerRecord, team model.TeamRecord) float64 {
	if team.Goals == 0 {
		return 0
	}
	return float64(p.Assists) / float64(team.Goals)
}

// GameOutcome compares the player's team against the opponent.
func GameOutcome(team, opponent model.TeamRecord) model.Outcome {
	diff := team.Goals - opponent.Goals
	status := model.StatusDraw
	switch {
	case diff > 0:
		status = model.StatusWin
	case diff < 0:
		status = model.StatusLoss
	}
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	return model.Outcome{
		WinStatus:            status,
		ScoreDifferential:    diff,
		AbsScoreDifferential: abs,
	}
}

// Calculate computes all four metrics. They are independent of each other.
func Calculate(e extract.Extracted) model.MetricSet {
	return model.MetricSet{
		Intensity:   Intensity(e.Player, e.Duration),
		Performance: Performance(e.Player),
		Teamwork:    Teamwork(e.Player, e.Team),
		Outcome:     GameOutcome(e.Team, e.Opponent),
	}
}
