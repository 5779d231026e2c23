// Package model contains domain models passed between layers.
package model

// Movement holds the positional telemetry of a player.
type Movement struct {
	TotalDistance              float64 `json:"total_distance"`
	TimeSupersonicSpeedPercent float64 `json:"time_supersonic_speed_percent"`
}

// PlayerRecord is one player's line in a replay.
type PlayerRecord struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	MVP                bool     `json:"mvp"`
	Goals              int      `json:"goals"`
	Saves              int      `json:"saves"`
	Assists            int      `json:"assists"`
	ShootingPercentage float64  `json:"shooting_percentage"`
	Movement           Movement `json:"movement"`
}

// TeamRecord aggregates one side of a match.
type TeamRecord struct {
	Name    string         `json:"name"`
	Goals   int            `json:"goals"`
	Saves   int            `json:"saves"`
	Assists int            `json:"assists"`
	Players []PlayerRecord `json:"players"`
}

// GameRecord is a single replay. Duration is a pointer so that an absent
// field can be told apart from a zero-length match.
type GameRecord struct {
	Date     string                `json:"date,omitempty"`
	Title    string                `json:"title,omitempty"`
	Duration *float64              `json:"duration"`
	Overtime bool                  `json:"overtime"`
	Teams    map[string]TeamRecord `json:"teams"`
}

// IsEmpty reports whether g carries neither a duration nor any team, as an
// empty JSON object decodes.
func (g GameRecord) IsEmpty() bool {
	return g.Duration == nil && len(g.Teams) == 0
}

// Float64 returns a pointer to v. Handy for building GameRecords in code.
func Float64(v float64) *float64 { return &v }
