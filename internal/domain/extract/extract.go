// Package extract locates a player inside a replay and splits it into the
// player's stats, the player's team and the opposing team.
package extract

import (
	"fmt"
	"sort"

	"github.com/okian/replaytune/internal/domain/model"
)

// Extracted is the slice of a replay the metrics stage needs.
type Extracted struct {
	Player   model.PlayerRecord
	Team     model.TeamRecord
	Opponent model.TeamRecord
	Side     string
	Duration float64
	Overtime bool
}

// Extract finds playerID in game. Sides are scanned in lexical order and the
// first matching player wins. The opponent is the first other side.
func Extract(game model.GameRecord, playerID string) (Extracted, error) {
	if game.Duration == nil {
		return Extracted{}, ErrMissingDuration
	}

	sides := make([]string, 0, len(game.Teams))
	for side := range game.Teams {
		sides = append(sides, side)
	}
	sort.Strings(sides)

	for _, side := range sides {
		team := game.Teams[side]
		for _, p := range team.Players {
			if p.ID != playerID {
				continue
			}
			opponent, ok := opponentOf(game, sides, side)
			if !ok {
				return Extracted{}, fmt.Errorf("%w: player %q is on %q", ErrOpponentNotFound, playerID, side)
			}
			return Extracted{
				Player:   p,
				Team:     team,
				Opponent: opponent,
				Side:     side,
				Duration: *game.Duration,
				Overtime: game.Overtime,
			}, nil
		}
	}
	return Extracted{}, fmt.Errorf("%w: %q", ErrPlayerNotFound, playerID)
}

func opponentOf(game model.GameRecord, sides []string, own string) (model.TeamRecord, bool) {
	for _, side := range sides {
		if side != own {
			return game.Teams[side], true
		}
	}
	return model.TeamRecord{}, false
}
