// Package sample embeds a demo replay used when a request carries none.
package sample

import (
	_ "embed"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/okian/replaytune/internal/domain/model"
)

//go:embed replay.json
var replayJSON []byte

// Player ids present in the embedded replay.
const (
	PlayerZwyxerS        = "ce45140fcd644755b01660aa2dc6977b"
	PlayerMeanCereal3591 = "2b3e20011e864ad8b2437605bdf543ae"
	PlayerSideSwiper420e = "47377aec381141e680bb1e316e553b92"
	PlayerSohumV10       = "cee92d16ea7a43b28d8d46fce2feee73"
	PlayerCheemsDie      = "a22ada86f31a4c7594ba204b4450969d"
	PlayerScardrip04     = "60034da98a4c48eea051416df7845c71"
)

// PlayerIDs lists every player in the embedded replay, blue side first.
func PlayerIDs() []string {
	return []string{
		PlayerMeanCereal3591,
		PlayerSideSwiper420e,
		PlayerSohumV10,
		PlayerZwyxerS,
		PlayerCheemsDie,
		PlayerScardrip04,
	}
}

// Raw returns a copy of the embedded replay document.
func Raw() []byte {
	out := make([]byte, len(replayJSON))
	copy(out, replayJSON)
	return out
}

// Replay decodes a fresh copy of the embedded replay.
func Replay() (model.GameRecord, error) {
	var g model.GameRecord
	if err := json.Unmarshal(replayJSON, &g); err != nil {
		return model.GameRecord{}, fmt.Errorf("decode sample replay: %w", err)
	}
	return g, nil
}
