package extract

import "errors"

// Sentinel error kinds for replay extraction.
var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrMissingDuration  = errors.New("game duration missing")
	ErrOpponentNotFound = errors.New("opponent team not found")
)
