package cli

import "time"

// Config holds the parsed command line.
type Config struct {
	PlayerID    string        // Player to profile
	ReplayFile  string        // Replay JSON; empty selects the embedded sample
	CatalogPath string        // Song catalog used in local mode
	TopN        int           // Number of songs to return
	BaseURL     string        // Server to query; empty computes locally
	Timeout     time.Duration // Overall deadline
	Verbose     bool          // Log pipeline activity to stderr
}

// Remote reports whether the recommendation is fetched from a server.
func (c Config) Remote() bool { return c.BaseURL != "" }
