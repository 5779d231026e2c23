// Package cli implements the recommend command: it loads a replay, runs the
// profile pipeline locally or against a running server, and prints JSON.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/okian/replaytune/pkg/logger"
)

// Default flag values.
const (
	DefaultCatalogPath = "data/songs.json"
	DefaultTopN        = 3
	DefaultTimeout     = 30 * time.Second
)

var (
	// ErrHelp is returned by ParseArgs when -help was requested.
	ErrHelp = errors.New("help requested")
	// ErrUsage marks a malformed command line.
	ErrUsage = errors.New("usage error")
)

// ParseArgs parses args (without the program name). Flag errors are
// written to stderr.
func ParseArgs(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := Config{}
	fs.StringVar(&cfg.ReplayFile, "replay", "", "Replay JSON file (default: embedded sample replay)")
	fs.StringVar(&cfg.CatalogPath, "catalog", DefaultCatalogPath, "Song catalog JSON file")
	fs.IntVar(&cfg.TopN, "top", DefaultTopN, "Number of songs to recommend")
	fs.StringVar(&cfg.BaseURL, "url", "", "Base URL of a running server; computes locally when empty")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Overall timeout")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Log pipeline activity to stderr")
	help := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Config{}, ErrHelp
		}
		return Config{}, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if *help {
		return Config{}, ErrHelp
	}

	switch fs.NArg() {
	case 1:
		cfg.PlayerID = strings.TrimSpace(fs.Arg(0))
	case 0:
		return Config{}, fmt.Errorf("%w: missing player_id", ErrUsage)
	default:
		return Config{}, fmt.Errorf("%w: expected one player_id, got %d arguments", ErrUsage, fs.NArg())
	}
	if cfg.PlayerID == "" {
		return Config{}, fmt.Errorf("%w: player_id must not be blank", ErrUsage)
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrUsage)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

// NewLogger returns a stderr logger when verbose is set and a no-op logger
// otherwise. Stdout is reserved for the JSON result.
func NewLogger(verbose bool) logger.Logger {
	if !verbose {
		return logger.NewNop()
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), zapcore.DebugLevel)
	return logger.New(zap.New(core))
}

// ShowHelp prints usage information for the recommend command.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `ReplayTune Recommend
====================

Builds a music profile for one player of a replay and prints the best
matching songs as JSON.

Usage:
  recommend [options] <player_id>

Options:
  -replay string
        Replay JSON file (default: embedded sample replay)
  -catalog string
        Song catalog JSON file (default "data/songs.json")
  -top int
        Number of songs to recommend (default 3)
  -url string
        Base URL of a running server; computes locally when empty
  -timeout duration
        Overall timeout (default 30s)
  -verbose
        Log pipeline activity to stderr
  -help
        Show this help message

Examples:
  # Recommend for a player of the sample replay
  go run ./cmd/recommend 2b3e20011e864ad8b2437605bdf543ae

  # Use your own replay and ask a running server for five songs
  go run ./cmd/recommend -replay game.json -top 5 -url http://localhost:9080 2b3e20011e864ad8b2437605bdf543ae
`)
}
