package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/replaytune/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := cli.ParseArgs(args, os.Stderr)
	if errors.Is(err, cli.ErrHelp) {
		cli.ShowHelp(os.Stdout)
		return 0
	}
	if err != nil {
		_, _ = os.Stderr.WriteString("recommend: " + err.Error() + "\n\n")
		cli.ShowHelp(os.Stderr)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := cli.NewLogger(cfg.Verbose)
	if err := cli.Run(ctx, cfg, os.Stdout, log); err != nil {
		_, _ = os.Stderr.WriteString("recommend: " + err.Error() + "\n")
		return 1
	}
	return 0
}
