package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"calc-server/internal/cli"
	"calc-server/internal/observability"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(version, cli.OpenFromEnv)
	err := root.ExecuteContext(ctx)
	observability.SyncLogger()

	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
