package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nawabs/internal/cli"
)

// version is injected via ldflags at build time.
var version string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version)
	cli.Execute(ctx)
}
