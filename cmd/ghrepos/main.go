package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fivetwenty-io/ghapi/cmd/ghrepos/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := commands.Execute(ctx, commands.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
