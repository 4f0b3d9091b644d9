package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

const (
	defaultVersion = "dev"
	defaultCommit  = "none"
)

// Version information (set by GoReleaser)
var (
	version = defaultVersion
	commit  = defaultCommit
	_       = "unknown" // date - set by GoReleaser but not used
)

func main() {
	initVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		stop()
		os.Exit(1)
	}
}
