// Package main is the entry point for the ociclaim CLI.
//
// ociclaim keeps trying to launch an Always Free VM.Standard.A1.Flex
// instance on Oracle Cloud until one of the configured availability
// domain and size combinations has host capacity, then records the
// instance OCID and public IP.
//
// Commands: init, resolve, run, version, completion.
//
// For detailed usage information, run:
//
//	ociclaim --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/ociclaim/cmd/ociclaim/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
