// Package main is the entry point for the tyche CLI.
package main

import (
	"os"

	"github.com/mrz1836/tyche/internal/cli"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
//
//nolint:gochecknoglobals // Link-time build metadata
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
