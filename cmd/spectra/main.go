package main

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/saworbit/spectra/slogger"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "spectra",
	Short: "Filesystem telemetry: scan directory trees, track growth, govern clutter",
	Long: heredoc.Doc(`
		spectra walks a directory tree in a single pass and reports exact
		totals: file and folder counts, bytes on disk, per-extension volume,
		and the largest files found.

		Scans can be shipped to a spectra server as point-in-time snapshots.
		The server keeps per-agent history and answers velocity queries:
		how fast a tree grew between any two moments, broken down by
		extension.
	`),
}

func main() {
	slogger.Init()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
