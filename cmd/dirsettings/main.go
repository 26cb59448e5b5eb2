// Package main is the entry point for the dirsettings command.
package main

import (
	"os"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		printError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
