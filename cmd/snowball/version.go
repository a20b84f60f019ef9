package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is overridden by ldflags at build time
	Version = "0.1.0"
	// Commit is the git revision the binary was built from (optional ldflag)
	Commit = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// no logger or database needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		if Commit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "snowball version %s (%s)\n", Version, Commit)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "snowball version %s\n", Version)
	},
}
