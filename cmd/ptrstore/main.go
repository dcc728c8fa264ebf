// Package main is the entry point for the ptrstore CLI.
//
// The CLI loads a store configuration and lets you inspect it or replay a
// scripted sequence of writes and commands against it.
//
// Usage:
//
//	ptrstore get -c store.yaml /user/name     # Print a value
//	ptrstore replay -c store.yaml script.yaml # Replay writes, print notifications
//	ptrstore validate -c store.yaml           # Validate configuration
//	ptrstore version                          # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ptrstore",
	Short: "Inspect and replay JSON-pointer stores",
	Long: `ptrstore loads a YAML store configuration and works with the
resulting in-memory document through JSON pointers.

Example config:
  store:
    strictness: isEqual
  initial:
    user:
      name: ada`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ptrstore %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
