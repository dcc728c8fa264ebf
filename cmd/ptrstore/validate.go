package main

import (
	"fmt"

	"github.com/goliatone/go-ptrstore/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a store configuration file.

This command parses the YAML, checks strictness names and compiles every
custom comparer.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  ptrstore validate -c store.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Strictness: %s\n", cfg.Strictness())
	fmt.Fprintf(out, "  Next tick:  %t\n", cfg.Store.NextTick)
	fmt.Fprintf(out, "  Comparers:  %d\n", len(cfg.Comparers))
	fmt.Fprintf(out, "  Top-level:  %d keys (%d overlays)\n", len(cfg.InitialDocument()), len(cfg.Overlays))
	return nil
}
