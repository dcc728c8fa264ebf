package main

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-ptrstore/config"
	"github.com/goliatone/go-ptrstore/pkg/store"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <pointer>",
	Short: "Print the value at a pointer of the configured document",
	Long: `Print the JSON encoding of the value at a pointer in the configured
initial document, with overlays applied. An absent value prints null.

Example:
  ptrstore get -c store.yaml /user/name
  ptrstore get -c store.yaml ""`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = getCmd.MarkFlagRequired("config")
}

func runGet(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	st, err := cfg.NewStore()
	if err != nil {
		return err
	}
	defer st.Destroy()

	if _, err := store.Split(args[0]); err != nil {
		return err
	}
	value, _ := st.Peek(args[0])
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
