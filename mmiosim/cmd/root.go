// Package cmd provides the command-line interface for mmiosim.
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Environment variables that provide flag defaults. They can also be set in a
// .env file in the working directory.
const (
	EnvDB          = "MMIOSIM_DB"
	EnvMonitorPort = "MMIOSIM_MONITOR_PORT"
)

// NewRootCmd creates the mmiosim command with all its subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "mmiosim",
		Short: "mmiosim runs peripheral drivers against a simulated " +
			"register space.",
		Long: `mmiosim runs peripheral drivers against a simulated ` +
			`register space, records every register access and serves ` +
			`the recorded state over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadEnv()
		},
	}

	rootCmd.AddCommand(newClockCmd())
	rootCmd.AddCommand(newJournalCmd())

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := NewRootCmd().Execute()
	if err != nil {
		return 1
	}

	return 0
}

func loadEnv() error {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}

	return nil
}

func stringFromEnv(cmd *cobra.Command, flag, env string) string {
	value, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return value
	}

	if v, ok := os.LookupEnv(env); ok {
		return v
	}

	return value
}

func intFromEnv(cmd *cobra.Command, flag, env string) (int, error) {
	value, _ := cmd.Flags().GetInt(flag)
	if cmd.Flags().Changed(flag) {
		return value, nil
	}

	v, ok := os.LookupEnv(env)
	if !ok {
		return value, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", env, err)
	}

	return n, nil
}
