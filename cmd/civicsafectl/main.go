// Command civicsafectl is the operator CLI for a CivicSafe deployment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/civicsafe/civicsafe-api/internal/config"
	"github.com/civicsafe/civicsafe-api/internal/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "civicsafectl",
	Short: "Operate a CivicSafe deployment",
	Long: `Operator commands for CivicSafe.

Available subcommands:
  migrate        - Apply the database schema
  create-account - Create an account with a role
  report-status  - Move a report to a new status`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, createAccountCmd, reportStatusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
