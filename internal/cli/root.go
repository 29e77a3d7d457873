// Package cli holds the cobra commands that start the API, apply migrations
// and run escalation sweeps by hand.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "complaint-service",
	Short:         "Civic complaint lifecycle API with SLA escalation",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(escalateCmd)
}
