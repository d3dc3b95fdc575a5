package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ticket-ingest",
	Short: "Freshdesk webhook ingest: normalize ticket events and queue them for the agent backend",
	RunE:  runAPI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(forwarderCmd)
	rootCmd.AddCommand(migrateCmd)
}
