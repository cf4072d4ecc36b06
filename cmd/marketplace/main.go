// Command marketplace runs the marketplace API and its maintenance tasks.
//
//	marketplace serve              # HTTP + gRPC + queue workers + scheduler
//	marketplace migrate            # apply pending migrations
//	marketplace migrate:rollback
//	marketplace migrate:status
//	marketplace seed               # demo accounts and catalogue
//	marketplace route:list
//	marketplace schedule:list
//	marketplace queue:work -w 4    # standalone workers (redis driver)
//	marketplace queue:retry 12     # re-dispatch a failed job
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/marketplace/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "marketplace",
	Short:         "Multi-vendor marketplace API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(scheduleListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(queueRetryCmd)
}
