package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/civicvoice/complaint-service/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "civicctl",
		Short: "civicctl - operator tooling for the CivicVoice complaint service",
		Long: `civicctl applies database migrations, provisions actors, issues access tokens
and prints the city dashboard straight from the database.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.UserCmd())
	rootCmd.AddCommand(cli.TokenCmd())
	rootCmd.AddCommand(cli.StatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
