// Package main provides the gitpulse CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gitpulse",
		Short: "Contribution streak badges for GitHub profiles",
		Long: `Gitpulse renders an SVG badge summarizing a GitHub user's contribution
activity and registers webhooks on owned repositories so that activity
can be observed as it happens.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newBadgeCmd(),
		newStreaksCmd(),
		newHooksCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
