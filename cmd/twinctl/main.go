// Command twinctl deploys and tears down the twin application across
// isolated environments: it packages the backend function, provisions
// infrastructure through terraform with remote S3/DynamoDB state, and
// publishes the frontend bundle to its website bucket.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"    //nolint:gochecknoglobals // Build-time commit info
	date    = "unknown" //nolint:gochecknoglobals // Build-time date info
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "twinctl",
		Short: "Deploy and tear down the twin application per environment",
		Long: `twinctl orchestrates the twin application lifecycle: it builds the
backend deployment archive, provisions infrastructure through terraform
against environment-isolated workspaces and remote state, and publishes
the frontend bundle to its website bucket.

Each run is scoped to exactly one environment (dev, test, or prod) and
never affects another environment's state.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newDeployCommand(),
		newDestroyCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
