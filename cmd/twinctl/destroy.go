package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twincloud/twinctl/internal/artifact"
	"github.com/twincloud/twinctl/internal/config"
	"github.com/twincloud/twinctl/internal/deployment"
	"github.com/twincloud/twinctl/internal/interfaces"
	"github.com/twincloud/twinctl/internal/runner"
	"github.com/twincloud/twinctl/internal/storage"
	"github.com/twincloud/twinctl/internal/terraform"
)

// durationPrecision rounds stage durations in the printed summary.
const durationPrecision = 100 * time.Millisecond

func newDestroyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destroy <dev|test|prod> [project_name]",
		Short: "Tear down one environment's infrastructure",
		Long: `Destroy empties every provisioned bucket first (the provisioning
backend cannot delete non-empty buckets) and then destroys the
environment's infrastructure with auto-approval. The remote state
bucket and lock table must be named explicitly via TWIN_STATE_BUCKET
and TWIN_LOCK_TABLE.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := interfaces.ParseEnvironment(args[0])
			if err != nil {
				return err
			}
			project := ""
			if len(args) > 1 {
				project = args[1]
			}
			cmd.SilenceUsage = true
			return runDestroy(cmd.Context(), env, project)
		},
	}
	return cmd
}

func runDestroy(ctx context.Context, env interfaces.Environment, project string) error {
	if err := config.RequireDestroyVars(); err != nil {
		return err
	}
	runCtx, err := config.LoadRunContext(env, project)
	if err != nil {
		return err
	}

	cmdRunner := runner.NewExecRunner()
	endpoint := os.Getenv("AWS_ENDPOINT_URL")

	store, err := storage.NewS3Store(ctx, storage.S3StoreConfig{
		Region:   runCtx.Region,
		Endpoint: endpoint,
	})
	if err != nil {
		return err
	}

	checker, err := storage.NewBackendCheck(ctx, runCtx.Region, endpoint)
	if err != nil {
		return err
	}

	teardown, err := deployment.NewTeardown(deployment.TeardownConfig{
		RunContext:  runCtx,
		Checker:     checker,
		Provisioner: terraform.NewDriver(cmdRunner, runCtx.TerraformDir),
		Builder:     artifact.NewBuilder(cmdRunner, runCtx.BackendDir, runCtx.BuildDir),
		Store:       store,
	})
	if err != nil {
		return err
	}

	summary, err := teardown.Destroy(ctx)
	printSummary(summary)
	if err != nil {
		return fmt.Errorf("destroy failed for %s: %w", env, err)
	}
	return nil
}
