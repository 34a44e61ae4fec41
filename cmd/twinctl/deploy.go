package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twincloud/twinctl/internal/artifact"
	"github.com/twincloud/twinctl/internal/cdn"
	"github.com/twincloud/twinctl/internal/config"
	"github.com/twincloud/twinctl/internal/deployment"
	"github.com/twincloud/twinctl/internal/interfaces"
	"github.com/twincloud/twinctl/internal/publish"
	"github.com/twincloud/twinctl/internal/runner"
	"github.com/twincloud/twinctl/internal/storage"
	"github.com/twincloud/twinctl/internal/terraform"
)

func newDeployCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy <dev|test|prod>",
		Short: "Build, provision, and publish one environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := interfaces.ParseEnvironment(args[0])
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return runDeploy(cmd.Context(), env)
		},
	}
	return cmd
}

func runDeploy(ctx context.Context, env interfaces.Environment) error {
	runCtx, err := config.LoadRunContext(env, "")
	if err != nil {
		return err
	}

	cmdRunner := runner.NewExecRunner()

	store, err := storage.NewS3Store(ctx, storage.S3StoreConfig{
		Region:   runCtx.Region,
		Endpoint: os.Getenv("AWS_ENDPOINT_URL"),
	})
	if err != nil {
		return err
	}

	distributions, err := cdn.New(ctx, runCtx.Region)
	if err != nil {
		return err
	}

	pipeline, err := deployment.NewPipeline(deployment.PipelineConfig{
		RunContext:  runCtx,
		Builder:     artifact.NewBuilder(cmdRunner, runCtx.BackendDir, runCtx.BuildDir),
		Provisioner: terraform.NewDriver(cmdRunner, runCtx.TerraformDir),
		Publisher: publish.NewPublisher(publish.PublisherConfig{
			Runner:      cmdRunner,
			Store:       store,
			CDN:         distributions,
			FrontendDir: runCtx.FrontendDir,
			Environment: runCtx.Environment,
		}),
	})
	if err != nil {
		return err
	}

	summary, err := pipeline.Deploy(ctx)
	printSummary(summary)
	if err != nil {
		return fmt.Errorf("deploy failed for %s: %w", env, err)
	}
	return nil
}

// printSummary reports the run outcome, listing only the outputs the
// provisioning backend actually produced.
func printSummary(summary *interfaces.RunSummary) {
	if summary == nil {
		return
	}

	fmt.Printf("\nEnvironment: %s\n", summary.Environment)
	for _, stage := range summary.Stages {
		fmt.Printf("  %-20s %s (%s)\n", stage.Stage, stage.Status, stage.Duration.Round(durationPrecision))
	}
	if summary.ArchiveBytes > 0 {
		fmt.Printf("Archive size: %d bytes\n", summary.ArchiveBytes)
	}

	outputs := summary.Outputs.AsMap()
	if len(outputs) > 0 {
		fmt.Println("Outputs:")
		for _, name := range []string{
			interfaces.OutputCDNURL,
			interfaces.OutputAPIURL,
			interfaces.OutputFrontendBucket,
			interfaces.OutputDataBucket,
		} {
			if value, ok := outputs[name]; ok {
				fmt.Printf("  %s: %s\n", name, value)
			}
		}
	}
	for _, warning := range summary.Warnings {
		fmt.Printf("Warning: %s\n", warning)
	}
}
