package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the swagger2ng CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swagger2ng",
		Short: "Prepare Angular client generation contexts from Swagger/OpenAPI specs",
		Long: "swagger2ng post-processes Swagger/OpenAPI documents into the per-service, per-model " +
			"and project-level contexts an Angular TypeScript client is rendered from.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagUsageError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().String("env-file", "", "Dotenv file loaded before SWAGGER2NG_* variables are read (default .env)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().String("log-level", "", "Log level (trace|debug|info|warn|error)")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newWatchCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagUsageError)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagUsageError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
