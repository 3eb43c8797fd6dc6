package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API health",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Remote.Health(cmd.Context())
			if err != nil {
				return err
			}

			output(cmd).Print(HealthResult{Status: result["status"]})
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "config",
		Short:       "Show the effective configuration",
		Annotations: map[string]string{skipAppAnnotation: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Output == "json" {
				output(cmd).Print(cfg)
				return nil
			}
			return printYAML(cmd.OutOrStdout(), cfg)
		},
	}
}
