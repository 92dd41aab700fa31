package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/ociclaim/cmd/ociclaim/handlers"
	"github.com/imamik/ociclaim/internal/config"
)

// Resolve returns the command that only resolves the launch environment.
func Resolve() *cobra.Command {
	var (
		configPath string
		envFile    string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the launch environment without launching",
		Long: `Verify the compartment, locate the subnet (switching region if needed),
pick the image and list the candidates that 'run' would attempt, in order.
Nothing is launched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Resolve(cmd.Context(), configPath, envFile)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&envFile, "env-file", config.DefaultDotEnvFile, "Path to dotenv file")

	return cmd
}
