package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/ociclaim/cmd/ociclaim/handlers"
	"github.com/imamik/ociclaim/internal/config"
)

// Run returns the command that claims an instance.
//
// Optional flags:
//
//	--config, -c: Path to a YAML configuration file
//	--env-file: Path to a dotenv file (default ".env")
//	--force: Provision even if a success record already exists
func Run() *cobra.Command {
	var (
		configPath string
		envFile    string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Attempt launches until an instance is claimed",
		Long: `Resolve the compartment, subnet, image and availability domains, then
attempt to launch a VM.Standard.A1.Flex instance for each candidate in turn
(availability domain x OCPU count), sleeping between attempts, until one
succeeds or the provider rejects the request for good.

On success the instance OCID and public IP are written to the success file
(and mirrored to object storage when configured). If a success record
already exists, nothing is launched unless --force is given.

Configuration is read from the environment, optionally after loading a
.env file and a YAML file. Environment variables:

` + config.Usage(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Run(cmd.Context(), configPath, envFile, force)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&envFile, "env-file", config.DefaultDotEnvFile, "Path to dotenv file")
	cmd.Flags().BoolVar(&force, "force", false, "Provision even if a success record exists")

	return cmd
}
