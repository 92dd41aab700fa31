package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/ociclaim/cmd/ociclaim/handlers"
)

// Init returns the command for interactively creating a configuration file.
//
// Flags:
//
//	--output, -o: Path to output file (default "ociclaim.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a configuration file",
		Long: `Interactively create a configuration file.

The wizard asks for:

  - The compartment OCID (and optionally a subnet OCID and region)
  - The OCI CLI profile and SSH public key
  - Which A1 sizes to try
  - Telegram notification settings (optional)

Everything else keeps its default and can be edited in the generated YAML.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "ociclaim.yaml", "Output file path")

	return cmd
}
