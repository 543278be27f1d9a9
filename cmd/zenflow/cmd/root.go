package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zenflow",
		Short: "Workflow engine with a REST API.",
		Long: `
zenflow runs YAML workflow definitions. The serve command starts the engine, its job scheduler and the
REST API; validate checks workflow files without starting anything.
`,
		Example: `
	# Start the server, configuration is read from ./conf.yaml, $CONFIG_FILE or the environment
	zenflow serve

	# Validate workflow definitions
	zenflow validate order.yaml shipping.yaml
`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewValidateCmd())

	return cmd
}
