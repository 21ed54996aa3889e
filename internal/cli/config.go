package cli

import (
	"fmt"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/branding"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration a build would use, as YAML. Values are resolved
from flags, ` + branding.EnvVar("*") + ` environment variables, the --config file and the
built-in defaults, in that order. The output is a valid --config file.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
