package cli

import (
	"fmt"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/pipeline"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the registry files",
	Long: `Fetch the upstream StudioRack registry, normalize it and write
registry.json and registry.min.json to the build directory.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res := pipeline.Run(cmd.Context(), cfg, pipeline.WithLogger(logger))
	if !res.OK() {
		return fmt.Errorf("registry build failed: %w", res.Err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d packages (%d versions) to %s and %s\n",
		len(res.Registry.Packages), res.Registry.VersionCount(), res.Files.Pretty, res.Files.Compact)
	return nil
}
