package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/pipeline"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/registry"
	"github.com/spf13/cobra"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Dry-run the build and print a summary",
	Long: `Fetch and normalize the upstream registry without writing anything.
Prints one row per package that would be published, followed by totals.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output the summary in JSON format")
	rootCmd.AddCommand(validateCmd)
}

// summary is the validate report.
type summary struct {
	Packages        int            `json:"packages"`
	Versions        int            `json:"versions"`
	SkippedPackages int            `json:"skippedPackages"`
	SkippedVersions int            `json:"skippedVersions"`
	Duplicates      []string       `json:"duplicates"`
	Entries         []summaryEntry `json:"entries"`
}

type summaryEntry struct {
	Slug          string              `json:"slug"`
	LatestVersion string              `json:"latestVersion"`
	Versions      int                 `json:"versions"`
	Type          registry.PluginType `json:"type"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res := pipeline.Run(cmd.Context(), cfg, pipeline.WithLogger(logger), pipeline.WithDryRun())
	if !res.OK() {
		return fmt.Errorf("registry validation failed: %w", res.Err)
	}

	s := summarize(res)
	if validateJSON {
		return printSummaryJSON(cmd.OutOrStdout(), s)
	}
	return printSummaryTable(cmd.OutOrStdout(), s)
}

func summarize(res pipeline.Result) summary {
	s := summary{
		SkippedPackages: res.Stats.SkippedPackages,
		SkippedVersions: res.Stats.SkippedVersions,
		Duplicates:      res.Duplicates,
		Entries:         []summaryEntry{},
	}
	if s.Duplicates == nil {
		s.Duplicates = []string{}
	}
	if res.Registry == nil {
		return s
	}

	s.Packages = len(res.Registry.Packages)
	s.Versions = res.Registry.VersionCount()
	for _, p := range res.Registry.Packages {
		e := summaryEntry{
			Slug:          p.Slug,
			LatestVersion: p.LatestVersion,
			Versions:      len(p.Versions),
			Type:          registry.TypeUnknown,
		}
		if v, ok := p.Versions.Get(p.LatestVersion); ok {
			e.Type = v.Type
		}
		s.Entries = append(s.Entries, e)
	}
	return s
}

func printSummaryTable(out io.Writer, s summary) error {
	if len(s.Entries) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "SLUG\tLATEST\tVERSIONS\tTYPE")
		for _, e := range s.Entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Slug, e.LatestVersion, e.Versions, e.Type)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d packages, %d versions (skipped %d packages, %d versions)\n",
		s.Packages, s.Versions, s.SkippedPackages, s.SkippedVersions)
	if len(s.Duplicates) > 0 {
		fmt.Fprintf(out, "%d duplicate slugs resolved to the later entry\n", len(s.Duplicates))
	}
	return nil
}

func printSummaryJSON(out io.Writer, s summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
