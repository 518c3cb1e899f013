package main

import (
	"swagfill/internal/version"

	"github.com/spf13/cobra"
)

var (
	verbosity  int
	quietFlag  bool
	formatFlag string
	repoFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "swagfill",
	Short: "swagfill - Swagger annotation synthesis for Java services",
	Long: `swagfill adds OpenAPI (swagger) annotations to JAX-RS style Java services.
It derives operation summaries, parameter descriptions and response codes from
Javadoc and legacy annotations, then walks every DTO the services reference and
marks their accessors as schema properties.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("swagfill version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman), "Output format (human, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Repository root (default: detected from the working directory)")
}
