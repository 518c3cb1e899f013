package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"swagfill/internal/errors"
	"swagfill/internal/javasrc"
	"swagfill/internal/pipeline"
	"swagfill/internal/preview"

	"github.com/spf13/cobra"
)

var (
	runDryRun   bool
	runBackup   bool
	runNoBackup bool
	runScope    string
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Annotate services and the DTOs they reference",
	Long: `Annotates every service under the given paths (default: the search root)
and all DTOs reachable from them. With --dry-run nothing is written and a
unified diff of the pending changes is printed instead.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print the changes as a diff instead of writing them")
	runCmd.Flags().BoolVar(&runBackup, "backup", false, "Archive original files before overwriting them")
	runCmd.Flags().BoolVar(&runNoBackup, "no-backup", false, "Do not archive original files")
	runCmd.Flags().StringVar(&runScope, "visited-scope", "", "Visited-set scope for DTO traversal: run or service")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	if cmd.Flags().Changed("dry-run") {
		s.cfg.Output.DryRun = runDryRun
	}
	if runBackup {
		s.cfg.Output.Backup = true
	}
	if runNoBackup {
		s.cfg.Output.Backup = false
	}
	if runScope != "" {
		s.cfg.Engine.VisitedScope = runScope
		if err := s.cfg.Validate(); err != nil {
			return err
		}
	}

	report, err := execute(cmd.Context(), s, args)
	if err != nil {
		return err
	}
	if report.DryRun && OutputFormat(formatFlag) == FormatHuman {
		if err := printDiffs(report); err != nil {
			return err
		}
	}
	return printResponse(report)
}

// execute runs the pipeline, stopping between files on interrupt.
func execute(parent context.Context, s *session, targets []string) (*pipeline.Report, error) {
	if !javasrc.IsAvailable() {
		return nil, errors.New(errors.CgoRequired, "swagfill was built without cgo and cannot parse Java", nil)
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	p, err := s.pipeline()
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, targets...)
}

func printDiffs(report *pipeline.Report) error {
	if len(report.Diffs) == 0 {
		return nil
	}
	out, err := preview.Render(report.Diffs)
	if err != nil {
		return fmt.Errorf("failed to render diff: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
