package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkDiff bool

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Fail when any file is missing annotations",
	Long: `Performs a dry run and exits with status 1 when any file would change.
Nothing is written. Intended as a CI gate.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkDiff, "diff", false, "Print the pending changes as a diff")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.close()

	s.cfg.Output.DryRun = true

	report, err := execute(cmd.Context(), s, args)
	if err != nil {
		return err
	}

	if checkDiff {
		if err := printDiffs(report); err != nil {
			return err
		}
	}
	if OutputFormat(formatFlag) != FormatHuman {
		if err := printResponse(report); err != nil {
			return err
		}
	} else if report.Changed() {
		fmt.Printf("%d file(s) need annotations:\n", report.FilesWritten)
		for _, fd := range report.Diffs {
			added, removed := diffStat(fd)
			fmt.Printf("  %s (+%d -%d)\n", trimDiffPrefix(fd.NewName), added, removed)
		}
	} else {
		fmt.Println("All files are annotated.")
	}

	if report.FilesFailed > 0 || report.Changed() {
		return &exitError{code: 1}
	}
	return nil
}
