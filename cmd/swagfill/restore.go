package main

import (
	"fmt"

	"swagfill/internal/backup"
	"swagfill/internal/errors"
	"swagfill/internal/paths"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <run-id>",
	Short: "Restore the files a run overwrote",
	Long: `Restores the original content of every file a run overwrote from that run's
backup archive. The run ID may be abbreviated to any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

// RestoreResponseCLI is the output of the restore command.
type RestoreResponseCLI struct {
	RunID    string   `json:"runId" yaml:"runId"`
	Archive  string   `json:"archive" yaml:"archive"`
	Restored []string `json:"restored" yaml:"restored"`
}

func runRestore(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	runID := args[0]
	archive := ""
	if s.ledger != nil {
		run, err := s.ledger.Get(runID)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("no run matches %q", runID)
		}
		if run.Backup == "" {
			return errors.New(errors.BackupFailed, fmt.Sprintf("Run %s has no backup archive", run.ID), nil)
		}
		runID, archive = run.ID, run.Backup
	} else {
		// Without a ledger the ID must be exact.
		archive = backup.PathFor(paths.BackupDir(s.repoRoot), runID)
	}

	restored, err := backup.Restore(archive, s.repoRoot)
	if err != nil {
		return err
	}
	s.logger.Info("Restored run", "runId", runID, "files", len(restored))

	return printResponse(&RestoreResponseCLI{RunID: runID, Archive: archive, Restored: restored})
}
