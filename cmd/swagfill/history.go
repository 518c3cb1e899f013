package main

import (
	"fmt"

	"swagfill/internal/errors"
	"swagfill/internal/ledger"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyFiles bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent runs",
	Long: `Lists recent runs from the run ledger, newest first. Given a run ID (or a
unique prefix of one), shows that run and the files it touched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().BoolVar(&historyFiles, "files", false, "Include the files touched by each run")
	rootCmd.AddCommand(historyCmd)
}

// HistoryResponseCLI is the output of the history command.
type HistoryResponseCLI struct {
	Runs []HistoryRunCLI `json:"runs" yaml:"runs"`
}

// HistoryRunCLI is one run, optionally with its files.
type HistoryRunCLI struct {
	ledger.Run `yaml:",inline"`
	Files      []ledger.FileRecord `json:"files,omitempty" yaml:"files,omitempty"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	if s.ledger == nil {
		return errors.New(errors.LedgerFailed, "Run ledger is disabled (ledger.enabled = false)", nil)
	}

	var runs []ledger.Run
	if len(args) == 1 {
		run, err := s.ledger.Get(args[0])
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("no run matches %q", args[0])
		}
		runs = []ledger.Run{*run}
		historyFiles = true
	} else {
		runs, err = s.ledger.List(historyLimit)
		if err != nil {
			return err
		}
	}

	resp := &HistoryResponseCLI{Runs: make([]HistoryRunCLI, 0, len(runs))}
	for _, run := range runs {
		entry := HistoryRunCLI{Run: run}
		if historyFiles {
			entry.Files, err = s.ledger.Files(run.ID)
			if err != nil {
				return err
			}
		}
		resp.Runs = append(resp.Runs, entry)
	}
	return printResponse(resp)
}
