package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"swagfill/internal/paths"

	"github.com/spf13/cobra"
)

var logLines int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the run log",
	Long: `Shows the end of .swagfill/logs/swagfill.log.

Examples:
  swagfill log           # Show last 50 lines
  swagfill log -n 200    # Show last 200 lines`,
	RunE: runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logLines, "lines", "n", 50, "Number of lines to show")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot()
	if err != nil {
		return err
	}
	logPath := paths.LogPath(repoRoot)

	file, err := os.Open(logPath)
	if os.IsNotExist(err) {
		fmt.Println("No logs found.")
		fmt.Printf("\nLog file location: %s\n", logPath)
		fmt.Println("The log is written by 'swagfill run' when logging.file is enabled.")
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	lines, err := tailLines(file, logLines)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// tailLines returns the last n lines of r.
func tailLines(r io.Reader, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}
