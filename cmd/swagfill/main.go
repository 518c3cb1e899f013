package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"swagfill/internal/errors"
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if stderrors.As(err, &exit) {
			os.Exit(exit.code)
		}
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err and, for coded errors, the suggested fixes.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var coded *errors.Error
	if !stderrors.As(err, &coded) {
		return
	}
	for _, fix := range coded.SuggestedFixes {
		switch fix.Type {
		case errors.RunCommand:
			fmt.Fprintf(w, "  Try: %s  (%s)\n", fix.Command, fix.Description)
		case errors.OpenDocs:
			fmt.Fprintf(w, "  See: %s\n", fix.URL)
		}
	}
}

// exitError ends the process with a specific code and no error output.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
