package main

import (
	"fmt"
	"runtime"

	"swagfill/internal/javasrc"
	"swagfill/internal/version"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
		fmt.Printf("Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		if javasrc.IsAvailable() {
			fmt.Println("Java parser: tree-sitter")
		} else {
			fmt.Println("Java parser: unavailable (built without cgo)")
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
