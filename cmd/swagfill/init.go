package main

import (
	"fmt"
	"os"

	"swagfill/internal/config"
	"swagfill/internal/dialect"
	"swagfill/internal/errors"
	"swagfill/internal/paths"

	"github.com/spf13/cobra"
)

var (
	initForce   bool
	initProfile bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize swagfill configuration",
	Long:  "Creates a .swagfill/ directory with default configuration in the repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	initCmd.Flags().BoolVar(&initProfile, "profile", false, "Also write the default annotation profile (profile.toml)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot()
	if err != nil {
		return err
	}

	configPath := paths.ConfigPath(repoRoot)
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Already initialized is success.
		fmt.Println("swagfill already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'swagfill init --force' to reinitialize.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(repoRoot); err != nil {
		return errors.New(errors.InternalError, "Failed to write config file", err)
	}
	fmt.Printf("Wrote %s\n", configPath)

	if initProfile {
		profilePath := paths.ProfilePath(repoRoot)
		if _, statErr := os.Stat(profilePath); statErr == nil && !initForce {
			fmt.Printf("Profile already exists at %s\n", profilePath)
		} else {
			if err := dialect.WriteProfile(profilePath, dialect.Default()); err != nil {
				return errors.New(errors.InternalError, "Failed to write profile", err)
			}
			fmt.Printf("Wrote %s\n", profilePath)
		}
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  swagfill run --dry-run   Preview the annotations")
	fmt.Println("  swagfill run             Apply them")
	return nil
}
