package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"swagfill/internal/config"
	"swagfill/internal/errors"
	"swagfill/internal/ledger"
	"swagfill/internal/paths"
	"swagfill/internal/pipeline"
	"swagfill/internal/slogutil"
)

// session is the per-command state shared by the subcommands.
type session struct {
	repoRoot string
	cfg      *config.Config
	logs     *slogutil.LoggerFactory
	logger   *slog.Logger
	ledger   *ledger.Store
}

// resolveRepoRoot returns --repo when given, otherwise the repository that
// contains the working directory.
func resolveRepoRoot() (string, error) {
	if repoFlag != "" {
		abs, err := filepath.Abs(repoFlag)
		if err != nil {
			return "", errors.New(errors.InternalError, "Failed to resolve repository path", err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.New(errors.InternalError, "Failed to get current directory", err)
	}
	return paths.FindRepoRoot(cwd), nil
}

// cliLevel returns the level requested on the command line, or nil when the
// configured level applies.
func cliLevel() *slog.Level {
	if verbosity == 0 && !quietFlag {
		return nil
	}
	level := slogutil.LevelFromVerbosity(verbosity, quietFlag)
	return &level
}

// openSession loads configuration and the run logger. withLedger also opens
// the run history when it is enabled.
func openSession(withLedger bool) (*session, error) {
	repoRoot, err := resolveRepoRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "Failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "Invalid configuration", err)
	}

	s := &session{repoRoot: repoRoot, cfg: cfg}
	s.logs = slogutil.NewLoggerFactory(repoRoot, cfg, cliLevel())
	s.logger = s.logs.RunLogger()

	if withLedger && cfg.Ledger.Enabled {
		if _, err := paths.EnsureDir(paths.StateDir(repoRoot)); err != nil {
			s.close()
			return nil, errors.New(errors.LedgerFailed, "Failed to create state directory", err)
		}
		store, err := ledger.Open(paths.LedgerPath(repoRoot), s.logger)
		if err != nil {
			s.close()
			return nil, err
		}
		s.ledger = store
	}
	return s, nil
}

// pipeline builds the annotation pipeline for this session.
func (s *session) pipeline() (*pipeline.Pipeline, error) {
	var opts []pipeline.Option
	if s.ledger != nil {
		opts = append(opts, pipeline.WithLedger(s.ledger))
	}
	return pipeline.New(s.cfg, s.logger, opts...)
}

func (s *session) close() {
	if s.ledger != nil {
		if err := s.ledger.Close(); err != nil {
			s.logger.Warn("Failed to close run ledger", "error", err.Error())
		}
	}
	if s.logs != nil {
		_ = s.logs.Close()
	}
}

// printResponse writes resp to stdout in the --format selected.
func printResponse(resp interface{}) error {
	out, err := FormatResponse(resp, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
