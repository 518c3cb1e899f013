// Package pipeline drives a swagfill run: it discovers service units,
// synthesizes their annotations, walks the data types they reach and
// writes every changed file back in place.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"swagfill/internal/backup"
	"swagfill/internal/config"
	"swagfill/internal/dialect"
	"swagfill/internal/discovery"
	"swagfill/internal/dtograph"
	"swagfill/internal/errors"
	"swagfill/internal/javasrc"
	"swagfill/internal/ledger"
	"swagfill/internal/paths"
	"swagfill/internal/preview"
	"swagfill/internal/resolve"
	"swagfill/internal/synth"
)

// Parser parses Java sources.
type Parser interface {
	Parse(ctx context.Context, path string, src []byte) (*javasrc.Unit, error)
}

// Pipeline holds everything a run needs. A Pipeline runs once at a time.
type Pipeline struct {
	cfg      *config.Config
	parser   Parser
	finder   *discovery.Finder
	synth    *synth.Synthesizer
	resolver resolve.Resolver
	matcher  *dtograph.Matcher
	ledger   *ledger.Store
	logger   *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithParser replaces the tree-sitter parser.
func WithParser(p Parser) Option {
	return func(pl *Pipeline) { pl.parser = p }
}

// WithResolver replaces the resolver built from the configuration.
func WithResolver(r resolve.Resolver) Option {
	return func(pl *Pipeline) { pl.resolver = r }
}

// WithLedger records every run in store.
func WithLedger(store *ledger.Store) Option {
	return func(pl *Pipeline) { pl.ledger = store }
}

// New builds a pipeline from cfg. The annotation profile is read from
// engine.profilePath, or from the state directory when a profile exists
// there.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	profile, err := loadProfile(cfg, logger)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		parser: javasrc.NewParser(),
		finder: discovery.NewFinder(cfg.RepoRoot, discovery.OptionsFromConfig(cfg), logger),
		synth: synth.New(profile, synth.Options{
			Routing:        cfg.Engine.RoutingAnnotations,
			Context:        cfg.Engine.ContextAnnotations,
			DtoSuffix:      cfg.Engine.DtoSuffix,
			AccessorPrefix: cfg.Engine.AccessorPrefix,
		}, logger),
		matcher: dtograph.NewMatcher(cfg.Engine.DtoSuffix),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.resolver == nil {
		r, err := resolve.New(cfg)
		if err != nil {
			return nil, err
		}
		p.resolver = r
	}
	return p, nil
}

func loadProfile(cfg *config.Config, logger *slog.Logger) (*dialect.Profile, error) {
	path := cfg.Engine.ProfilePath
	if path == "" {
		path = paths.ProfilePath(cfg.RepoRoot)
		if _, err := os.Stat(path); err != nil {
			return dialect.Default(), nil
		}
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.RepoRoot, path)
	}
	return dialect.LoadProfile(path, logger)
}

// Run processes the given paths, or the whole repository when none are
// given. Per-file failures are recorded in the report; the returned error
// is reserved for failures of the run itself.
func (p *Pipeline) Run(ctx context.Context, targets ...string) (*Report, error) {
	r := &run{
		Pipeline: p,
		report: &Report{
			RunID:     uuid.New().String(),
			StartedAt: time.Now(),
			DryRun:    p.cfg.Output.DryRun,
		},
		files:    make(map[string]ledger.FileRecord),
		overlay:  make(map[string][]byte),
		explicit: explicitFiles(p.cfg.RepoRoot, targets),
	}
	if p.cfg.Output.Backup && !p.cfg.Output.DryRun {
		r.archive = backup.New(paths.BackupDir(p.cfg.RepoRoot), r.report.RunID, p.cfg.RepoRoot)
	}
	r.traverser = dtograph.New(p.synth, p.resolver, r, p.matcher, p.logger)

	p.logger.Info("Run started", "runId", r.report.RunID, "dryRun", r.report.DryRun)

	candidates, err := p.finder.Candidates(ctx, targets...)
	if err != nil {
		return nil, err
	}
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			if r.archive != nil {
				_ = r.archive.Close()
			}
			return nil, err
		}
		r.candidate(ctx, path)
	}

	return r.finish()
}

// run is the state of one Run call. It is the dtograph.Store of the
// traversal, so data types and services share one write path.
type run struct {
	*Pipeline
	report    *Report
	traverser *dtograph.Traverser
	archive   *backup.Archive

	files      map[string]ledger.FileRecord
	overlay    map[string][]byte // dry-run output, read back instead of disk
	unresolved map[string]bool
	// explicit holds the files named as targets; data types among them are
	// processed even when no service refers to them.
	explicit map[string]bool
}

// explicitFiles returns the targets that name a file rather than a
// directory, as absolute paths.
func explicitFiles(repoRoot string, targets []string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range targets {
		if !filepath.IsAbs(t) {
			t = filepath.Join(repoRoot, t)
		}
		if info, err := os.Stat(t); err == nil && !info.IsDir() {
			out[t] = true
		}
	}
	return out
}

func (r *run) candidate(ctx context.Context, path string) {
	src, err := r.read(path)
	if err != nil {
		r.fail(path, errors.ForFile(errors.ReadFailed, path, err))
		return
	}
	explicit := r.explicit[path]
	if !explicit && !r.mayBeService(path, src) {
		return
	}
	u, err := r.parser.Parse(ctx, path, src)
	if err != nil {
		r.fail(path, err)
		return
	}
	switch {
	case r.finder.IsService(u):
		r.service(ctx, u)
	case explicit && r.isDataType(u):
		r.dataType(ctx, u)
	}
}

// isDataType reports whether u is a data type by naming convention.
func (r *run) isDataType(u *javasrc.Unit) bool {
	name := u.Name()
	return name != "" && strings.HasSuffix(name, r.cfg.Engine.DtoSuffix)
}

// dataType documents a data type named directly as a target, and the data
// types it refers to. A unit already reached from a service is skipped.
func (r *run) dataType(ctx context.Context, u *javasrc.Unit) {
	if r.traverser.Visited().Has(u.Name()) {
		return
	}
	r.collect(r.traverser.Unit(ctx, u))
}

// mayBeService is a cheap filter that avoids parsing files that cannot be
// service units.
func (r *run) mayBeService(path string, src []byte) bool {
	d := r.cfg.Discovery
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if d.ResourceSuffix != "" && strings.HasSuffix(stem, d.ResourceSuffix) {
		return true
	}
	return d.ClassRoutingAnnotation != "" && bytes.Contains(src, []byte("@"+d.ClassRoutingAnnotation))
}

func (r *run) service(ctx context.Context, u *javasrc.Unit) {
	res := r.synth.Service(u)
	sr := ServiceReport{
		Path:           paths.DisplayPath(u.Path, r.cfg.RepoRoot),
		Name:           u.Name(),
		Updated:        res.Updated(),
		ImportsRemoved: res.ImportsRemoved,
	}
	for _, op := range res.Operations {
		if op.Changed() {
			sr.Operations = append(sr.Operations, op)
		}
	}
	if _, err := r.Save(ctx, u); err != nil {
		// already recorded as a failure
		sr.Updated = 0
	}
	r.report.Services = append(r.report.Services, sr)
	r.report.OperationsUpdated += sr.Updated
	if sr.Updated > 0 {
		r.logger.Info("Service documented", "path", sr.Path, "operations", sr.Updated)
	}

	if r.cfg.Engine.VisitedScope == "service" {
		r.traverser.Reset()
	}
	r.collect(r.traverser.FromService(ctx, u))
}

// collect adds a traversal result to the report.
func (r *run) collect(dt dtograph.Result) {
	for _, ur := range dt.Units {
		ur.Path = paths.DisplayPath(ur.Path, r.cfg.RepoRoot)
		r.report.DataTypes = append(r.report.DataTypes, ur)
		if ur.Accessors > 0 {
			r.report.DTOsUpdated++
		}
	}
	for _, name := range dt.Unresolved {
		if r.unresolved == nil {
			r.unresolved = make(map[string]bool)
		}
		r.unresolved[name] = true
	}
}

// Load implements dtograph.Store.
func (r *run) Load(ctx context.Context, path string) (*javasrc.Unit, error) {
	src, err := r.read(path)
	if err != nil {
		err = errors.ForFile(errors.ReadFailed, path, err)
		r.fail(path, err)
		return nil, err
	}
	u, err := r.parser.Parse(ctx, path, src)
	if err != nil {
		r.fail(path, err)
		return nil, err
	}
	return u, nil
}

// Save implements dtograph.Store. Unchanged units are not written. In a
// dry run the new text is kept for preview instead.
func (r *run) Save(_ context.Context, u *javasrc.Unit) (bool, error) {
	out := u.Print()
	if bytes.Equal(out, u.Src) {
		return false, nil
	}
	rel := paths.DisplayPath(u.Path, r.cfg.RepoRoot)

	if r.report.DryRun {
		if fd := preview.FileDiff(filepath.ToSlash(rel), u.Src, out, preview.DefaultContext); fd != nil {
			r.report.Diffs = append(r.report.Diffs, fd)
		}
		r.overlay[u.Path] = out
		r.record(u.Path, ledger.FileRecord{Path: rel, Action: ledger.ActionPreviewed})
		return true, nil
	}

	if r.archive != nil {
		if err := r.archive.Add(u.Path, u.Src); err != nil {
			r.fail(u.Path, err)
			return false, err
		}
	}
	if err := writeFile(u.Path, out); err != nil {
		err = errors.ForFile(errors.WriteFailed, u.Path, err)
		r.fail(u.Path, err)
		return false, err
	}
	r.record(u.Path, ledger.FileRecord{Path: rel, Action: ledger.ActionWritten})
	r.logger.Debug("File written", "path", rel)
	return true, nil
}

func (r *run) read(path string) ([]byte, error) {
	if out, ok := r.overlay[path]; ok {
		return out, nil
	}
	return os.ReadFile(path)
}

// writeFile replaces path's content, keeping its permissions.
func writeFile(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp := path + ".swagfill.tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (r *run) record(path string, rec ledger.FileRecord) {
	r.files[path] = rec
}

// fail records a per-file failure. Only the first failure of a file is
// reported.
func (r *run) fail(path string, err error) {
	rel := paths.DisplayPath(path, r.cfg.RepoRoot)
	r.logger.Error("File failed", "path", rel, "error", err.Error())
	if prev, ok := r.files[path]; ok && prev.Action == ledger.ActionFailed {
		return
	}
	r.report.Failures = append(r.report.Failures, FileFailure{
		Path:  rel,
		Code:  string(errors.CodeOf(err)),
		Error: err.Error(),
	})
	r.files[path] = ledger.FileRecord{Path: rel, Action: ledger.ActionFailed, Error: err.Error()}
}

func (r *run) finish() (*Report, error) {
	rep := r.report
	for _, rec := range r.files {
		if rec.Action == ledger.ActionFailed {
			rep.FilesFailed++
		} else {
			rep.FilesWritten++
		}
	}
	for name := range r.unresolved {
		rep.Unresolved = append(rep.Unresolved, name)
	}
	sort.Strings(rep.Unresolved)

	if r.archive != nil {
		if err := r.archive.Close(); err != nil {
			r.logger.Error("Backup failed", "error", err.Error())
		} else if r.archive.Len() > 0 {
			rep.Backup = r.archive.Path()
		}
	}
	rep.FinishedAt = time.Now()

	r.logger.Info("Run finished",
		"runId", rep.RunID,
		"operationsUpdated", rep.OperationsUpdated,
		"dtosUpdated", rep.DTOsUpdated,
		"filesWritten", rep.FilesWritten,
		"filesFailed", rep.FilesFailed,
		"unresolved", len(rep.Unresolved),
	)

	if r.ledger != nil {
		if err := r.ledger.Record(rep.ledgerRun(), r.fileRecords()); err != nil {
			return rep, fmt.Errorf("recording run: %w", err)
		}
	}
	return rep, nil
}

func (r *run) fileRecords() []ledger.FileRecord {
	out := make([]ledger.FileRecord, 0, len(r.files))
	for _, rec := range r.files {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (rep *Report) ledgerRun() *ledger.Run {
	return &ledger.Run{
		ID:         rep.RunID,
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
		DryRun:     rep.DryRun,
		Operations: rep.OperationsUpdated,
		DTOs:       rep.DTOsUpdated,
		Written:    rep.FilesWritten,
		Failed:     rep.FilesFailed,
		Unresolved: len(rep.Unresolved),
		Backup:     rep.Backup,
	}
}
