// Package discovery finds the Java sources a run works on and decides which
// of them are service units.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"

	"swagfill/internal/config"
	"swagfill/internal/javasrc"
)

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"build":        true,
	"target":       true,
	"node_modules": true,
}

// Options control discovery.
type Options struct {
	// Include and Exclude are doublestar globs matched against
	// repo-relative, slash-separated paths.
	Include []string
	Exclude []string
	// ResourceSuffix marks service files by name, e.g. "Resource" for
	// RoomResource.java.
	ResourceSuffix string
	// ClassRoutingAnnotation marks service classes, e.g. "Path".
	ClassRoutingAnnotation string
}

// OptionsFromConfig returns the discovery options of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Include:                cfg.Discovery.Include,
		Exclude:                cfg.Discovery.Exclude,
		ResourceSuffix:         cfg.Discovery.ResourceSuffix,
		ClassRoutingAnnotation: cfg.Discovery.ClassRoutingAnnotation,
	}
}

// Finder lists candidate files under a repository root.
type Finder struct {
	root   string
	opts   Options
	logger *slog.Logger
}

// NewFinder creates a Finder for repoRoot.
func NewFinder(repoRoot string, opts Options, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Finder{root: repoRoot, opts: opts, logger: logger}
}

// Candidates returns the Java files selected by the include and exclude
// globs, sorted. With no paths the whole repository is searched; a
// directory argument is searched recursively and a file argument is taken
// as is.
func (f *Finder) Candidates(ctx context.Context, paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{f.root}
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(f.root, p)
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if strings.HasSuffix(p, ".java") {
				add(p)
			}
			continue
		}
		if err := f.walk(ctx, p, add); err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *Finder) walk(ctx context.Context, dir string, add func(string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			f.logger.Warn("Skipping unreadable path", "path", path, "error", err.Error())
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || skipDirs[d.Name()]) {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".java") {
			return nil
		}
		if f.Selected(path) {
			add(path)
		}
		return nil
	})
}

// Selected reports whether path passes the include and exclude globs.
func (f *Finder) Selected(path string) bool {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	if len(f.opts.Include) > 0 && !matchAny(f.opts.Include, rel) {
		return false
	}
	return !matchAny(f.opts.Exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// IsService reports whether u is a service unit: its file name ends in the
// resource suffix, or the class named after the file carries the
// class-level routing annotation.
func (f *Finder) IsService(u *javasrc.Unit) bool {
	base := filepath.Base(u.Path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if f.opts.ResourceSuffix != "" && strings.HasSuffix(stem, f.opts.ResourceSuffix) {
		return true
	}
	if f.opts.ClassRoutingAnnotation == "" {
		return false
	}
	for _, t := range u.Types {
		if t.Name == stem {
			return t.HasAnnotation(f.opts.ClassRoutingAnnotation)
		}
	}
	return false
}
