// Package resolve maps data-transfer type names to the source files that
// declare them.
package resolve

import (
	"context"
	"fmt"
	"path/filepath"

	"swagfill/internal/config"
)

// Resolver looks up the file declaring a type. ok is false when no file
// was found; err is reserved for lookups that could not be performed.
type Resolver interface {
	Resolve(ctx context.Context, name string) (path string, ok bool, err error)
}

// Backend names accepted in resolver.backend.
const (
	BackendFS   = "fs"
	BackendSCIP = "scip"
)

// New builds the resolver selected by cfg, memoized with an LRU cache when
// resolver.cacheSize is positive.
func New(cfg *config.Config) (Resolver, error) {
	root := cfg.EffectiveSearchRoot()

	var r Resolver
	switch cfg.Resolver.Backend {
	case "", BackendFS:
		r = NewFS(root)
	case BackendSCIP:
		indexPath := cfg.Resolver.ScipIndexPath
		if !filepath.IsAbs(indexPath) {
			indexPath = filepath.Join(cfg.RepoRoot, indexPath)
		}
		s, err := LoadSCIP(indexPath, root)
		if err != nil {
			return nil, err
		}
		r = s
	default:
		return nil, fmt.Errorf("unknown resolver backend %q", cfg.Resolver.Backend)
	}

	if cfg.Resolver.CacheSize <= 0 {
		return r, nil
	}
	return NewCached(r, cfg.Resolver.CacheSize)
}
