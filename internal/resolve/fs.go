package resolve

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

// skipDirs are directory names never searched.
var skipDirs = map[string]bool{
	"build":        true,
	"target":       true,
	"node_modules": true,
}

// FS resolves names by walking a search root for <Name>.java. File names
// are compared case-insensitively and the first match in walk order wins.
type FS struct {
	root string
}

// NewFS creates a filesystem resolver rooted at root.
func NewFS(root string) *FS {
	return &FS{root: root}
}

// Resolve implements Resolver.
func (r *FS) Resolve(ctx context.Context, name string) (string, bool, error) {
	if name == "" {
		return "", false, nil
	}
	want := strings.ToLower(name) + ".java"

	var found string
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped
			if d != nil && d.IsDir() && path != r.root {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != r.root && (strings.HasPrefix(d.Name(), ".") || skipDirs[d.Name()]) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.ToLower(d.Name()) == want {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return found, found != "", nil
}
