// Package paths locates swagfill's per-repository state directory and
// converts between absolute and repo-relative paths.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// StateDirName is the per-repository state directory.
const StateDirName = ".swagfill"

// StateDir returns <repoRoot>/.swagfill
func StateDir(repoRoot string) string {
	return filepath.Join(repoRoot, StateDirName)
}

// ConfigPath returns the path of the repository config file.
func ConfigPath(repoRoot string) string {
	return filepath.Join(StateDir(repoRoot), "config.json")
}

// ProfilePath returns the default location of the annotation profile.
func ProfilePath(repoRoot string) string {
	return filepath.Join(StateDir(repoRoot), "profile.toml")
}

// LedgerPath returns the path of the run ledger database.
func LedgerPath(repoRoot string) string {
	return filepath.Join(StateDir(repoRoot), "runs.db")
}

// LogPath returns the path of the run log file.
func LogPath(repoRoot string) string {
	return filepath.Join(StateDir(repoRoot), "logs", "swagfill.log")
}

// BackupDir returns the directory holding original-file archives.
func BackupDir(repoRoot string) string {
	return filepath.Join(StateDir(repoRoot), "backups")
}

// EnsureDir creates dir (and parents) if missing and returns it.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Returns repo-relative path with forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := evalOrSelf(absolutePath)
	if err != nil {
		return "", err
	}
	rootResolved, err := evalOrSelf(repoRoot)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// evalOrSelf resolves symlinks, keeping paths that do not exist yet as-is.
func evalOrSelf(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}
	return resolved, nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// DisplayPath returns the repo-relative form of path when it lies inside
// repoRoot, and path unchanged otherwise.
func DisplayPath(path, repoRoot string) string {
	if repoRoot == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	if !IsWithinRepo(path, repoRoot) {
		return path
	}
	rel, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return path
	}
	return rel
}

// FindRepoRoot walks up from dir looking for a .swagfill directory, then a
// .git directory. It returns dir itself when neither is found.
func FindRepoRoot(dir string) string {
	for _, marker := range []string{StateDirName, ".git"} {
		cur := dir
		for {
			if info, err := os.Stat(filepath.Join(cur, marker)); err == nil && info.IsDir() {
				return cur
			}
			parent := filepath.Dir(cur)
			if parent == cur {
				break
			}
			cur = parent
		}
	}
	return dir
}
