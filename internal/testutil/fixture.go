// Package testutil provides golden-tree helpers for tests that rewrite
// Java sources.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Case is one golden case: an input source tree and the tree expected
// after a run.
type Case struct {
	// Name is the case directory name under testdata/golden.
	Name string

	// Root is the absolute path to the case directory
	Root string

	// InputDir holds the sources a run starts from
	InputDir string

	// ExpectedDir holds the sources a run must produce
	ExpectedDir string
}

// LoadCase loads a golden case, failing the test on error.
func LoadCase(t *testing.T, name string) *Case {
	t.Helper()

	root := filepath.Join(getGoldenRoot(t), name)
	inputDir := filepath.Join(root, "input")
	if _, err := os.Stat(inputDir); os.IsNotExist(err) {
		t.Fatalf("Golden input not found: %s", inputDir)
	}

	return &Case{
		Name:        name,
		Root:        root,
		InputDir:    inputDir,
		ExpectedDir: filepath.Join(root, "expected"),
	}
}

// CopyInput copies the case input into a fresh temporary directory and
// returns it. Runs operate on the copy, never on testdata.
func (c *Case) CopyInput(t *testing.T) string {
	t.Helper()

	dst := t.TempDir()
	err := filepath.WalkDir(c.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(c.InputDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		t.Fatalf("Failed to copy golden input: %v", err)
	}
	return dst
}

// inputFiles returns the slash-separated relative paths of the case input.
func (c *Case) inputFiles(t *testing.T) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(c.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(c.InputDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to list golden input: %v", err)
	}
	return files
}

// getGoldenRoot returns the absolute path to testdata/golden/.
func getGoldenRoot(t *testing.T) string {
	t.Helper()

	// Get the directory of this source file
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}

	// Navigate from internal/testutil to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	goldenRoot := filepath.Join(projectRoot, "testdata", "golden")

	if _, err := os.Stat(goldenRoot); os.IsNotExist(err) {
		t.Fatalf("Golden root not found: %s", goldenRoot)
	}

	return goldenRoot
}
