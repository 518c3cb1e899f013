package testutil

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	godiff "github.com/sourcegraph/go-diff/diff"

	"swagfill/internal/preview"
)

// updateGolden controls whether golden files should be updated.
// Use: go test ./... -run TestGolden -update
var updateGolden = flag.Bool("update", false, "update golden files")

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// CompareTree compares every file of the case input, as rewritten in repo,
// against the expected tree, failing with a unified diff on mismatch.
// If -update flag is set, the expected tree is rewritten from repo instead.
func CompareTree(t *testing.T, c *Case, repo string) {
	t.Helper()

	var diffs []*godiff.FileDiff
	for _, rel := range c.inputFiles(t) {
		got, err := os.ReadFile(filepath.Join(repo, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("Failed to read result %s: %v", rel, err)
		}
		expectedPath := filepath.Join(c.ExpectedDir, filepath.FromSlash(rel))

		if *updateGolden {
			if err := os.MkdirAll(filepath.Dir(expectedPath), 0o755); err != nil {
				t.Fatalf("Failed to create expected directory: %v", err)
			}
			if err := os.WriteFile(expectedPath, got, 0o644); err != nil {
				t.Fatalf("Failed to write golden file: %v", err)
			}
			continue
		}

		expected, err := os.ReadFile(expectedPath)
		if err != nil {
			if os.IsNotExist(err) {
				t.Fatalf("Golden file missing: %s\n\nRun with -update to create:\n  go test ./... -run %s -update",
					expectedPath, t.Name())
			}
			t.Fatalf("Failed to read golden file: %v", err)
		}
		if !bytes.Equal(expected, got) {
			diffs = append(diffs, preview.FileDiff(rel, expected, got, preview.DefaultContext))
		}
	}

	if *updateGolden {
		t.Logf("Updated golden tree: %s", c.ExpectedDir)
		return
	}
	if len(diffs) > 0 {
		out, err := preview.Render(diffs)
		if err != nil {
			t.Fatalf("Failed to render diff: %v", err)
		}
		t.Fatalf("Golden mismatch for %s (expected -> got):\n%s\nRun with -update to refresh:\n  go test ./... -run %s -update",
			c.Name, out, t.Name())
	}
}
