package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	origVersion, origCommit := Version, Commit
	defer func() {
		Version, Commit = origVersion, origCommit
	}()

	tests := []struct {
		name    string
		commit  string
		want    string
		partial bool
	}{
		{name: "unknown commit", commit: "unknown", want: "0.1.0"},
		{name: "short commit ignored", commit: "abc", want: "0.1.0"},
		{name: "long commit truncated", commit: "abc1234567890", want: "(abc1234)", partial: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version = "0.1.0"
			Commit = tt.commit

			got := Info()
			if tt.partial {
				if !strings.Contains(got, tt.want) {
					t.Errorf("Info() = %q, want to contain %q", got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Info() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFull(t *testing.T) {
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	defer func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	}()

	Version = "1.2.3"
	Commit = "abcdef123456"
	BuildDate = "2026-01-15"

	got := Full()
	for _, part := range []string{"swagfill version 1.2.3", "Commit: abcdef123456", "Built: 2026-01-15"} {
		if !strings.Contains(got, part) {
			t.Errorf("Full() = %q, want to contain %q", got, part)
		}
	}
}
