package discovery

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"swagfill/internal/config"
	"swagfill/internal/javasrc"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("class X {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func rels(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestCandidates(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"src/main/java/com/example/RoomResource.java",
		"src/main/java/com/example/RoomDTO.java",
		"src/main/java/com/example/notes.txt",
		"src/test/java/com/example/RoomResourceTest.java",
		"src/main/generated/com/example/Gen.java",
		"target/classes/Copy.java",
		".idea/Hidden.java",
		"Top.java",
	} {
		touch(t, root, rel)
	}

	f := NewFinder(root, OptionsFromConfig(config.DefaultConfig()), nil)
	got, err := f.Candidates(context.Background())
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	want := []string{
		"Top.java",
		"src/main/java/com/example/RoomDTO.java",
		"src/main/java/com/example/RoomResource.java",
	}
	if r := rels(t, root, got); !reflect.DeepEqual(r, want) {
		t.Errorf("Candidates = %v, want %v", r, want)
	}

	got, err = f.Candidates(context.Background(), "src/main/java/com/example/RoomDTO.java", "src/test")
	if err != nil {
		t.Fatalf("Candidates(paths): %v", err)
	}
	want = []string{"src/main/java/com/example/RoomDTO.java"}
	if r := rels(t, root, got); !reflect.DeepEqual(r, want) {
		t.Errorf("Candidates(paths) = %v, want %v", r, want)
	}

	if _, err := f.Candidates(context.Background(), "missing"); err == nil {
		t.Error("missing path should fail")
	}
}

func TestSelected(t *testing.T) {
	root := t.TempDir()
	f := NewFinder(root, Options{
		Include: []string{"services/**/*.java"},
		Exclude: []string{"**/legacy/**"},
	}, nil)

	tests := []struct {
		rel  string
		want bool
	}{
		{"services/rooms/RoomResource.java", true},
		{"services/RoomResource.java", true},
		{"services/legacy/OldResource.java", false},
		{"other/RoomResource.java", false},
	}
	for _, tt := range tests {
		if got := f.Selected(filepath.Join(root, filepath.FromSlash(tt.rel))); got != tt.want {
			t.Errorf("Selected(%s) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestIsService(t *testing.T) {
	f := NewFinder("/repo", OptionsFromConfig(config.DefaultConfig()), nil)
	path := &javasrc.Annotation{Name: "javax.ws.rs.Path", Kind: javasrc.Single}

	tests := []struct {
		name string
		unit *javasrc.Unit
		want bool
	}{
		{
			name: "resource suffix",
			unit: &javasrc.Unit{Path: "/repo/RoomResource.java"},
			want: true,
		},
		{
			name: "routed primary class",
			unit: &javasrc.Unit{Path: "/repo/Rooms.java", Types: []*javasrc.TypeDecl{
				{Name: "Rooms", Annotations: []*javasrc.Annotation{path}},
			}},
			want: true,
		},
		{
			name: "routed secondary class",
			unit: &javasrc.Unit{Path: "/repo/Rooms.java", Types: []*javasrc.TypeDecl{
				{Name: "Rooms"},
				{Name: "Helper", Annotations: []*javasrc.Annotation{path}},
			}},
			want: false,
		},
		{
			name: "plain class",
			unit: &javasrc.Unit{Path: "/repo/RoomDTO.java", Types: []*javasrc.TypeDecl{{Name: "RoomDTO"}}},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IsService(tt.unit); got != tt.want {
				t.Errorf("IsService = %v, want %v", got, tt.want)
			}
		})
	}
}
