package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"swagfill/internal/config"
	"swagfill/internal/errors"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"
)

func writeFile(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("class X {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFS_Resolve(t *testing.T) {
	root := t.TempDir()
	room := writeFile(t, root, "src/main/java/com/example/RoomDTO.java")
	writeFile(t, root, "src/main/java/com/example/zz/roomdto.java")
	writeFile(t, root, "build/generated/FloorDTO.java")
	writeFile(t, root, ".git/HallDTO.java")
	lower := writeFile(t, root, "src/main/java/com/example/Wingdto.java")

	r := NewFS(root)
	ctx := context.Background()

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"RoomDTO", room, true},
		{"WingDTO", lower, true},
		{"FloorDTO", "", false},
		{"HallDTO", "", false},
		{"MissingDTO", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := r.Resolve(ctx, tt.name)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFS_MissingRoot(t *testing.T) {
	r := NewFS(filepath.Join(t.TempDir(), "absent"))
	if _, ok, err := r.Resolve(context.Background(), "RoomDTO"); ok || err != nil {
		t.Errorf("Resolve on missing root = %v, %v", ok, err)
	}
}

func TestFS_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/RoomDTO.java")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewFS(root).Resolve(ctx, "RoomDTO"); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"semanticdb maven . . com/example/RoomDTO#", "RoomDTO"},
		{"semanticdb maven . . com/example/Outer#InnerDTO#", "InnerDTO"},
		{"semanticdb maven . . com/example/RoomDTO#getFloor().", ""},
		{"semanticdb maven . . com/example/RoomDTO#floor.", ""},
		{"local 4", ""},
	}
	for _, tt := range tests {
		if got := typeName(tt.symbol); got != tt.want {
			t.Errorf("typeName(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func writeIndex(t *testing.T, path string) {
	t.Helper()
	index := &scippb.Index{
		Documents: []*scippb.Document{
			{
				RelativePath: "src/com/example/RoomDTO.java",
				Symbols: []*scippb.SymbolInformation{
					{Symbol: "semanticdb maven . . com/example/RoomDTO#"},
					{Symbol: "semanticdb maven . . com/example/RoomDTO#getFloor()."},
				},
			},
			{
				RelativePath: "src/com/example/FloorDTO.java",
				Symbols: []*scippb.SymbolInformation{
					{Symbol: "semanticdb maven . . com/example/FloorDTO#"},
				},
			},
			{
				RelativePath: "src/com/other/RoomDTO.java",
				Symbols: []*scippb.SymbolInformation{
					{Symbol: "semanticdb maven . . com/other/RoomDTO#"},
				},
			},
		},
	}
	data, err := proto.Marshal(index)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestSCIP_Resolve(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.scip")
	writeIndex(t, indexPath)

	s, err := LoadSCIP(indexPath, dir)
	if err != nil {
		t.Fatalf("LoadSCIP: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}

	got, ok, err := s.Resolve(context.Background(), "RoomDTO")
	want := filepath.Join(dir, "src", "com", "example", "RoomDTO.java")
	if err != nil || !ok || got != want {
		t.Errorf("Resolve(RoomDTO) = %q, %v, %v; want %q", got, ok, err, want)
	}
	if _, ok, _ := s.Resolve(context.Background(), "HallDTO"); ok {
		t.Error("HallDTO should not resolve")
	}
}

func TestLoadSCIP_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSCIP(filepath.Join(dir, "missing.scip"), dir)
	if !errors.Is(err, errors.IndexMissing) {
		t.Errorf("missing index error = %v, want %s", err, errors.IndexMissing)
	}

	bad := filepath.Join(dir, "bad.scip")
	if err := os.WriteFile(bad, []byte{0xff, 0xff, 0xff}, 0644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadSCIP(bad, dir)
	if errors.CodeOf(err) != errors.ResolveFailed {
		t.Errorf("corrupt index code = %s, want %s", errors.CodeOf(err), errors.ResolveFailed)
	}
}

type countingResolver struct {
	calls map[string]int
}

func (c *countingResolver) Resolve(_ context.Context, name string) (string, bool, error) {
	c.calls[name]++
	if name == "RoomDTO" {
		return "/src/RoomDTO.java", true, nil
	}
	return "", false, nil
}

func TestCached(t *testing.T) {
	inner := &countingResolver{calls: make(map[string]int)}
	c, err := NewCached(inner, 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if path, ok, _ := c.Resolve(ctx, "RoomDTO"); !ok || path != "/src/RoomDTO.java" {
			t.Fatalf("Resolve(RoomDTO) = %q, %v", path, ok)
		}
		if _, ok, _ := c.Resolve(ctx, "MissingDTO"); ok {
			t.Fatal("MissingDTO should not resolve")
		}
	}
	if inner.calls["RoomDTO"] != 1 || inner.calls["MissingDTO"] != 1 {
		t.Errorf("inner calls = %v, want one per name", inner.calls)
	}

	if _, err := NewCached(inner, 0); err == nil {
		t.Error("NewCached(0) should fail")
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	writeIndex(t, filepath.Join(dir, "index.scip"))

	cfg := config.DefaultConfig()
	cfg.RepoRoot = dir

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New(fs): %v", err)
	}
	if _, ok := r.(*Cached); !ok {
		t.Errorf("New(fs) = %T, want *Cached", r)
	}

	cfg.Resolver.Backend = BackendSCIP
	cfg.Resolver.CacheSize = 0
	r, err = New(cfg)
	if err != nil {
		t.Fatalf("New(scip): %v", err)
	}
	if _, ok := r.(*SCIP); !ok {
		t.Errorf("New(scip) = %T, want *SCIP", r)
	}

	cfg.Resolver.Backend = "ctags"
	if _, err := New(cfg); err == nil {
		t.Error("unknown backend should fail")
	}
}
