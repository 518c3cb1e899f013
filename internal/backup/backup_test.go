package backup

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestArchiveRoundTrip(t *testing.T) {
	repo := t.TempDir()
	room := filepath.Join(repo, "src", "RoomResource.java")
	dto := filepath.Join(repo, "src", "dto", "RoomDTO.java")
	for path, content := range map[string]string{room: "class RoomResource {}\n", dto: "class RoomDTO {}\n"} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	dir := filepath.Join(repo, ".swagfill", "backups")
	a := New(dir, "run-1", repo)
	if err := a.Add(room, []byte("class RoomResource {}\n")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := a.Add(dto, []byte("class RoomDTO {}\n")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := a.Add(room, []byte("second copy")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if a.Len() != 2 {
		t.Errorf("Len = %d, want 2", a.Len())
	}
	if a.Path() != filepath.Join(dir, "run-1.tar.zst") {
		t.Errorf("Path = %s", a.Path())
	}

	entries, err := Read(a.Path())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "src/RoomResource.java" || string(entries[0].Content) != "class RoomResource {}\n" {
		t.Errorf("entries = %+v", entries)
	}

	// overwrite and restore
	if err := os.WriteFile(room, []byte("rewritten"), 0644); err != nil {
		t.Fatal(err)
	}
	restored, err := Restore(a.Path(), repo)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(restored) != 2 {
		t.Errorf("restored = %v", restored)
	}
	data, _ := os.ReadFile(room)
	if string(data) != "class RoomResource {}\n" {
		t.Errorf("room after restore = %q", data)
	}
}

func TestRestore_KeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not preserved on windows")
	}
	repo := t.TempDir()
	files := map[string]os.FileMode{
		filepath.Join(repo, "Private.java"): 0600,
		filepath.Join(repo, "gradlew.java"): 0755,
	}
	a := New(filepath.Join(repo, "backups"), "run-3", repo)
	for path, mode := range files {
		if err := os.WriteFile(path, []byte("class X {}\n"), mode); err != nil {
			t.Fatal(err)
		}
		if err := os.Chmod(path, mode); err != nil {
			t.Fatal(err)
		}
		if err := a.Add(path, []byte("class X {}\n")); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for path := range files {
		if err := os.Chmod(path, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := Restore(a.Path(), repo); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for path, want := range files {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s mode = %v, want %v", filepath.Base(path), got, want)
		}
	}
}

func TestArchive_Empty(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, "run-empty", dir)
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(a.Path()); !os.IsNotExist(err) {
		t.Error("an empty run should leave no archive")
	}
}

func TestArchive_OutsideRepo(t *testing.T) {
	repo := t.TempDir()
	a := New(filepath.Join(repo, "backups"), "run-2", repo)
	defer func() { _ = a.Close() }()
	if err := a.Add(filepath.Join(filepath.Dir(repo), "Other.java"), []byte("x")); err == nil {
		t.Error("paths outside the repository should be refused")
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "none.tar.zst")); err == nil {
		t.Error("missing archive should fail")
	}
}
