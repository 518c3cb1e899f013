// Package backup archives original sources before a run overwrites them
// and restores them on request. Archives are zstd-compressed tarballs
// named after the run ID.
package backup

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"swagfill/internal/errors"
)

// Ext is the archive file extension.
const Ext = ".tar.zst"

// PathFor returns the archive path for a run.
func PathFor(dir, runID string) string {
	return filepath.Join(dir, runID+Ext)
}

// Archive collects originals of one run. The file is created on the first
// Add, so runs that write nothing leave no archive behind.
type Archive struct {
	path     string
	repoRoot string

	f     *os.File
	zw    *zstd.Encoder
	tw    *tar.Writer
	names map[string]bool
}

// New prepares an archive for runID in dir. Entry names are stored
// relative to repoRoot.
func New(dir, runID, repoRoot string) *Archive {
	return &Archive{
		path:     PathFor(dir, runID),
		repoRoot: repoRoot,
		names:    make(map[string]bool),
	}
}

// Path returns the archive path.
func (a *Archive) Path() string {
	return a.path
}

// Len returns the number of archived files.
func (a *Archive) Len() int {
	return len(a.names)
}

func (a *Archive) open() error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return err
	}
	a.f, a.zw, a.tw = f, zw, tar.NewWriter(zw)
	return nil
}

// Add stores the original content of path. A path already in the archive
// is skipped so the first original wins.
func (a *Archive) Add(path string, content []byte) error {
	name, err := a.entryName(path)
	if err != nil {
		return errors.ForFile(errors.BackupFailed, path, err)
	}
	if a.names[name] {
		return nil
	}
	if a.tw == nil {
		if err := a.open(); err != nil {
			return errors.ForFile(errors.BackupFailed, path, err)
		}
	}

	mode := int64(0644)
	if info, err := os.Stat(path); err == nil {
		mode = int64(info.Mode().Perm())
	}
	hdr := &tar.Header{
		Name:    name,
		Mode:    mode,
		Size:    int64(len(content)),
		ModTime: time.Now(),
	}
	if err := a.tw.WriteHeader(hdr); err != nil {
		return errors.ForFile(errors.BackupFailed, path, err)
	}
	if _, err := a.tw.Write(content); err != nil {
		return errors.ForFile(errors.BackupFailed, path, err)
	}
	a.names[name] = true
	return nil
}

func (a *Archive) entryName(path string) (string, error) {
	rel, err := filepath.Rel(a.repoRoot, path)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside the repository", path)
	}
	return rel, nil
}

// Close flushes and closes the archive. It is a no-op when nothing was
// added.
func (a *Archive) Close() error {
	if a.tw == nil {
		return nil
	}
	err := a.tw.Close()
	if cerr := a.zw.Close(); err == nil {
		err = cerr
	}
	if cerr := a.f.Close(); err == nil {
		err = cerr
	}
	a.tw = nil
	if err != nil {
		return errors.New(errors.BackupFailed, "failed to finish backup archive", err)
	}
	return nil
}

// Entry is one archived original.
type Entry struct {
	Name    string
	Mode    os.FileMode
	Content []byte
}

// Read returns every entry of an archive.
func Read(archivePath string) ([]Entry, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.New(errors.BackupFailed, "failed to open backup archive", err)
	}
	defer func() { _ = f.Close() }()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, errors.New(errors.BackupFailed, "failed to read backup archive", err)
	}
	defer zr.Close()

	var entries []Entry
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New(errors.BackupFailed, "corrupt backup archive", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, errors.New(errors.BackupFailed, "corrupt backup archive", err)
		}
		entries = append(entries, Entry{Name: hdr.Name, Mode: hdr.FileInfo().Mode().Perm(), Content: content})
	}
	return entries, nil
}

// Restore writes every original in the archive back under repoRoot with
// its archived permissions and returns the restored paths.
func Restore(archivePath, repoRoot string) ([]string, error) {
	entries, err := Read(archivePath)
	if err != nil {
		return nil, err
	}

	var restored []string
	for _, e := range entries {
		clean := filepath.Clean(filepath.FromSlash(e.Name))
		if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return restored, errors.New(errors.BackupFailed, fmt.Sprintf("unsafe entry %q in archive", e.Name), nil)
		}
		target := filepath.Join(repoRoot, clean)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return restored, errors.ForFile(errors.BackupFailed, target, err)
		}
		mode := e.Mode
		if mode == 0 {
			mode = 0644
		}
		if err := os.WriteFile(target, e.Content, mode); err != nil {
			return restored, errors.ForFile(errors.BackupFailed, target, err)
		}
		// WriteFile keeps the mode of an existing file
		if err := os.Chmod(target, mode); err != nil {
			return restored, errors.ForFile(errors.BackupFailed, target, err)
		}
		restored = append(restored, target)
	}
	return restored, nil
}
