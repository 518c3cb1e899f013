package slogutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// openLogFile opens path for appending. When the existing file is larger
// than maxSize it is first shifted to path.1, path.1 to path.2 and so on,
// keeping at most maxBackups old files. maxSize 0 disables rotation.
func openLogFile(path string, maxSize uint64, maxBackups int) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	if info, err := os.Stat(path); err == nil && maxSize > 0 && uint64(info.Size()) > maxSize {
		rotate(path, maxBackups)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// rotate shifts path and its numbered backups up by one. Failures are
// ignored; the worst case is a log that keeps growing.
func rotate(path string, maxBackups int) {
	if maxBackups <= 0 {
		_ = os.Remove(path)
		return
	}
	_ = os.Remove(backupName(path, maxBackups))
	for i := maxBackups - 1; i >= 1; i-- {
		_ = os.Rename(backupName(path, i), backupName(path, i+1))
	}
	_ = os.Rename(path, backupName(path, 1))
}

func backupName(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}

// parseSize reads sizes such as "5MB" or "512KiB". Empty or invalid input
// yields 0.
func parseSize(s string) uint64 {
	if s == "" {
		return 0
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0
	}
	return n
}
