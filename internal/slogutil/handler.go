// Package slogutil provides the swagfill slog handler and logger constructors.
package slogutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"swagfill/internal/paths"
)

// Handler writes one line per record:
//
//	2026-01-02T03:04:05Z [warn] Type not found | name=WingDTO path=src/Room.java
//
// String attributes holding absolute paths inside the repository are
// printed repo-relative.
type Handler struct {
	out      io.Writer
	mu       *sync.Mutex
	minLevel slog.Leveler
	repoRoot string
	noTime   bool
	prefix   []slog.Attr
	groups   []string
}

// NewHandler creates a new log handler.
func NewHandler(w io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{out: w, mu: &sync.Mutex{}, minLevel: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.minLevel = opts.Level
	}
	return h
}

// WithoutTime returns a copy of h that omits the timestamp column.
func (h *Handler) WithoutTime() *Handler {
	c := *h
	c.noTime = true
	return &c
}

// WithRepoRoot returns a copy of h that prints paths under root relative
// to it.
func (h *Handler) WithRepoRoot(root string) *Handler {
	c := *h
	c.repoRoot = root
	return &c
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, 128)
	if !h.noTime {
		line = r.Time.UTC().AppendFormat(line, time.RFC3339)
		line = append(line, ' ')
	}
	line = append(line, '[')
	line = append(line, levelString(r.Level)...)
	line = append(line, "] "...)
	line = append(line, r.Message...)

	sep := " |"
	appendAttr := func(a slog.Attr) {
		if a.Key == "" {
			return
		}
		line = append(line, sep...)
		sep = ""
		line = append(line, ' ')
		line = append(line, a.Key...)
		line = append(line, '=')
		line = append(line, h.formatValue(a.Value)...)
	}
	for _, a := range h.prefix {
		appendAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(h.qualify(a))
		return true
	})
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.prefix = make([]slog.Attr, 0, len(h.prefix)+len(attrs))
	c.prefix = append(c.prefix, h.prefix...)
	for _, a := range attrs {
		c.prefix = append(c.prefix, h.qualify(a))
	}
	return &c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(append([]string(nil), h.groups...), name)
	return &c
}

// qualify prefixes the key with the open groups, outermost first.
func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if len(h.groups) == 0 {
		return a
	}
	var key bytes.Buffer
	for _, g := range h.groups {
		key.WriteString(g)
		key.WriteByte('.')
	}
	key.WriteString(a.Key)
	return slog.Attr{Key: key.String(), Value: a.Value}
}

func (h *Handler) formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if h.repoRoot != "" && filepath.IsAbs(s) {
			return paths.DisplayPath(s, h.repoRoot)
		}
		return s
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return fmt.Sprint(v.Any())
	}
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}
