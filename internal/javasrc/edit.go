package javasrc

import (
	"bytes"
	"sort"
	"strings"
)

type editKind int

const (
	insertEdit editKind = iota
	replaceEdit
)

// edit replaces the original bytes in span with text. Inserts have an empty
// span.
type edit struct {
	span Span
	text string
	kind editKind
	seq  int
}

func (u *Unit) record(span Span, text string, kind editKind) {
	u.seq++
	u.edits = append(u.edits, edit{span: span, text: text, kind: kind, seq: u.seq})
}

// Insert records text to be inserted at offset at. Inserts at the same
// offset are printed in the order they were recorded.
func (u *Unit) Insert(at int, text string) {
	u.record(Span{Start: at, End: at}, text, insertEdit)
}

// Replace records that span is to be replaced by text.
func (u *Unit) Replace(span Span, text string) {
	u.record(span, text, replaceEdit)
}

// Delete records removal of span. When span is the only content on its
// lines, the whole lines go with it; otherwise trailing blanks are removed.
func (u *Unit) Delete(span Span) {
	u.record(u.lineAware(span), "", replaceEdit)
}

// Deleted reports whether span lies inside a deleted or replaced region.
func (u *Unit) Deleted(span Span) bool {
	for _, e := range u.edits {
		if e.kind == replaceEdit && e.span.Contains(span) {
			return true
		}
	}
	return false
}

// Changed reports whether any edit has been recorded.
func (u *Unit) Changed() bool {
	return len(u.edits) > 0 || len(u.added) > 0
}

// Newline returns the line terminator used by the source.
func (u *Unit) Newline() string {
	return u.newline
}

// AddMethodAnnotation places an annotation on its own line after the
// method's existing annotations, at the method's indentation. Annotations
// sharing a line with the declaration get the new one prepended inline.
func (u *Unit) AddMethodAnnotation(m *Method, text string) {
	if m.afterAnnotations >= 0 {
		u.Insert(m.afterAnnotations, m.indent+text+u.newline)
		return
	}
	if m.lineStart >= 0 {
		u.Insert(m.lineStart, m.indent+text+u.newline)
		return
	}
	u.Insert(m.Span.Start, text+" ")
}

// AddParamAnnotation prepends an annotation to a parameter declaration.
func (u *Unit) AddParamAnnotation(p *Param, text string) {
	u.Insert(p.Span.Start, text+" ")
}

// AppendPairs adds element-value pairs ("key = value") to an annotation.
// Marker and single-member annotations are rewritten in the normal form.
func (u *Unit) AppendPairs(a *Annotation, pairs []string) {
	if len(pairs) == 0 {
		return
	}
	joined := strings.Join(pairs, ", ")
	switch a.Kind {
	case Normal:
		if n := len(a.Pairs); n > 0 {
			u.Insert(a.Pairs[n-1].Span.End, ", "+joined)
			return
		}
		u.Insert(a.Span.End-1, joined)
	case Single:
		u.Replace(a.Span, "@"+a.Name+"(value = "+a.Value.Source()+", "+joined+")")
	default:
		u.Replace(a.Span, "@"+a.Name+"("+joined+")")
	}
}

// RemoveAnnotation deletes an annotation usage.
func (u *Unit) RemoveAnnotation(a *Annotation) {
	u.Delete(a.Span)
}

// HasImport reports whether the qualified type name is visible in the unit
// through an exact import, a wildcard import of its package, the unit's own
// package, or an import added during this edit session.
func (u *Unit) HasImport(qualified string) bool {
	pkg := ""
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		pkg = qualified[:i]
	}
	if pkg != "" && pkg == u.Package {
		return true
	}
	for _, imp := range u.Imports {
		if imp.Static || u.Deleted(imp.Span) {
			continue
		}
		if (!imp.Wildcard && imp.Name == qualified) || (imp.Wildcard && imp.Name == pkg) {
			return true
		}
	}
	for _, q := range u.added {
		if q == qualified {
			return true
		}
	}
	return false
}

// EnsureImport schedules an import of the qualified name unless it is
// already visible. It reports whether an import was added.
func (u *Unit) EnsureImport(qualified string) bool {
	if u.HasImport(qualified) {
		return false
	}
	u.added = append(u.added, qualified)
	return true
}

// RemoveImport deletes an import declaration.
func (u *Unit) RemoveImport(imp *Import) {
	u.Delete(imp.Span)
}

// Print renders the source with every recorded edit applied. Unedited
// regions are copied from the original bytes.
func (u *Unit) Print() []byte {
	edits := make([]edit, len(u.edits), len(u.edits)+1)
	copy(edits, u.edits)
	if e, ok := u.importEdit(); ok {
		edits = append(edits, e)
	}
	if len(edits) == 0 {
		return append([]byte(nil), u.Src...)
	}

	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.span.Start != b.span.Start {
			return a.span.Start < b.span.Start
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.seq < b.seq
	})

	var out bytes.Buffer
	out.Grow(len(u.Src) + 256)
	pos := 0
	for _, e := range edits {
		if e.span.Start < pos {
			// overlaps a region already replaced
			if e.span.End > pos {
				pos = e.span.End
			}
			continue
		}
		out.Write(u.Src[pos:e.span.Start])
		out.WriteString(e.text)
		pos = e.span.End
	}
	out.Write(u.Src[pos:])
	return out.Bytes()
}

// importEdit builds the insertion for imports added by EnsureImport. New
// imports go after the last existing import, else after the package
// declaration, else at the top of the file.
func (u *Unit) importEdit() (edit, bool) {
	if len(u.added) == 0 {
		return edit{}, false
	}
	var b strings.Builder
	for _, q := range u.added {
		b.WriteString("import " + q + ";" + u.newline)
	}
	block := b.String()

	switch {
	case len(u.Imports) > 0:
		at, ok := u.nextLine(u.Imports[len(u.Imports)-1].Span.End)
		if !ok {
			block = u.newline + block
		}
		return edit{span: Span{at, at}, text: block, kind: insertEdit, seq: u.seq + 1}, true
	case u.packageEnd > 0:
		at, ok := u.nextLine(u.packageEnd)
		if !ok {
			block = u.newline + block
		}
		return edit{span: Span{at, at}, text: u.newline + block, kind: insertEdit, seq: u.seq + 1}, true
	default:
		return edit{span: Span{0, 0}, text: block + u.newline, kind: insertEdit, seq: u.seq + 1}, true
	}
}

// nextLine returns the offset just past the line terminator following off.
// The boolean is false when the source ends without one.
func (u *Unit) nextLine(off int) (int, bool) {
	if i := bytes.IndexByte(u.Src[off:], '\n'); i >= 0 {
		return off + i + 1, true
	}
	return len(u.Src), false
}

func (u *Unit) lineAware(s Span) Span {
	src := u.Src
	ls := s.Start
	for ls > 0 && isBlank(src[ls-1]) {
		ls--
	}
	le := s.End
	for le < len(src) && (isBlank(src[le]) || src[le] == '\r') {
		le++
	}
	if (ls == 0 || src[ls-1] == '\n') && (le == len(src) || src[le] == '\n') {
		if le < len(src) {
			le++
		}
		return Span{Start: ls, End: le}
	}

	end := s.End
	for end < len(src) && isBlank(src[end]) {
		end++
	}
	return Span{Start: s.Start, End: end}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

// lineInfo returns the start of the line containing off and its leading
// whitespace, or -1 when anything other than whitespace precedes off.
func lineInfo(src []byte, off int) (int, string) {
	ls := off
	for ls > 0 && src[ls-1] != '\n' {
		ls--
	}
	for i := ls; i < off; i++ {
		if !isBlank(src[i]) {
			return -1, ""
		}
	}
	return ls, string(src[ls:off])
}

// lineEndAfter returns the start of the next line when only whitespace
// follows off on its line, otherwise -1.
func lineEndAfter(src []byte, off int) int {
	for i := off; i < len(src); i++ {
		switch src[i] {
		case ' ', '\t', '\r':
		case '\n':
			return i + 1
		default:
			return -1
		}
	}
	return -1
}

func detectNewline(src []byte) string {
	if bytes.Contains(src, []byte("\r\n")) {
		return "\r\n"
	}
	return "\n"
}
