// Package javasrc presents Java compilation units as a small declaration
// model and rewrites them with lexically preserving text edits.
//
// A Unit is parsed once. Queries read the model built at parse time; edits
// are recorded against byte offsets of the original source and applied by
// Print, so regions that were not edited come out byte-for-byte unchanged.
package javasrc

import (
	"path/filepath"
	"strings"
)

// Span is a half-open byte range [Start, End) in the original source.
type Span struct {
	Start int
	End   int
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return o.Start >= s.Start && o.End <= s.End
}

// TypeKind discriminates type declarations.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
	KindRecord
)

// String returns the Java keyword for the kind.
func (k TypeKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	default:
		return "class"
	}
}

// Unit is one parsed compilation unit. Its identity (Path) never changes;
// its source is rewritten through the edit methods in edit.go.
type Unit struct {
	Path    string
	Src     []byte
	Package string
	Imports []*Import
	Types   []*TypeDecl

	// every annotation in the unit, nested ones included, in source order
	annotations []*Annotation

	// offsets used to place new imports
	packageEnd int

	newline string
	edits   []edit
	seq     int
	added   []string
}

// Name returns the unit's declared name: the primary type name, or the
// file name without extension when the unit declares no type.
func (u *Unit) Name() string {
	if t := u.Primary(); t != nil {
		return t.Name
	}
	base := filepath.Base(u.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Primary returns the top-level type named after the file, falling back to
// the first top-level type.
func (u *Unit) Primary() *TypeDecl {
	if len(u.Types) == 0 {
		return nil
	}
	base := filepath.Base(u.Path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, t := range u.Types {
		if t.Name == stem {
			return t
		}
	}
	return u.Types[0]
}

// AllTypes returns top-level and nested type declarations in source order.
func (u *Unit) AllTypes() []*TypeDecl {
	var out []*TypeDecl
	var walk func(ts []*TypeDecl)
	walk = func(ts []*TypeDecl) {
		for _, t := range ts {
			out = append(out, t)
			walk(t.Nested)
		}
	}
	walk(u.Types)
	return out
}

// Methods returns every method of every type in the unit.
func (u *Unit) Methods() []*Method {
	var out []*Method
	for _, t := range u.AllTypes() {
		out = append(out, t.Methods...)
	}
	return out
}

// Operations returns methods carrying at least one of the routing annotations.
func (u *Unit) Operations(routing []string) []*Method {
	var out []*Method
	for _, m := range u.Methods() {
		if m.HasAnnotation(routing...) {
			out = append(out, m)
		}
	}
	return out
}

// Accessors returns getter-style methods: the name starts with prefix
// followed by an upper-case letter, and the method returns a value.
func (u *Unit) Accessors(prefix string) []*Method {
	var out []*Method
	for _, m := range u.Methods() {
		if m.IsAccessor(prefix) {
			out = append(out, m)
		}
	}
	return out
}

// Fields returns the instance (non-static) fields of every type in the unit.
func (u *Unit) Fields() []*Field {
	var out []*Field
	for _, t := range u.AllTypes() {
		for _, f := range t.Fields {
			if !f.Static {
				out = append(out, f)
			}
		}
	}
	return out
}

// Annotations returns every annotation in the unit, nested ones included.
func (u *Unit) Annotations() []*Annotation {
	return u.annotations
}

// TypeDecl is a class, interface, enum or record declaration.
type TypeDecl struct {
	Name        string
	Kind        TypeKind
	Annotations []*Annotation
	Methods     []*Method
	Fields      []*Field
	Nested      []*TypeDecl
	Span        Span
}

// HasAnnotation reports whether the type carries an annotation with one of
// the given simple names.
func (t *TypeDecl) HasAnnotation(names ...string) bool {
	return hasAnnotation(t.Annotations, names)
}

// Method is a method declaration.
type Method struct {
	Name        string
	ReturnType  string
	Params      []*Param
	Annotations []*Annotation
	Body        string
	Span        Span

	// Comment is the raw block comment directly preceding the declaration.
	Comment string

	// line start of the declaration when nothing but whitespace precedes it
	// on its line, otherwise -1
	lineStart int
	// start of the line after the last annotation when that annotation ends
	// its line, otherwise -1
	afterAnnotations int
	indent           string
}

// HasAnnotation reports whether the method carries an annotation with one of
// the given simple names.
func (m *Method) HasAnnotation(names ...string) bool {
	return hasAnnotation(m.Annotations, names)
}

// Annotation returns the first method annotation with the given simple name.
func (m *Method) Annotation(name string) *Annotation {
	return findAnnotation(m.Annotations, name)
}

// IsAccessor reports whether m follows the getter convention for prefix.
func (m *Method) IsAccessor(prefix string) bool {
	if prefix == "" || !strings.HasPrefix(m.Name, prefix) || len(m.Name) == len(prefix) {
		return false
	}
	c := m.Name[len(prefix)]
	if c < 'A' || c > 'Z' {
		return false
	}
	return m.ReturnType != "" && m.ReturnType != "void"
}

// Doc returns the structured comment attached to the method. A missing
// comment, and a comment whose text starts with TODO, both report false.
func (m *Method) Doc() (Doc, bool) {
	if m.Comment == "" {
		return Doc{}, false
	}
	body := commentBody(m.Comment)
	if isTodo(body) {
		return Doc{}, false
	}
	return ParseDoc(body), true
}

// Param is a formal parameter.
type Param struct {
	Name        string
	Type        string
	Annotations []*Annotation
	Span        Span
}

// HasAnnotation reports whether the parameter carries an annotation with one
// of the given simple names.
func (p *Param) HasAnnotation(names ...string) bool {
	return hasAnnotation(p.Annotations, names)
}

// Field is a field declaration; one declaration may declare several names.
type Field struct {
	Names       []string
	Type        string
	Static      bool
	Annotations []*Annotation
	Span        Span
}

// Import is an import declaration. For wildcard imports Name is the
// package or type being imported from.
type Import struct {
	Name     string
	Static   bool
	Wildcard bool
	Span     Span
}

// SimpleName returns the last segment of the imported name.
func (i *Import) SimpleName() string {
	return lastSegment(i.Name)
}

// AnnotationKind discriminates the three annotation forms.
type AnnotationKind int

const (
	// Marker is @Name.
	Marker AnnotationKind = iota
	// Single is @Name(value).
	Single
	// Normal is @Name(key = value, ...), including @Name().
	Normal
)

// Annotation is one annotation usage.
type Annotation struct {
	// Name as written, possibly qualified.
	Name  string
	Kind  AnnotationKind
	Value Value   // Single only
	Pairs []*Pair // Normal only
	Span  Span
}

// SimpleName returns the annotation name without its package qualifier.
func (a *Annotation) SimpleName() string {
	return lastSegment(a.Name)
}

// Pair returns the element-value pair with the given key, or nil.
func (a *Annotation) Pair(key string) *Pair {
	for _, p := range a.Pairs {
		if p.Key == key {
			return p
		}
	}
	return nil
}

// Pair is one key = value element of a normal annotation.
type Pair struct {
	Key   string
	Value Value
	Span  Span
}

// Value is an annotation element value. The concrete types are
// *StringValue, *NumberValue, *ArrayValue, *AnnotationValue and *ExprValue.
type Value interface {
	// Source returns the value exactly as written.
	Source() string
	value()
}

// StringValue is a string literal, or a + concatenation of string literals.
// Text holds the literal contents without quotes, escaped as in an ordinary
// string literal: escapes are left as written, and text blocks have their
// bare quotes escaped and line breaks folded to spaces.
type StringValue struct {
	Text string
	Raw  string
}

// NumberValue is a numeric literal.
type NumberValue struct {
	Raw string
}

// ArrayValue is an element value array initializer: {a, b}.
type ArrayValue struct {
	Elems []Value
	Raw   string
}

// AnnotationValue is an annotation used as a value.
type AnnotationValue struct {
	Annotation *Annotation
	Raw        string
}

// ExprValue is any other expression: class literals, constants, arithmetic.
type ExprValue struct {
	Raw string
}

func (v *StringValue) Source() string     { return v.Raw }
func (v *NumberValue) Source() string     { return v.Raw }
func (v *ArrayValue) Source() string      { return v.Raw }
func (v *AnnotationValue) Source() string { return v.Raw }
func (v *ExprValue) Source() string       { return v.Raw }

func (*StringValue) value()     {}
func (*NumberValue) value()     {}
func (*ArrayValue) value()      {}
func (*AnnotationValue) value() {}
func (*ExprValue) value()       {}

func hasAnnotation(anns []*Annotation, names []string) bool {
	for _, a := range anns {
		simple := a.SimpleName()
		for _, n := range names {
			if simple == n {
				return true
			}
		}
	}
	return false
}

func findAnnotation(anns []*Annotation, name string) *Annotation {
	for _, a := range anns {
		if a.SimpleName() == name {
			return a
		}
	}
	return nil
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
