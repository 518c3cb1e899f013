//go:build cgo

package javasrc

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"swagfill/internal/errors"
)

// Parser turns Java source into Units using tree-sitter.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new Java parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Parser{parser: p}
}

// IsAvailable reports whether parsing is supported in this build.
func IsAvailable() bool {
	return true
}

// Parse parses src into a Unit. Sources with syntax errors are rejected so
// that a partial tree is never rewritten.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*Unit, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.ForFile(errors.ParseFailed, path, fmt.Errorf("parse error: %w", err))
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil, errors.ForFile(errors.ParseFailed, path, fmt.Errorf("syntax error near line %d", firstErrorLine(root)))
	}

	b := &builder{src: src, unit: &Unit{Path: path, Src: src, newline: detectNewline(src)}}
	b.program(root)
	return b.unit, nil
}

type builder struct {
	src  []byte
	unit *Unit
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.src)
}

func span(n *sitter.Node) Span {
	return Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "comment", "block_comment", "line_comment":
		return true
	}
	return false
}

// namedChildren returns the named children of n, comments excluded.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c != nil && !isComment(c) {
			out = append(out, c)
		}
	}
	return out
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil && c.Type() == typ {
			return c
		}
	}
	return nil
}

func (b *builder) program(root *sitter.Node) {
	for _, n := range namedChildren(root) {
		switch n.Type() {
		case "package_declaration":
			for _, c := range namedChildren(n) {
				if c.Type() == "scoped_identifier" || c.Type() == "identifier" {
					b.unit.Package = b.text(c)
				}
			}
			b.unit.packageEnd = int(n.EndByte())
		case "import_declaration":
			b.unit.Imports = append(b.unit.Imports, b.importDecl(n))
		default:
			if t := b.typeDecl(n); t != nil {
				b.unit.Types = append(b.unit.Types, t)
			}
		}
	}
}

func (b *builder) importDecl(n *sitter.Node) *Import {
	imp := &Import{Span: span(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.Wildcard = true
		case "scoped_identifier", "identifier":
			imp.Name = b.text(c)
		}
	}
	return imp
}

func (b *builder) typeDecl(n *sitter.Node) *TypeDecl {
	var kind TypeKind
	switch n.Type() {
	case "class_declaration":
		kind = KindClass
	case "interface_declaration":
		kind = KindInterface
	case "enum_declaration":
		kind = KindEnum
	case "record_declaration":
		kind = KindRecord
	default:
		return nil
	}

	t := &TypeDecl{
		Name:        b.text(n.ChildByFieldName("name")),
		Kind:        kind,
		Annotations: b.modifierAnnotations(n),
		Span:        span(n),
	}
	b.members(t, n.ChildByFieldName("body"))
	return t
}

func (b *builder) members(t *TypeDecl, body *sitter.Node) {
	for _, c := range namedChildren(body) {
		switch c.Type() {
		case "method_declaration":
			t.Methods = append(t.Methods, b.method(c))
		case "field_declaration":
			t.Fields = append(t.Fields, b.field(c))
		case "enum_body_declarations":
			b.members(t, c)
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			if nested := b.typeDecl(c); nested != nil {
				t.Nested = append(t.Nested, nested)
			}
		default:
			// constructors, initializers and constants carry no annotations
			// the engine manages, but their annotations still count as
			// references to imported types.
			b.modifierAnnotations(c)
		}
	}
}

// modifierAnnotations collects the annotations in the modifiers child of n.
func (b *builder) modifierAnnotations(n *sitter.Node) []*Annotation {
	mods := childOfType(n, "modifiers")
	if mods == nil {
		return nil
	}
	var out []*Annotation
	for _, c := range namedChildren(mods) {
		if a := b.annotation(c); a != nil {
			out = append(out, a)
		}
	}
	return out
}

func (b *builder) method(n *sitter.Node) *Method {
	m := &Method{
		Name:        b.text(n.ChildByFieldName("name")),
		ReturnType:  b.text(n.ChildByFieldName("type")),
		Annotations: b.modifierAnnotations(n),
		Span:        span(n),
	}
	if body := n.ChildByFieldName("body"); body != nil {
		m.Body = b.text(body)
		b.collectNested(body)
	}
	for _, c := range namedChildren(n.ChildByFieldName("parameters")) {
		if p := b.param(c); p != nil {
			m.Params = append(m.Params, p)
		}
	}
	if prev := n.PrevNamedSibling(); prev != nil && isComment(prev) {
		if text := b.text(prev); strings.HasPrefix(text, "/*") {
			m.Comment = text
		}
	}
	m.lineStart, m.indent = lineInfo(b.src, m.Span.Start)
	m.afterAnnotations = -1
	if n := len(m.Annotations); n > 0 && m.lineStart >= 0 {
		m.afterAnnotations = lineEndAfter(b.src, m.Annotations[n-1].Span.End)
	}
	return m
}

func (b *builder) param(n *sitter.Node) *Param {
	switch n.Type() {
	case "formal_parameter":
		return &Param{
			Name:        b.text(n.ChildByFieldName("name")),
			Type:        b.text(n.ChildByFieldName("type")),
			Annotations: b.modifierAnnotations(n),
			Span:        span(n),
		}
	case "spread_parameter":
		p := &Param{Annotations: b.modifierAnnotations(n), Span: span(n)}
		for _, c := range namedChildren(n) {
			switch c.Type() {
			case "modifiers":
			case "variable_declarator":
				p.Name = b.text(c.ChildByFieldName("name"))
			default:
				if p.Type == "" {
					p.Type = b.text(c) + "..."
				}
			}
		}
		return p
	default:
		return nil
	}
}

func (b *builder) field(n *sitter.Node) *Field {
	f := &Field{
		Type:        b.text(n.ChildByFieldName("type")),
		Annotations: b.modifierAnnotations(n),
		Span:        span(n),
	}
	if mods := childOfType(n, "modifiers"); mods != nil {
		f.Static = childOfType(mods, "static") != nil
	}
	for _, c := range namedChildren(n) {
		if c.Type() == "variable_declarator" {
			f.Names = append(f.Names, b.text(c.ChildByFieldName("name")))
		}
	}
	return f
}

// collectNested records annotations used inside method bodies, such as
// those on local variables and anonymous classes, so that import sweeps
// see them as references.
func (b *builder) collectNested(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		if c.Type() == "annotation" || c.Type() == "marker_annotation" {
			b.annotation(c)
			continue
		}
		b.collectNested(c)
	}
}

func (b *builder) annotation(n *sitter.Node) *Annotation {
	switch n.Type() {
	case "marker_annotation":
		a := &Annotation{Name: b.text(n.ChildByFieldName("name")), Kind: Marker, Span: span(n)}
		b.unit.annotations = append(b.unit.annotations, a)
		return a
	case "annotation":
	default:
		return nil
	}

	a := &Annotation{Name: b.text(n.ChildByFieldName("name")), Kind: Normal, Span: span(n)}
	b.unit.annotations = append(b.unit.annotations, a)

	args := namedChildren(n.ChildByFieldName("arguments"))
	if len(args) == 1 && args[0].Type() != "element_value_pair" {
		a.Kind = Single
		a.Value = b.value(args[0])
		return a
	}
	for _, c := range args {
		if c.Type() != "element_value_pair" {
			continue
		}
		a.Pairs = append(a.Pairs, &Pair{
			Key:   b.text(c.ChildByFieldName("key")),
			Value: b.value(c.ChildByFieldName("value")),
			Span:  span(c),
		})
	}
	return a
}

func (b *builder) value(n *sitter.Node) Value {
	if n == nil {
		return &ExprValue{}
	}
	raw := b.text(n)
	switch n.Type() {
	case "string_literal":
		return &StringValue{Text: unquote(raw), Raw: raw}
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal",
		"binary_integer_literal", "decimal_floating_point_literal":
		return &NumberValue{Raw: raw}
	case "element_value_array_initializer":
		arr := &ArrayValue{Raw: raw}
		for _, c := range namedChildren(n) {
			arr.Elems = append(arr.Elems, b.value(c))
		}
		return arr
	case "annotation", "marker_annotation":
		return &AnnotationValue{Annotation: b.annotation(n), Raw: raw}
	case "binary_expression", "parenthesized_expression":
		if text, ok := b.concat(n); ok {
			return &StringValue{Text: text, Raw: raw}
		}
	}
	return &ExprValue{Raw: raw}
}

// concat folds a + chain of string literals into one string.
func (b *builder) concat(n *sitter.Node) (string, bool) {
	switch n.Type() {
	case "string_literal":
		return unquote(b.text(n)), true
	case "parenthesized_expression":
		kids := namedChildren(n)
		if len(kids) != 1 {
			return "", false
		}
		return b.concat(kids[0])
	case "binary_expression":
		op := n.ChildByFieldName("operator")
		if op == nil || b.text(op) != "+" {
			return "", false
		}
		left, ok := b.concat(n.ChildByFieldName("left"))
		if !ok {
			return "", false
		}
		right, ok := b.concat(n.ChildByFieldName("right"))
		if !ok {
			return "", false
		}
		return left + right, true
	}
	return "", false
}

func unquote(raw string) string {
	if strings.HasPrefix(raw, `"""`) && strings.HasSuffix(raw, `"""`) && len(raw) >= 6 {
		return textBlock(strings.TrimSpace(raw[3 : len(raw)-3]))
	}
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// textBlock rewrites text block contents into the escaped form of an
// ordinary string literal: bare quotes are escaped, line breaks become
// spaces and line-continuation escapes are dropped.
func textBlock(body string) string {
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\n':
			i++
		case c == '\\' && i+1 < len(body):
			sb.WriteByte(c)
			sb.WriteByte(body[i+1])
			i++
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\n':
			sb.WriteByte(' ')
		case c == '\r':
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func firstErrorLine(n *sitter.Node) int {
	if n.IsError() || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && c.HasError() {
			return firstErrorLine(c)
		}
	}
	return int(n.StartPoint().Row) + 1
}
