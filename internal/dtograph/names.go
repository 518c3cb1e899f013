package dtograph

import (
	"regexp"

	"swagfill/internal/javasrc"
)

// Matcher finds data-transfer type names in source text: a capitalized
// identifier ending in the configured suffix.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher builds a matcher for suffix, e.g. "DTO".
func NewMatcher(suffix string) *Matcher {
	return &Matcher{re: regexp.MustCompile(`\b[A-Z][A-Za-z0-9_]*` + regexp.QuoteMeta(suffix) + `\b`)}
}

// Find returns the distinct names in text in order of first appearance.
func (m *Matcher) Find(text string) []string {
	var c collector
	c.add(m, text)
	return c.names
}

// Signatures returns the names referenced by the return and parameter types
// of every method in u.
func (m *Matcher) Signatures(u *javasrc.Unit) []string {
	var c collector
	c.signatures(m, u)
	return c.names
}

// Fields returns the names referenced by the instance-field types of u.
func (m *Matcher) Fields(u *javasrc.Unit) []string {
	var c collector
	c.fields(m, u)
	return c.names
}

// Seeds returns the names a service unit refers to: in method bodies and
// signatures, in imports, and in instance fields.
func (m *Matcher) Seeds(u *javasrc.Unit) []string {
	var c collector
	for _, meth := range u.Methods() {
		c.add(m, meth.Body)
	}
	c.signatures(m, u)
	for _, imp := range u.Imports {
		if imp.Static || imp.Wildcard {
			continue
		}
		if name := imp.SimpleName(); m.re.FindString(name) == name {
			c.add(m, name)
		}
	}
	c.fields(m, u)
	return c.names
}

type collector struct {
	names []string
	seen  map[string]bool
}

func (c *collector) add(m *Matcher, text string) {
	if text == "" {
		return
	}
	for _, name := range m.re.FindAllString(text, -1) {
		if c.seen == nil {
			c.seen = make(map[string]bool)
		}
		if !c.seen[name] {
			c.seen[name] = true
			c.names = append(c.names, name)
		}
	}
}

func (c *collector) signatures(m *Matcher, u *javasrc.Unit) {
	for _, meth := range u.Methods() {
		c.add(m, meth.ReturnType)
		for _, p := range meth.Params {
			c.add(m, p.Type)
		}
	}
}

func (c *collector) fields(m *Matcher, u *javasrc.Unit) {
	for _, f := range u.Fields() {
		c.add(m, f.Type)
	}
}
