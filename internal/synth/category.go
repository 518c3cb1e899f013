package synth

import (
	"strings"

	"swagfill/internal/dialect"
	"swagfill/internal/javasrc"
)

// Category is a documentation role managed by the engine.
type Category uint8

const (
	OperationSummary Category = 1 << iota
	ParameterDescriptor
	ResponseDescriptor
	SchemaDescriptor
)

// AllOperationCategories are the categories every operation must carry.
const AllOperationCategories = OperationSummary | ParameterDescriptor | ResponseDescriptor

func (c Category) String() string {
	var parts []string
	for _, x := range []struct {
		c    Category
		name string
	}{
		{OperationSummary, "operation"},
		{ParameterDescriptor, "parameter"},
		{ResponseDescriptor, "response"},
		{SchemaDescriptor, "schema"},
	} {
		if c&x.c != 0 {
			parts = append(parts, x.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// MarshalText renders the set by name in reports.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// CategorySet is a set of categories.
type CategorySet = Category

// Has reports whether every category in c is in the set.
func (s Category) Has(c Category) bool {
	return s&c == c
}

// Categories returns the categories already present on an operation.
// Presence is by annotation simple name only; the method's own annotations
// and those of its parameters are considered together.
func Categories(p *dialect.Profile, op *javasrc.Method) CategorySet {
	var set CategorySet
	add := func(a *javasrc.Annotation) {
		switch a.SimpleName() {
		case p.Target.Operation.Name:
			set |= OperationSummary
		case p.Target.Parameter.Name:
			set |= ParameterDescriptor
		case p.Target.Response.Name, p.Target.ResponseContainer:
			set |= ResponseDescriptor
		case p.Target.Schema.Name:
			set |= SchemaDescriptor
		}
	}
	for _, a := range op.Annotations {
		add(a)
	}
	for _, param := range op.Params {
		for _, a := range param.Annotations {
			add(a)
		}
	}
	return set
}
