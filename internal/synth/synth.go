// Package synth decides which documentation annotations an operation or
// accessor is missing and writes them, migrating legacy status codes on the
// way.
package synth

import (
	"log/slog"

	"swagfill/internal/dialect"
	"swagfill/internal/javasrc"
)

// Options are the naming conventions the synthesizer works with.
type Options struct {
	// Routing annotations mark a method as an externally reachable operation.
	Routing []string
	// Context annotations mark framework-injected parameters, which get no
	// descriptor.
	Context []string
	// DtoSuffix is the naming suffix of data-transfer types.
	DtoSuffix string
	// AccessorPrefix is the getter prefix, normally "get".
	AccessorPrefix string
}

// Synthesizer applies the synthesis rules to parsed units.
type Synthesizer struct {
	profile *dialect.Profile
	opts    Options
	logger  *slog.Logger
}

// New creates a Synthesizer.
func New(profile *dialect.Profile, opts Options, logger *slog.Logger) *Synthesizer {
	if profile == nil {
		profile = dialect.Default()
	}
	if opts.AccessorPrefix == "" {
		opts.AccessorPrefix = "get"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synthesizer{profile: profile, opts: opts, logger: logger}
}

// Profile returns the dialect profile in use.
func (s *Synthesizer) Profile() *dialect.Profile {
	return s.profile
}

// OperationResult describes what synthesis did to one operation.
type OperationResult struct {
	Method string `json:"method" yaml:"method"`
	// Synthesized are categories added with real content.
	Synthesized Category `json:"synthesized" yaml:"synthesized"`
	// Placeholders are categories satisfied by a TODO marker.
	Placeholders Category `json:"placeholders" yaml:"placeholders"`
	// Migrated counts legacy status codes turned into responses.
	Migrated int `json:"migrated" yaml:"migrated"`
	// LegacyRemoved counts removed legacy declarations.
	LegacyRemoved int `json:"legacyRemoved" yaml:"legacyRemoved"`
}

// Changed reports whether the operation was modified.
func (r OperationResult) Changed() bool {
	return r.Synthesized != 0 || r.Placeholders != 0 || r.LegacyRemoved > 0
}

// ServiceResult summarizes synthesis over one service unit.
type ServiceResult struct {
	Operations []OperationResult `json:"operations" yaml:"operations"`
	// ImportsRemoved counts legacy imports swept after migration.
	ImportsRemoved int `json:"importsRemoved" yaml:"importsRemoved"`
}

// Updated returns the number of operations that changed.
func (r ServiceResult) Updated() int {
	n := 0
	for _, op := range r.Operations {
		if op.Changed() {
			n++
		}
	}
	return n
}

// Service brings every operation of a unit up to the target standard and
// then removes legacy imports nothing references any more.
func (s *Synthesizer) Service(u *javasrc.Unit) ServiceResult {
	var res ServiceResult
	legacyRemoved := false
	for _, op := range u.Operations(s.opts.Routing) {
		r := s.Operation(u, op)
		if r.LegacyRemoved > 0 {
			legacyRemoved = true
		}
		res.Operations = append(res.Operations, r)
	}
	if legacyRemoved {
		res.ImportsRemoved = SweepLegacyImports(u, s.profile)
	}
	return res
}

// Operation synthesizes the missing categories of one operation. The
// operation-summary, response and parameter rules run in that order, so
// new method annotations appear in that order too.
func (s *Synthesizer) Operation(u *javasrc.Unit, op *javasrc.Method) OperationResult {
	present := Categories(s.profile, op)
	doc, hasDoc := op.Doc()
	res := OperationResult{Method: op.Name}

	if !present.Has(OperationSummary) {
		s.operationSummary(u, op, doc, hasDoc, &res)
	}
	s.responses(u, op, present.Has(ResponseDescriptor), &res)
	if !present.Has(ParameterDescriptor) {
		s.parameters(u, op, doc, hasDoc, &res)
	}

	if res.Changed() {
		s.logger.Debug("Operation synthesized",
			"unit", u.Name(),
			"method", op.Name,
			"synthesized", res.Synthesized.String(),
			"placeholders", res.Placeholders.String(),
			"migrated", res.Migrated,
		)
	}
	return res
}

func (s *Synthesizer) operationSummary(u *javasrc.Unit, op *javasrc.Method, doc javasrc.Doc, hasDoc bool, res *OperationResult) {
	target := s.profile.Target.Operation
	desc := s.profile.Placeholders.Operation
	if hasDoc && doc.Description != "" {
		desc = doc.Description
		res.Synthesized |= OperationSummary
	} else {
		res.Placeholders |= OperationSummary
	}
	u.AddMethodAnnotation(op, annotation(target.Name,
		pair("description", javasrc.Quote(desc)),
		pair("summary", javasrc.Quote(op.Name)),
	))
	u.EnsureImport(target.Import)
}

func (s *Synthesizer) parameters(u *javasrc.Unit, op *javasrc.Method, doc javasrc.Doc, hasDoc bool, res *OperationResult) {
	params := s.documentable(op)
	if len(params) == 0 {
		return
	}
	target := s.profile.Target.Parameter

	if !hasDoc {
		u.AddMethodAnnotation(op, annotation(target.Name,
			pair("description", javasrc.Quote(s.profile.Placeholders.Parameter)),
		))
		u.EnsureImport(target.Import)
		res.Placeholders |= ParameterDescriptor
		return
	}

	texts := pairTags(params, doc)
	for i, p := range params {
		text := texts[i]
		if text == "" {
			text = s.profile.Placeholders.ParameterTag
		}
		u.AddParamAnnotation(p, annotation(target.Name,
			pair("description", javasrc.Quote(text)),
			pair("schema", s.schemaType(p.Type)),
		))
	}
	u.EnsureImport(target.Import)
	u.EnsureImport(s.profile.Target.Schema.Import)
	res.Synthesized |= ParameterDescriptor
}

// documentable returns the parameters that are supplied by callers.
func (s *Synthesizer) documentable(op *javasrc.Method) []*javasrc.Param {
	var out []*javasrc.Param
	for _, p := range op.Params {
		if !p.HasAnnotation(s.opts.Context...) {
			out = append(out, p)
		}
	}
	return out
}

// pairTags matches @param tags to parameters. A tag naming a parameter goes
// to that parameter; the rest are assigned by position to parameters whose
// name no tag carries.
func pairTags(params []*javasrc.Param, doc javasrc.Doc) []string {
	texts := make([]string, len(params))
	named := make(map[string]bool, len(params))
	for _, p := range params {
		named[p.Name] = true
	}
	var loose []string
	for _, tag := range doc.Params {
		if !named[tag.Name] {
			loose = append(loose, tag.Text)
		}
	}
	next := 0
	for i, p := range params {
		if tag, ok := doc.Param(p.Name); ok {
			texts[i] = tag.Text
			continue
		}
		if next < len(loose) {
			texts[i] = loose[next]
			next++
		}
	}
	return texts
}

func (s *Synthesizer) schemaType(typ string) string {
	return annotation(s.profile.Target.Schema.Name, pair("type", javasrc.Quote(typ)))
}

func annotation(name string, pairs ...string) string {
	out := "@" + name + "("
	for i, p := range pairs {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out + ")"
}

func pair(key, value string) string {
	return key + " = " + value
}
