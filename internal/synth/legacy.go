package synth

import (
	"strings"

	"swagfill/internal/javasrc"
)

// StatusCode is a (code, condition) entry taken from a legacy declaration.
type StatusCode struct {
	Code      string
	Condition string
}

// responses handles the response-descriptor category together with legacy
// migration:
//   - no response yet, legacy entries found: one response per entry, legacy removed
//   - no response yet, nothing usable: a placeholder response
//   - response present: legacy declarations removed, responses untouched
//
// A malformed entry adds the placeholder at operation level.
func (s *Synthesizer) responses(u *javasrc.Unit, op *javasrc.Method, present bool, res *OperationResult) {
	decls := s.legacyDeclarations(op)

	if !present {
		codes, malformed := s.StatusCodes(decls)
		target := s.profile.Target.Response
		for _, c := range codes {
			u.AddMethodAnnotation(op, annotation(target.Name,
				pair("responseCode", `"`+c.Code+`"`),
				pair("description", `"`+c.Condition+`"`),
			))
		}
		if len(codes) > 0 {
			res.Synthesized |= ResponseDescriptor
			res.Migrated = len(codes)
		}
		if len(codes) == 0 || malformed > 0 {
			u.AddMethodAnnotation(op, annotation(target.Name,
				pair("description", javasrc.Quote(s.profile.Placeholders.Response)),
			))
			res.Placeholders |= ResponseDescriptor
		}
		u.EnsureImport(target.Import)
		if malformed > 0 {
			s.logger.Warn("Malformed legacy status code", "unit", u.Name(), "method", op.Name, "count", malformed)
		}
	}

	for _, d := range decls {
		u.RemoveAnnotation(d)
		res.LegacyRemoved++
	}
}

// legacyDeclarations returns the legacy status-code containers on op.
func (s *Synthesizer) legacyDeclarations(op *javasrc.Method) []*javasrc.Annotation {
	var out []*javasrc.Annotation
	for _, a := range op.Annotations {
		if s.profile.IsLegacyContainer(a.SimpleName()) {
			out = append(out, a)
		}
	}
	return out
}

// StatusCodes extracts the entries of legacy declarations. Entries whose
// code or condition is empty after normalization are counted as malformed.
func (s *Synthesizer) StatusCodes(decls []*javasrc.Annotation) ([]StatusCode, int) {
	var (
		codes     []StatusCode
		malformed int
	)
	for _, d := range decls {
		for _, elem := range containerElements(d) {
			av, ok := elem.(*javasrc.AnnotationValue)
			if !ok || av.Annotation.SimpleName() != s.profile.Legacy.Entry {
				malformed++
				continue
			}
			entry := av.Annotation
			code := digits(pairValue(entry, s.profile.Legacy.CodeKey))
			cond := conditionText(pairValue(entry, s.profile.Legacy.ConditionKey))
			if code == "" || cond == "" {
				malformed++
				continue
			}
			codes = append(codes, StatusCode{Code: code, Condition: cond})
		}
	}
	return codes, malformed
}

// containerElements returns the entries of @C({...}), @C(@E) and
// @C(value = {...}).
func containerElements(a *javasrc.Annotation) []javasrc.Value {
	var v javasrc.Value
	switch a.Kind {
	case javasrc.Single:
		v = a.Value
	case javasrc.Normal:
		if p := a.Pair("value"); p != nil {
			v = p.Value
		}
	}
	switch x := v.(type) {
	case *javasrc.ArrayValue:
		return x.Elems
	case nil:
		return nil
	default:
		return []javasrc.Value{x}
	}
}

func pairValue(a *javasrc.Annotation, key string) javasrc.Value {
	if p := a.Pair(key); p != nil {
		return p.Value
	}
	return nil
}

func digits(v javasrc.Value) string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	for _, r := range v.Source() {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// conditionText normalizes a condition to the body of a string literal:
// quotes and + continuations dropped, whitespace collapsed.
func conditionText(v javasrc.Value) string {
	var text string
	switch x := v.(type) {
	case nil:
		return ""
	case *javasrc.StringValue:
		text = x.Text
	default:
		text = strings.NewReplacer(`"`, "", "+", "").Replace(x.Source())
	}
	return strings.Join(strings.Fields(text), " ")
}
