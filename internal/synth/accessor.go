package synth

import (
	"strings"

	"swagfill/internal/javasrc"
)

// Schema sub-field keys.
const (
	keyDescription    = "description"
	keyType           = "type"
	keyImplementation = "implementation"
)

// DataHolder runs the accessor rules over every getter in the unit and
// returns how many accessors changed.
func (s *Synthesizer) DataHolder(u *javasrc.Unit) int {
	changed := 0
	for _, m := range u.Accessors(s.opts.AccessorPrefix) {
		if s.Accessor(u, m) {
			changed++
		}
	}
	return changed
}

// Accessor makes sure a getter carries a schema descriptor with every
// required sub-field. Existing sub-fields are never rewritten.
func (s *Synthesizer) Accessor(u *javasrc.Unit, m *javasrc.Method) bool {
	target := s.profile.Target.Schema
	values := map[string]string{
		keyDescription:    javasrc.Quote(AccessorDescription(m.Name, s.opts.AccessorPrefix)),
		keyType:           javasrc.Quote(m.ReturnType),
		keyImplementation: m.ReturnType + ".class",
	}
	required := s.requiredSchemaKeys(m.ReturnType)

	existing := m.Annotation(target.Name)
	if existing == nil {
		pairs := make([]string, len(required))
		for i, k := range required {
			pairs[i] = pair(k, values[k])
		}
		u.AddMethodAnnotation(m, annotation(target.Name, pairs...))
		u.EnsureImport(target.Import)
		return true
	}

	if existing.Kind == javasrc.Single {
		// @Schema(x) has no sub-fields to complete
		s.logger.Debug("Skipping single-value schema", "unit", u.Name(), "method", m.Name)
		return false
	}
	var missing []string
	for _, k := range required {
		if existing.Pair(k) == nil {
			missing = append(missing, pair(k, values[k]))
		}
	}
	if len(missing) == 0 {
		return false
	}
	u.AppendPairs(existing, missing)
	return true
}

// requiredSchemaKeys returns the sub-fields a getter's schema must carry:
// data-transfer return types also need an implementation class.
func (s *Synthesizer) requiredSchemaKeys(returnType string) []string {
	if s.opts.DtoSuffix != "" && strings.HasSuffix(strings.ToUpper(returnType), strings.ToUpper(s.opts.DtoSuffix)) {
		return []string{keyDescription, keyType, keyImplementation}
	}
	return []string{keyDescription, keyType}
}

// AccessorDescription derives a schema description from a getter name:
// getRoomTemperature becomes "The Room Temperature".
func AccessorDescription(name, prefix string) string {
	words := SplitWords(name)
	if len(words) > 1 {
		words = words[1:]
	} else if prefix != "" && strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
		words = []string{name[len(prefix):]}
	}
	return "The " + strings.Join(words, " ")
}

// SplitWords splits an identifier at capitalization boundaries: before an
// upper-case letter following a non-upper-case character, before the last
// letter of an upper-case run that is followed by a lower-case letter, and
// between a letter and a following non-letter.
func SplitWords(s string) []string {
	r := []rune(s)
	if len(r) == 0 {
		return nil
	}
	var words []string
	start := 0
	for i := 1; i < len(r); i++ {
		prev, cur := r[i-1], r[i]
		boundary := (isUpper(prev) && isUpper(cur) && i+1 < len(r) && isLower(r[i+1])) ||
			(!isUpper(prev) && isUpper(cur)) ||
			(isLetter(prev) && !isLetter(cur))
		if boundary {
			words = append(words, string(r[start:i]))
			start = i
		}
	}
	return append(words, string(r[start:]))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }
