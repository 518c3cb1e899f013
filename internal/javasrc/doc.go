package javasrc

import (
	"strings"
)

// Doc is a structured comment: a description and ordered @param tags.
type Doc struct {
	Description string
	Params      []ParamTag
}

// ParamTag is one @param entry.
type ParamTag struct {
	Name string
	Text string
}

// Param returns the tag documenting the named parameter.
func (d Doc) Param(name string) (ParamTag, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamTag{}, false
}

// ParseDoc splits a comment body into its description and @param tags.
// The text before the first block tag is the description; each @param
// starts a new tag that runs until the next block tag. Other block tags
// (@return, @throws, ...) end the running section and are dropped. Text is
// normalized: continuation stars removed, whitespace collapsed, trimmed.
func ParseDoc(body string) Doc {
	if strings.HasPrefix(strings.TrimSpace(body), "/*") {
		body = commentBody(body)
	}

	var (
		doc     Doc
		desc    []string
		current *ParamTag
		inOther bool
	)
	flush := func() {
		if current != nil {
			current.Text = normalize(current.Text)
			doc.Params = append(doc.Params, *current)
			current = nil
		}
	}

	var lines []string
	for _, line := range strings.Split(body, "\n") {
		lines = append(lines, splitInlineParams(stripContinuation(line))...)
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "@") {
			flush()
			tag, rest := splitWord(line[1:])
			if tag == "param" {
				name, text := splitWord(rest)
				current = &ParamTag{Name: name, Text: text}
				inOther = false
			} else {
				inOther = true
			}
			continue
		}
		switch {
		case current != nil:
			current.Text += " " + line
		case inOther:
		default:
			desc = append(desc, line)
		}
	}
	flush()

	doc.Description = normalize(strings.Join(desc, " "))
	return doc
}

// splitInlineParams breaks a line before every @param that follows
// whitespace, so "Finds a room. @param id the id" yields two lines.
func splitInlineParams(line string) []string {
	const marker = "@param"
	var out []string
	for {
		i := inlineMarker(line, marker)
		if i < 0 {
			return append(out, line)
		}
		out = append(out, strings.TrimSpace(line[:i]))
		line = line[i:]
	}
}

// inlineMarker returns the index of the first marker in line that is
// preceded by whitespace and ends a word, or -1.
func inlineMarker(line, marker string) int {
	for from := 1; from < len(line); {
		i := strings.Index(line[from:], marker)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(marker)
		if isBlank(line[i-1]) && (end == len(line) || isBlank(line[end])) {
			return i
		}
		from = end
	}
	return -1
}

// commentBody strips the comment delimiters from a block comment.
func commentBody(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "/**"):
		s = s[3:]
	case strings.HasPrefix(s, "/*"):
		s = s[2:]
	}
	s = strings.TrimSuffix(s, "*/")
	return s
}

// isTodo reports whether a comment body is a TODO placeholder.
func isTodo(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		if l := stripContinuation(line); l != "" {
			return strings.HasPrefix(strings.ToUpper(l), "TODO")
		}
	}
	return false
}

func stripContinuation(line string) string {
	line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
	line = strings.TrimLeft(line, "*")
	return strings.TrimSpace(line)
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Quote returns s as a Java string literal, escaping backslashes, quotes
// and line breaks.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "\r", "")
	return `"` + r.Replace(s) + `"`
}
