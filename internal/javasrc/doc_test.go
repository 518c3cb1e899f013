package javasrc

import (
	"testing"
)

func TestParseDoc(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		desc   string
		params []ParamTag
	}{
		{
			name: "description only",
			body: "/**\n * Returns the current batch job.\n */",
			desc: "Returns the current batch job.",
		},
		{
			name: "params in order",
			body: "/**\n * Authenticate a user\n *   against plugins\n *\n * @param request  HttpServletRequest\n * @param userName pls\n *        username\n * @return the user\n */",
			desc: "Authenticate a user against plugins",
			params: []ParamTag{
				{Name: "request", Text: "HttpServletRequest"},
				{Name: "userName", Text: "pls username"},
			},
		},
		{
			name: "tag without text",
			body: "/** Does it.\n * @param admin\n */",
			desc: "Does it.",
			params: []ParamTag{
				{Name: "admin", Text: ""},
			},
		},
		{
			name: "other tags end sections",
			body: "/**\n * Lists jobs.\n * @throws IOException when broken\n * @param a first\n * @see Other\n */",
			desc: "Lists jobs.",
			params: []ParamTag{
				{Name: "a", Text: "first"},
			},
		},
		{
			name: "inline params on one line",
			body: "/** Finds a room. @param id the room id @param verbose  more output */",
			desc: "Finds a room.",
			params: []ParamTag{
				{Name: "id", Text: "the room id"},
				{Name: "verbose", Text: "more output"},
			},
		},
		{
			name: "inline param after description line",
			body: "/**\n * Moves a room. @param from source\n *   wing\n * @param to target\n */",
			desc: "Moves a room.",
			params: []ParamTag{
				{Name: "from", Text: "source wing"},
				{Name: "to", Text: "target"},
			},
		},
		{
			name: "param inside a word is text",
			body: "/** Reads foo@param values. */",
			desc: "Reads foo@param values.",
		},
		{
			name: "raw body without delimiters",
			body: " * Plain body\n * @param x the x",
			desc: "Plain body",
			params: []ParamTag{
				{Name: "x", Text: "the x"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ParseDoc(tt.body)
			if doc.Description != tt.desc {
				t.Errorf("Description = %q, want %q", doc.Description, tt.desc)
			}
			if len(doc.Params) != len(tt.params) {
				t.Fatalf("got %d params, want %d: %+v", len(doc.Params), len(tt.params), doc.Params)
			}
			for i, p := range tt.params {
				if doc.Params[i] != p {
					t.Errorf("Params[%d] = %+v, want %+v", i, doc.Params[i], p)
				}
			}
		})
	}
}

func TestMethodDoc_TodoIsAbsent(t *testing.T) {
	tests := []struct {
		comment string
		present bool
	}{
		{"", false},
		{"/** TODO: document this */", false},
		{"/**\n * todo later\n */", false},
		{"/** Fetches things. */", true},
		{"/* plain block */", true},
	}
	for _, tt := range tests {
		m := &Method{Comment: tt.comment}
		_, ok := m.Doc()
		if ok != tt.present {
			t.Errorf("Doc() for %q present = %v, want %v", tt.comment, ok, tt.present)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\tmp`, `"C:\\tmp"`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
