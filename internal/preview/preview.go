// Package preview renders the changes a run would make as unified diffs.
package preview

import (
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 3

const noNewline = "\\ No newline at end of file\n"

// FileDiff returns the unified diff of one file, or nil when before and
// after are equal. name is shown with the usual a/ and b/ prefixes.
func FileDiff(name string, before, after []byte, context int) *godiff.FileDiff {
	if string(before) == string(after) {
		return nil
	}
	a := splitLines(string(before))
	b := splitLines(string(after))
	return &godiff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
		Hunks:    hunks(a, b, diffLines(a, b), context),
	}
}

// Render prints file diffs in unified format.
func Render(fds []*godiff.FileDiff) ([]byte, error) {
	return godiff.PrintMultiFileDiff(fds)
}

// Parse reads unified diffs back, e.g. to inspect a rendered preview.
func Parse(data []byte) ([]*godiff.FileDiff, error) {
	return godiff.ParseMultiFileDiff(data)
}

// Stat counts added and removed lines of a file diff.
func Stat(fd *godiff.FileDiff) (added, removed int) {
	for _, h := range fd.Hunks {
		for _, line := range strings.Split(string(h.Body), "\n") {
			if line == "" {
				continue
			}
			switch line[0] {
			case '+':
				added++
			case '-':
				removed++
			}
		}
	}
	return added, removed
}

// splitLines splits s after each newline; a final line without one is kept.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.SplitAfter(strings.TrimSuffix(s, "\n"), "\n")
}

type opKind byte

const (
	opEqual  opKind = ' '
	opDelete opKind = '-'
	opInsert opKind = '+'
)

type op struct {
	kind opKind
	a, b int // line indexes into the old and new text
}

// diffLines computes a shortest edit script with Myers' algorithm.
func diffLines(a, b []string) []op {
	n, m := len(a), len(b)
	limit := n + m
	off := limit + 1
	v := make([]int, 2*limit+3)
	var trace [][]int

	for d := 0; d <= limit; d++ {
		trace = append(trace, append([]int(nil), v...))
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[off+k-1] < v[off+k+1]) {
				x = v[off+k+1]
			} else {
				x = v[off+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[off+k] = x
			if x >= n && y >= m {
				return backtrack(trace, n, m, off)
			}
		}
	}
	return nil
}

func backtrack(trace [][]int, n, m, off int) []op {
	var ops []op
	x, y := n, m
	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y
		var prevK int
		if k == -d || (k != d && v[off+k-1] < v[off+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[off+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, op{kind: opEqual, a: x, b: y})
		}
		if d > 0 {
			if x == prevX {
				y--
				ops = append(ops, op{kind: opInsert, a: x, b: y})
			} else {
				x--
				ops = append(ops, op{kind: opDelete, a: x, b: y})
			}
		}
	}
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}

// hunks groups an edit script into hunks with context lines around each
// change.
func hunks(a, b []string, ops []op, context int) []*godiff.Hunk {
	var out []*godiff.Hunk
	i := 0
	for i < len(ops) {
		if ops[i].kind == opEqual {
			i++
			continue
		}
		start := i - context
		if start < 0 {
			start = 0
		}
		// extend while the next change is within 2*context equal lines
		end := i
		for end < len(ops) {
			if ops[end].kind != opEqual {
				end++
				continue
			}
			run := end
			for run < len(ops) && ops[run].kind == opEqual {
				run++
			}
			if run == len(ops) || run-end > 2*context {
				end += min(context, run-end)
				break
			}
			end = run
		}
		out = append(out, hunk(a, b, ops[start:end]))
		i = end
	}
	return out
}

func hunk(a, b []string, ops []op) *godiff.Hunk {
	h := &godiff.Hunk{
		OrigStartLine: int32(ops[0].a + 1),
		NewStartLine:  int32(ops[0].b + 1),
	}
	var body strings.Builder
	for _, o := range ops {
		var line string
		switch o.kind {
		case opEqual:
			line = a[o.a]
			h.OrigLines++
			h.NewLines++
		case opDelete:
			line = a[o.a]
			h.OrigLines++
		case opInsert:
			line = b[o.b]
			h.NewLines++
		}
		body.WriteByte(byte(o.kind))
		body.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			body.WriteString("\n" + noNewline)
		}
	}
	if h.OrigLines == 0 {
		h.OrigStartLine--
	}
	if h.NewLines == 0 {
		h.NewStartLine--
	}
	h.Body = []byte(body.String())
	return h
}
