// Package dtograph walks the graph of data-transfer types reachable from
// service units and documents the accessors of each one exactly once.
package dtograph

import (
	"context"
	"log/slog"
	"sort"

	"swagfill/internal/javasrc"
	"swagfill/internal/resolve"
	"swagfill/internal/synth"
)

// Visited is the set of type names already scheduled or processed. It only
// grows.
type Visited struct {
	names map[string]bool
}

// NewVisited returns an empty set.
func NewVisited() *Visited {
	return &Visited{names: make(map[string]bool)}
}

// Add marks name visited and reports whether it was new.
func (v *Visited) Add(name string) bool {
	if v.names[name] {
		return false
	}
	v.names[name] = true
	return true
}

// Has reports whether name was visited.
func (v *Visited) Has(name string) bool {
	return v.names[name]
}

// Len returns the number of visited names.
func (v *Visited) Len() int {
	return len(v.names)
}

// Names returns the visited names, sorted.
func (v *Visited) Names() []string {
	out := make([]string, 0, len(v.names))
	for n := range v.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Store loads units by path and persists them after synthesis.
type Store interface {
	Load(ctx context.Context, path string) (*javasrc.Unit, error)
	// Save writes u back when it changed and reports whether it did.
	Save(ctx context.Context, u *javasrc.Unit) (bool, error)
}

// UnitResult records what happened to one visited data-transfer unit.
type UnitResult struct {
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path" yaml:"path"`
	Accessors int    `json:"accessors" yaml:"accessors"`
	Written   bool   `json:"written" yaml:"written"`
}

// Failure is a unit that could not be loaded or saved.
type Failure struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	Err  error  `json:"-" yaml:"-"`
}

// Result summarizes one traversal.
type Result struct {
	Units      []UnitResult
	Unresolved []string
	Failures   []Failure
}

// Updated returns the number of units whose accessors changed.
func (r Result) Updated() int {
	n := 0
	for _, u := range r.Units {
		if u.Accessors > 0 {
			n++
		}
	}
	return n
}

func (r *Result) merge(o Result) {
	r.Units = append(r.Units, o.Units...)
	r.Unresolved = append(r.Unresolved, o.Unresolved...)
	r.Failures = append(r.Failures, o.Failures...)
}

// Traverser processes data-transfer units breadth first. A name is marked
// visited when it is queued, before it is resolved, so each name is
// resolved at most once and cycles terminate.
type Traverser struct {
	synth    *synth.Synthesizer
	resolver resolve.Resolver
	store    Store
	matcher  *Matcher
	visited  *Visited
	logger   *slog.Logger
}

// New creates a Traverser with an empty visited set.
func New(s *synth.Synthesizer, r resolve.Resolver, store Store, m *Matcher, logger *slog.Logger) *Traverser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Traverser{
		synth:    s,
		resolver: r,
		store:    store,
		matcher:  m,
		visited:  NewVisited(),
		logger:   logger,
	}
}

// Visited returns the traverser's visited set.
func (t *Traverser) Visited() *Visited {
	return t.visited
}

// Reset starts a fresh visited set.
func (t *Traverser) Reset() {
	t.visited = NewVisited()
}

// FromService marks the service unit's own name visited and traverses
// everything it refers to.
func (t *Traverser) FromService(ctx context.Context, u *javasrc.Unit) Result {
	t.visited.Add(u.Name())
	return t.Traverse(ctx, t.matcher.Seeds(u))
}

// Traverse processes the units reachable from the seed names.
func (t *Traverser) Traverse(ctx context.Context, seeds []string) Result {
	var res Result
	var queue []string
	enqueue := func(names []string) {
		for _, n := range names {
			if t.visited.Add(n) {
				queue = append(queue, n)
			}
		}
	}
	enqueue(seeds)

	for len(queue) > 0 {
		if ctx.Err() != nil {
			break
		}
		name := queue[0]
		queue = queue[1:]

		path, ok, err := t.resolver.Resolve(ctx, name)
		if err != nil {
			t.logger.Warn("Lookup failed", "name", name, "error", err.Error())
			res.Unresolved = append(res.Unresolved, name)
			continue
		}
		if !ok {
			t.logger.Debug("Unresolved data type", "name", name)
			res.Unresolved = append(res.Unresolved, name)
			continue
		}

		u, err := t.store.Load(ctx, path)
		if err != nil {
			t.logger.Error("Failed to load data type", "name", name, "path", path, "error", err.Error())
			res.Failures = append(res.Failures, Failure{Name: name, Path: path, Err: err})
			continue
		}
		ur, next, err := t.process(ctx, u)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Name: name, Path: path, Err: err})
		}
		res.Units = append(res.Units, ur)
		enqueue(next)
	}
	return res
}

// Unit processes one data-transfer unit directly and then everything it
// refers to.
func (t *Traverser) Unit(ctx context.Context, u *javasrc.Unit) Result {
	var res Result
	ur, next, err := t.process(ctx, u)
	if err != nil {
		res.Failures = append(res.Failures, Failure{Name: ur.Name, Path: u.Path, Err: err})
	}
	res.Units = append(res.Units, ur)
	res.merge(t.Traverse(ctx, next))
	return res
}

// process documents u's accessors, writes it back and returns the names it
// refers to. References are collected from method signatures and instance
// fields.
func (t *Traverser) process(ctx context.Context, u *javasrc.Unit) (UnitResult, []string, error) {
	name := u.Name()
	t.visited.Add(name)

	ur := UnitResult{Name: name, Path: u.Path}
	ur.Accessors = t.synth.DataHolder(u)

	next := t.matcher.Signatures(u)
	next = append(next, t.matcher.Fields(u)...)

	written, err := t.store.Save(ctx, u)
	if err != nil {
		t.logger.Error("Failed to write data type", "name", name, "path", u.Path, "error", err.Error())
		return ur, next, err
	}
	ur.Written = written
	if ur.Accessors > 0 {
		t.logger.Info("Data type documented", "name", name, "accessors", ur.Accessors)
	}
	return ur, next, nil
}
