//go:build cgo

package dtograph

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"swagfill/internal/dialect"
	"swagfill/internal/javasrc"
	"swagfill/internal/slogutil"
	"swagfill/internal/synth"
)

// memStore keeps sources in memory and counts loads per path.
type memStore struct {
	parser *javasrc.Parser
	files  map[string]string
	loads  map[string]int
	failOn string
}

func newMemStore(files map[string]string) *memStore {
	return &memStore{
		parser: javasrc.NewParser(),
		files:  files,
		loads:  make(map[string]int),
	}
}

func (s *memStore) Load(ctx context.Context, path string) (*javasrc.Unit, error) {
	s.loads[path]++
	src, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file %s", path)
	}
	return s.parser.Parse(ctx, path, []byte(src))
}

func (s *memStore) Save(_ context.Context, u *javasrc.Unit) (bool, error) {
	if u.Path == s.failOn {
		return false, fmt.Errorf("disk full")
	}
	out := string(u.Print())
	if out == s.files[u.Path] {
		return false, nil
	}
	s.files[u.Path] = out
	return true, nil
}

// mapResolver resolves names to "<Name>.java" when the store has the file.
type mapResolver struct {
	store *memStore
	calls map[string]int
}

func (r *mapResolver) Resolve(_ context.Context, name string) (string, bool, error) {
	r.calls[name]++
	path := name + ".java"
	_, ok := r.store.files[path]
	return path, ok, nil
}

func newTraverser(store *memStore) (*Traverser, *mapResolver) {
	s := synth.New(dialect.Default(), synth.Options{
		Routing:        []string{"GET"},
		DtoSuffix:      "DTO",
		AccessorPrefix: "get",
	}, slogutil.NewDiscardLogger())
	r := &mapResolver{store: store, calls: make(map[string]int)}
	return New(s, r, store, NewMatcher("DTO"), slogutil.NewDiscardLogger()), r
}

func dto(name, body string) string {
	return "package com.example;\n\npublic class " + name + " {\n" + body + "}\n"
}

func TestTraverse_Cycle(t *testing.T) {
	store := newMemStore(map[string]string{
		"ADTO.java": dto("ADTO", "    public BDTO getB() {\n        return null;\n    }\n"),
		"BDTO.java": dto("BDTO", "    public ADTO getA() {\n        return null;\n    }\n"),
	})
	tr, r := newTraverser(store)

	res := tr.Traverse(context.Background(), []string{"ADTO"})

	if len(res.Units) != 2 {
		t.Fatalf("units = %+v, want 2", res.Units)
	}
	for _, path := range []string{"ADTO.java", "BDTO.java"} {
		if store.loads[path] != 1 {
			t.Errorf("%s loaded %d times, want 1", path, store.loads[path])
		}
	}
	for name, n := range r.calls {
		if n != 1 {
			t.Errorf("%s resolved %d times, want 1", name, n)
		}
	}
	if !strings.Contains(store.files["ADTO.java"], `@Schema(description = "The B", type = "BDTO", implementation = BDTO.class)`) {
		t.Errorf("ADTO not documented:\n%s", store.files["ADTO.java"])
	}
	if res.Updated() != 2 {
		t.Errorf("Updated = %d, want 2", res.Updated())
	}
}

func TestTraverse_SelfReference(t *testing.T) {
	store := newMemStore(map[string]string{
		"NodeDTO.java": dto("NodeDTO", "    private NodeDTO parent;\n\n    public NodeDTO getParent() {\n        return parent;\n    }\n"),
	})
	tr, _ := newTraverser(store)

	res := tr.Traverse(context.Background(), []string{"NodeDTO", "NodeDTO"})
	if len(res.Units) != 1 || store.loads["NodeDTO.java"] != 1 {
		t.Errorf("units = %+v, loads = %v", res.Units, store.loads)
	}
}

func TestTraverse_FieldsAndParams(t *testing.T) {
	store := newMemStore(map[string]string{
		"RoomDTO.java": dto("RoomDTO",
			"    private FloorDTO floor;\n"+
				"    private static HallDTO HALL;\n\n"+
				"    public void copy(WingDTO other) {\n    }\n"),
		"FloorDTO.java": dto("FloorDTO", ""),
		"WingDTO.java":  dto("WingDTO", ""),
		"HallDTO.java":  dto("HallDTO", ""),
	})
	tr, _ := newTraverser(store)

	res := tr.Traverse(context.Background(), []string{"RoomDTO"})

	var names []string
	for _, u := range res.Units {
		names = append(names, u.Name)
	}
	// signatures are scanned before fields; static fields are ignored
	want := []string{"RoomDTO", "WingDTO", "FloorDTO"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("visited order = %v, want %v", names, want)
	}
	if store.loads["HallDTO.java"] != 0 {
		t.Error("static field types should not be followed")
	}
	if res.Updated() != 0 {
		t.Errorf("Updated = %d, want 0", res.Updated())
	}
}

func TestTraverse_UnresolvedAndFailures(t *testing.T) {
	store := newMemStore(map[string]string{
		"RoomDTO.java":  dto("RoomDTO", "    public GhostDTO getGhost() {\n        return null;\n    }\n\n    public FloorDTO getFloor() {\n        return null;\n    }\n"),
		"FloorDTO.java": dto("FloorDTO", "    public String getName() {\n        return null;\n    }\n"),
	})
	store.failOn = "FloorDTO.java"
	tr, r := newTraverser(store)

	res := tr.Traverse(context.Background(), []string{"RoomDTO"})

	if !reflect.DeepEqual(res.Unresolved, []string{"GhostDTO"}) {
		t.Errorf("Unresolved = %v", res.Unresolved)
	}
	if len(res.Failures) != 1 || res.Failures[0].Path != "FloorDTO.java" {
		t.Errorf("Failures = %+v", res.Failures)
	}
	if !tr.Visited().Has("GhostDTO") {
		t.Error("unresolved names stay visited")
	}

	// a second traversal over the same set does no lookups
	tr.Traverse(context.Background(), []string{"GhostDTO", "RoomDTO"})
	if r.calls["GhostDTO"] != 1 || r.calls["RoomDTO"] != 1 {
		t.Errorf("calls = %v", r.calls)
	}

	tr.Reset()
	if tr.Visited().Len() != 0 {
		t.Error("Reset should clear the set")
	}
}

func TestFromService(t *testing.T) {
	service := `package com.example;

import com.example.dto.ImportedDTO;
import com.example.dto.*;

@Path("/rooms")
public class RoomResource {
    private final ServiceDTO state = null;

    @GET
    public RoomDTO get(QueryDTO q) {
        BodyDTO b = new BodyDTO();
        return null;
    }
}
`
	u, err := javasrc.NewParser().Parse(context.Background(), "RoomResource.java", []byte(service))
	if err != nil {
		t.Fatal(err)
	}
	m := NewMatcher("DTO")
	want := []string{"BodyDTO", "RoomDTO", "QueryDTO", "ImportedDTO", "ServiceDTO"}
	if got := m.Seeds(u); !reflect.DeepEqual(got, want) {
		t.Errorf("Seeds = %v, want %v", got, want)
	}

	store := newMemStore(map[string]string{
		"RoomDTO.java": dto("RoomDTO", "    public int getSize() {\n        return 0;\n    }\n"),
	})
	tr, _ := newTraverser(store)
	res := tr.FromService(context.Background(), u)
	if !tr.Visited().Has("RoomResource") {
		t.Error("service name should be visited")
	}
	if len(res.Units) != 1 || len(res.Unresolved) != 4 {
		t.Errorf("units = %+v, unresolved = %v", res.Units, res.Unresolved)
	}
	if !strings.Contains(store.files["RoomDTO.java"], `@Schema(description = "The Size", type = "int")`) {
		t.Errorf("RoomDTO not documented:\n%s", store.files["RoomDTO.java"])
	}
}

func TestUnit(t *testing.T) {
	room := dto("RoomDTO", "    public FloorDTO getFloor() {\n        return null;\n    }\n")
	store := newMemStore(map[string]string{
		"RoomDTO.java":  room,
		"FloorDTO.java": dto("FloorDTO", "    public RoomDTO getRoom() {\n        return null;\n    }\n"),
	})
	tr, r := newTraverser(store)

	u, err := javasrc.NewParser().Parse(context.Background(), "RoomDTO.java", []byte(room))
	if err != nil {
		t.Fatal(err)
	}
	res := tr.Unit(context.Background(), u)

	var names []string
	for _, ur := range res.Units {
		names = append(names, ur.Name)
	}
	if want := []string{"RoomDTO", "FloorDTO"}; !reflect.DeepEqual(names, want) {
		t.Errorf("units = %v, want %v", names, want)
	}
	for _, name := range []string{"RoomDTO", "FloorDTO"} {
		if !tr.Visited().Has(name) {
			t.Errorf("%s should be visited", name)
		}
	}
	if store.loads["RoomDTO.java"] != 0 || r.calls["RoomDTO"] != 0 {
		t.Errorf("the given unit should not be looked up again: loads = %v, calls = %v", store.loads, r.calls)
	}
	if res.Updated() != 2 {
		t.Errorf("Updated = %d, want 2", res.Updated())
	}
	if !strings.Contains(store.files["RoomDTO.java"], `implementation = FloorDTO.class`) {
		t.Errorf("RoomDTO not documented:\n%s", store.files["RoomDTO.java"])
	}
}
