package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"swagfill/internal/errors"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"
)

// SCIP resolves names through a SCIP index (for example one produced by
// scip-java). A type's file is the document that defines its symbol.
type SCIP struct {
	root  string
	files map[string]string // type name -> repo-relative path
}

// LoadSCIP reads the index at indexPath. Document paths are taken relative
// to root.
func LoadSCIP(indexPath, root string) (*SCIP, error) {
	data, err := os.ReadFile(indexPath)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.IndexMissing,
			fmt.Sprintf("SCIP index not found at %s", indexPath), err)
	}
	if err != nil {
		return nil, errors.New(errors.ResolveFailed,
			fmt.Sprintf("Failed to read SCIP index from %s", indexPath), err)
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, errors.New(errors.ResolveFailed,
			fmt.Sprintf("Failed to parse SCIP index from %s", indexPath), err)
	}
	return newSCIP(&index, root), nil
}

func newSCIP(index *scippb.Index, root string) *SCIP {
	s := &SCIP{root: root, files: make(map[string]string)}
	for _, doc := range index.Documents {
		for _, sym := range doc.Symbols {
			name := typeName(sym.Symbol)
			if name == "" {
				continue
			}
			if _, seen := s.files[name]; !seen {
				s.files[name] = doc.RelativePath
			}
		}
	}
	return s
}

// Len returns the number of type names in the index.
func (s *SCIP) Len() int {
	return len(s.files)
}

// Resolve implements Resolver.
func (s *SCIP) Resolve(_ context.Context, name string) (string, bool, error) {
	rel, ok := s.files[name]
	if !ok {
		return "", false, nil
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), true, nil
}

// typeName returns the simple name of a type symbol such as
// "semanticdb maven . . com/example/RoomDTO#", or "" for local and
// non-type symbols.
func typeName(symbol string) string {
	if strings.HasPrefix(symbol, "local ") || !strings.HasSuffix(symbol, "#") {
		return ""
	}
	s := strings.TrimSuffix(symbol, "#")
	if i := strings.LastIndexAny(s, "/#. "); i >= 0 {
		s = s[i+1:]
	}
	return strings.Trim(s, "`")
}
