package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(IndexMissing, "SCIP index not found", cause)

	if err.Code != IndexMissing {
		t.Errorf("Code = %v, want %v", err.Code, IndexMissing)
	}
	if err.Message != "SCIP index not found" {
		t.Errorf("Message = %q, want %q", err.Message, "SCIP index not found")
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       *Error
		wantParts []string
	}{
		{
			name:      "with cause",
			err:       New(WriteFailed, "disk full", errors.New("ENOSPC")),
			wantParts: []string{"WRITE_FAILED", "disk full", "ENOSPC"},
		},
		{
			name:      "without cause",
			err:       New(ConfigInvalid, "bad version", nil),
			wantParts: []string{"CONFIG_INVALID", "bad version"},
		},
		{
			name:      "bound to file",
			err:       ForFile(ParseFailed, "src/FooResource.java", errors.New("syntax")),
			wantParts: []string{"PARSE_FAILED", "src/FooResource.java", "failed to parse source", "syntax"},
		},
		{
			name:      "read failure",
			err:       ForFile(ReadFailed, "src/BarResource.java", errors.New("no such file")),
			wantParts: []string{"READ_FAILED", "src/BarResource.java", "failed to read source"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("processing: %w", ForFile(WriteFailed, "A.java", nil))
	if got := CodeOf(wrapped); got != WriteFailed {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, WriteFailed)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
}

func TestIs(t *testing.T) {
	inner := New(IndexMissing, "no index", nil)
	outer := New(ResolveFailed, "resolver init", inner)

	if !Is(outer, ResolveFailed) {
		t.Error("Is(outer, ResolveFailed) = false")
	}
	if !Is(outer, IndexMissing) {
		t.Error("Is(outer, IndexMissing) = false, want true through the cause chain")
	}
	if Is(outer, WriteFailed) {
		t.Error("Is(outer, WriteFailed) = true")
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	if fixes := GetSuggestedFixes(CgoRequired); len(fixes) == 0 {
		t.Error("CgoRequired should have suggested fixes")
	}
	if fixes := GetSuggestedFixes(InternalError); fixes != nil {
		t.Errorf("InternalError fixes = %v, want nil", fixes)
	}
}
