package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseFailed indicates a source file could not be parsed into a unit
	ParseFailed ErrorCode = "PARSE_FAILED"
	// ReadFailed indicates a source file could not be read
	ReadFailed ErrorCode = "READ_FAILED"
	// WriteFailed indicates a rewritten unit could not be written back
	WriteFailed ErrorCode = "WRITE_FAILED"
	// ResolveFailed indicates a data-shape name lookup backend failed
	ResolveFailed ErrorCode = "RESOLVE_FAILED"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ProfileInvalid indicates the annotation profile could not be used
	ProfileInvalid ErrorCode = "PROFILE_INVALID"
	// IndexMissing indicates the configured SCIP index was not found
	IndexMissing ErrorCode = "INDEX_MISSING"
	// BackupFailed indicates originals could not be archived or restored
	BackupFailed ErrorCode = "BACKUP_FAILED"
	// LedgerFailed indicates the run ledger could not be read or written
	LedgerFailed ErrorCode = "LEDGER_FAILED"
	// CgoRequired indicates the binary was built without tree-sitter support
	CgoRequired ErrorCode = "CGO_REQUIRED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// Error is a coded swagfill error with optional suggestions
type Error struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Path           string      `json:"path,omitempty"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a coded error. Suggested fixes registered for the code are attached.
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// ForFile creates a coded error bound to a source file.
func ForFile(code ErrorCode, path string, cause error) *Error {
	e := New(code, describe(code), cause)
	e.Path = path
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf returns the code of the first coded error in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.cause
	}
	return false
}

func describe(code ErrorCode) string {
	switch code {
	case ParseFailed:
		return "failed to parse source"
	case ReadFailed:
		return "failed to read source"
	case WriteFailed:
		return "failed to write rewritten source"
	case ResolveFailed:
		return "failed to resolve data shape"
	case BackupFailed:
		return "failed to archive original"
	default:
		return string(code)
	}
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "swagfill init --force",
			Safe:        false,
			Description: "Regenerate the default configuration",
		},
	},
	IndexMissing: {
		{
			Type:        RunCommand,
			Command:     "scip-java index",
			Safe:        true,
			Description: "Generate a SCIP index, or set resolver.backend to \"fs\"",
		},
	},
	CgoRequired: {
		{
			Type:        RunCommand,
			Command:     "CGO_ENABLED=1 go build ./cmd/swagfill",
			Safe:        true,
			Description: "Rebuild with CGO so the tree-sitter parser is available",
		},
	},
	ProfileInvalid: {
		{
			Type:        RunCommand,
			Command:     "swagfill init --profile",
			Safe:        true,
			Description: "Write the default annotation profile for reference",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
