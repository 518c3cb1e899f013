//go:build !cgo

package javasrc

import (
	"context"

	"swagfill/internal/errors"
)

// Parser turns Java source into Units.
// This stub is used when CGO is not available.
type Parser struct{}

// NewParser creates a new Java parser.
func NewParser() *Parser {
	return &Parser{}
}

// IsAvailable reports whether parsing is supported in this build.
func IsAvailable() bool {
	return false
}

// Parse always fails when CGO is not available.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*Unit, error) {
	return nil, errors.ForFile(errors.CgoRequired, path, nil)
}
