// Package dialect describes the annotation vocabulary the engine writes
// (swagger v3) and the legacy vocabulary it migrates away from (enunciate).
package dialect

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	btoml "github.com/BurntSushi/toml"
	ptoml "github.com/pelletier/go-toml/v2"

	"swagfill/internal/errors"
)

// ProfileVersion is the profile schema version.
const ProfileVersion = 1

// Profile names every annotation the engine recognises or writes.
type Profile struct {
	Version      int          `toml:"version"`
	Target       Target       `toml:"target"`
	Legacy       Legacy       `toml:"legacy"`
	Placeholders Placeholders `toml:"placeholders"`
}

// Annotation is an annotation simple name and the type it imports.
type Annotation struct {
	Name   string `toml:"name"`
	Import string `toml:"import"`
}

// Target is the documentation dialect the engine brings code up to.
type Target struct {
	Operation Annotation `toml:"operation"`
	Parameter Annotation `toml:"parameter"`
	Response  Annotation `toml:"response"`
	Schema    Annotation `toml:"schema"`

	// ResponseContainer wraps repeated responses; its presence counts as a
	// response descriptor.
	ResponseContainer string `toml:"response_container"`
}

// Legacy is the status-code dialect migrated into target responses.
type Legacy struct {
	Package      string   `toml:"package"`
	Containers   []string `toml:"containers"`
	Entry        string   `toml:"entry"`
	CodeKey      string   `toml:"code_key"`
	ConditionKey string   `toml:"condition_key"`
}

// Placeholders are the fixed texts of manual-completion markers.
type Placeholders struct {
	Operation    string `toml:"operation"`
	Parameter    string `toml:"parameter"`
	ParameterTag string `toml:"parameter_tag"`
	Response     string `toml:"response"`
}

// Default returns the swagger v3 / enunciate profile.
func Default() *Profile {
	return &Profile{
		Version: ProfileVersion,
		Target: Target{
			Operation:         Annotation{Name: "Operation", Import: "io.swagger.v3.oas.annotations.Operation"},
			Parameter:         Annotation{Name: "Parameter", Import: "io.swagger.v3.oas.annotations.Parameter"},
			Response:          Annotation{Name: "ApiResponse", Import: "io.swagger.v3.oas.annotations.responses.ApiResponse"},
			Schema:            Annotation{Name: "Schema", Import: "io.swagger.v3.oas.annotations.media.Schema"},
			ResponseContainer: "ApiResponses",
		},
		Legacy: Legacy{
			Package:      "com.webcohesion.enunciate.metadata.rs",
			Containers:   []string{"StatusCodes", "Warnings"},
			Entry:        "ResponseCode",
			CodeKey:      "code",
			ConditionKey: "condition",
		},
		Placeholders: Placeholders{
			Operation:    "TODO: Add Description here.",
			Parameter:    "TODO: Add description and @Schema annotation here.",
			ParameterTag: "TODO: Add parameter description",
			Response:     "TODO: Add status codes and descriptions here.",
		},
	}
}

// LegacyNames returns the simple names of every legacy annotation type.
func (p *Profile) LegacyNames() []string {
	names := append([]string(nil), p.Legacy.Containers...)
	return append(names, p.Legacy.Entry)
}

// LegacyImport returns the qualified name of a legacy annotation type.
func (p *Profile) LegacyImport(name string) string {
	return p.Legacy.Package + "." + name
}

// IsLegacyContainer reports whether name is a legacy status-code container.
func (p *Profile) IsLegacyContainer(name string) bool {
	for _, c := range p.Legacy.Containers {
		if c == name {
			return true
		}
	}
	return false
}

// Validate checks that every name and placeholder is set.
func (p *Profile) Validate() error {
	var missing []string
	check := func(field, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	for field, a := range map[string]Annotation{
		"target.operation": p.Target.Operation,
		"target.parameter": p.Target.Parameter,
		"target.response":  p.Target.Response,
		"target.schema":    p.Target.Schema,
	} {
		check(field+".name", a.Name)
		check(field+".import", a.Import)
	}
	check("legacy.package", p.Legacy.Package)
	check("legacy.entry", p.Legacy.Entry)
	check("legacy.code_key", p.Legacy.CodeKey)
	check("legacy.condition_key", p.Legacy.ConditionKey)
	if len(p.Legacy.Containers) == 0 {
		missing = append(missing, "legacy.containers")
	}
	check("placeholders.operation", p.Placeholders.Operation)
	check("placeholders.parameter", p.Placeholders.Parameter)
	check("placeholders.parameter_tag", p.Placeholders.ParameterTag)
	check("placeholders.response", p.Placeholders.Response)

	if len(missing) > 0 {
		return errors.New(errors.ProfileInvalid, "profile has empty fields", nil).WithDetails(missing)
	}
	return nil
}

// LoadProfile reads a profile from a TOML file. Keys absent from the file
// keep their default values; unknown keys are logged and ignored.
func LoadProfile(path string, logger *slog.Logger) (*Profile, error) {
	p := Default()
	md, err := btoml.DecodeFile(path, p)
	if err != nil {
		return nil, errors.New(errors.ProfileInvalid, fmt.Sprintf("failed to parse profile %s", path), err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 && logger != nil {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("Ignoring unknown profile keys", "path", path, "keys", strings.Join(keys, ","))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteProfile writes p to path as TOML.
func WriteProfile(path string, p *Profile) error {
	data, err := ptoml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
