package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	godiff "github.com/sourcegraph/go-diff/diff"
	"gopkg.in/yaml.v3"

	"swagfill/internal/pipeline"
	"swagfill/internal/preview"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *pipeline.Report:
		return formatReportHuman(v), nil
	case *HistoryResponseCLI:
		return formatHistoryHuman(v), nil
	case *RestoreResponseCLI:
		return formatRestoreHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatReportHuman(r *pipeline.Report) string {
	var b strings.Builder

	verb := "Annotated"
	written := "written"
	if r.DryRun {
		verb = "Would annotate"
		written = "to change"
	}

	fmt.Fprintf(&b, "Run %s\n", shortID(r.RunID))
	fmt.Fprintf(&b, "%s %d operation(s) in %d service(s)\n", verb, r.OperationsUpdated, len(r.Services))
	fmt.Fprintf(&b, "%s %d DTO(s) of %d reached\n", verb, r.DTOsUpdated, len(r.DataTypes))
	fmt.Fprintf(&b, "Files %s: %d", written, r.FilesWritten)
	if r.FilesFailed > 0 {
		fmt.Fprintf(&b, ", failed: %d", r.FilesFailed)
	}
	b.WriteString("\n")

	for _, s := range r.Services {
		if s.Updated == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s  %d operation(s)\n", s.Path, s.Updated)
	}

	if len(r.Unresolved) > 0 {
		fmt.Fprintf(&b, "\nUnresolved types (%d):\n", len(r.Unresolved))
		for _, name := range r.Unresolved {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}

	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, "\nFailures (%d):\n", len(r.Failures))
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  %s [%s] %s\n", f.Path, f.Code, f.Error)
		}
	}

	if r.Backup != "" {
		fmt.Fprintf(&b, "\nOriginals saved to %s\n", r.Backup)
		fmt.Fprintf(&b, "Undo with: swagfill restore %s\n", shortID(r.RunID))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHistoryHuman(h *HistoryResponseCLI) string {
	if len(h.Runs) == 0 {
		return "No runs recorded."
	}
	var b strings.Builder
	for i, r := range h.Runs {
		if i > 0 && len(r.Files) > 0 {
			b.WriteString("\n")
		}
		mode := "write"
		if r.DryRun {
			mode = "dry-run"
		}
		fmt.Fprintf(&b, "%s  %s  %-7s  ops %d  dtos %d  files %d",
			shortID(r.ID), r.StartedAt.Local().Format(time.DateTime), mode, r.Operations, r.DTOs, r.Written)
		if r.Failed > 0 {
			fmt.Fprintf(&b, "  failed %d", r.Failed)
		}
		if r.Unresolved > 0 {
			fmt.Fprintf(&b, "  unresolved %d", r.Unresolved)
		}
		if r.Backup != "" {
			b.WriteString("  [backup]")
		}
		b.WriteString("\n")
		for _, f := range r.Files {
			fmt.Fprintf(&b, "    %-9s %s", f.Action, f.Path)
			if f.Error != "" {
				fmt.Fprintf(&b, "  (%s)", f.Error)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRestoreHuman(r *RestoreResponseCLI) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Restored %d file(s) from run %s\n", len(r.Restored), shortID(r.RunID))
	for _, path := range r.Restored {
		fmt.Fprintf(&b, "  %s\n", path)
	}
	return strings.TrimRight(b.String(), "\n")
}

// shortID abbreviates a run ID for display. Any unique prefix is accepted
// back by history and restore.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func diffStat(fd *godiff.FileDiff) (added, removed int) {
	return preview.Stat(fd)
}

func trimDiffPrefix(name string) string {
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}
