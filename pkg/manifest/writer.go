// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"io"

	"sigs.k8s.io/yaml"
)

type ExportFormat int

const (
	InvalidExportFormat ExportFormat = iota
	YAMLExportFormat
	JSONExportFormat
)

var ErrInvalidExportFormat = errors.New("invalid export format")

// NewExportFormat returns YAML or JSON format
func NewExportFormat(useJSON bool) ExportFormat {
	if useJSON {
		return JSONExportFormat
	}
	return YAMLExportFormat
}

// Extension returns the extension name for the export file
func (f ExportFormat) Extension() string {
	switch f {
	case YAMLExportFormat:
		return "yaml"
	case JSONExportFormat:
		return "json"
	}
	return ""
}

// Exporter writes the structured form of a manifest's requirement list to
// the configured io.Writer in either YAML or JSON.
type Exporter struct {
	writer io.Writer
	format ExportFormat
}

// NewExporter creates a new Exporter
func NewExporter(w io.Writer, f ExportFormat) *Exporter {
	return &Exporter{
		writer: w,
		format: f,
	}
}

func (e *Exporter) Export(m *Manifest) error {
	return e.exportAny(m.Requirements())
}

func (e *Exporter) ExportRequirements(reqs []*Requirement) error {
	return e.exportAny(reqs)
}

func (e *Exporter) exportAny(v any) error {
	switch e.format {
	case YAMLExportFormat:
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = e.writer.Write(out)
		return err
	case JSONExportFormat:
		enc := json.NewEncoder(e.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return ErrInvalidExportFormat
	}
}
