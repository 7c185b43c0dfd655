package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ExportFormat represents supported export formats
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
)

// ExportReport writes a report to the writer in the requested format.
// The serialized shape is the external output contract consumed by any
// UI, CLI, or editor-integration layer.
func ExportReport(report *OptimizationReport, format string, writer io.Writer) error {
	exportFormat := ExportFormat(strings.ToLower(format))

	if exportFormat != FormatJSON {
		return fmt.Errorf("unsupported export format: %s (supported: json)", format)
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
