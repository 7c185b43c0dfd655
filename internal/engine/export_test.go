package engine

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// TestExportReport_JSON tests the serialized report contract
func TestExportReport_JSON(t *testing.T) {
	report := sampleReport()
	report.Version = SchemaVersion

	var buf bytes.Buffer
	if err := ExportReport(report, "json", &buf); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var decoded OptimizationReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}

	if decoded.ContextHash != "abc123" {
		t.Errorf("Expected context hash abc123, got %s", decoded.ContextHash)
	}
	if decoded.Version != SchemaVersion {
		t.Errorf("Expected version %s, got %s", SchemaVersion, decoded.Version)
	}
	if len(decoded.Entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(decoded.Entries))
	}
	if decoded.TopPickID != "patch-001" {
		t.Errorf("Expected top pick patch-001, got %s", decoded.TopPickID)
	}
	if decoded.Entries[0].Score.CombinedScore != 0.54 {
		t.Errorf("Expected combined 0.54, got %v", decoded.Entries[0].Score.CombinedScore)
	}
}

// TestExportReport_CaseInsensitiveFormat tests format normalization
func TestExportReport_CaseInsensitiveFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportReport(sampleReport(), "JSON", &buf); err != nil {
		t.Errorf("Expected no error for uppercase format, got %v", err)
	}
}

// TestExportReport_UnsupportedFormat tests the format error
func TestExportReport_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := ExportReport(sampleReport(), "yaml", &buf)

	if err == nil {
		t.Fatal("Expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported export format: yaml") {
		t.Errorf("Expected format error message, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output on error, got %q", buf.String())
	}
}

// TestExportReport_OmitsEmptySections tests the omitempty contract
func TestExportReport_OmitsEmptySections(t *testing.T) {
	report := &OptimizationReport{ContextHash: "bare", Version: SchemaVersion}

	var buf bytes.Buffer
	if err := ExportReport(report, "json", &buf); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "smells") {
		t.Errorf("Expected smells omitted, got %q", out)
	}
	if strings.Contains(out, "excluded") {
		t.Errorf("Expected excluded omitted, got %q", out)
	}
	if strings.Contains(out, "greedy_fallback") {
		t.Errorf("Expected greedy_fallback omitted, got %q", out)
	}
}
