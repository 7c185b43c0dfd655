package patch

import (
	"strings"
	"testing"
)

const generatorSource = `package server

func handleRequest(w http.ResponseWriter, r *http.Request) {
	unused := legacyValue()
	process(r)
}

func process(r *http.Request) {
	validate(r)
}`

// TestGenerate_OneCandidatePerIssue tests the basic issue-to-candidate mapping
func TestGenerate_OneCandidatePerIssue(t *testing.T) {
	generator := NewHeuristicGenerator()
	ctx := &CodeContext{FilePath: "server.go", Source: generatorSource}

	issues := []Issue{
		{Kind: "unused_variable", StartLine: 3, EndLine: 3, Description: "unused variable cleanup"},
		{Kind: "bug", StartLine: 8, EndLine: 8, Description: "fix nil pointer error"},
	}

	candidates, err := generator.Generate(ctx, issues)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}

	if candidates[0].ID != "patch-001" || candidates[1].ID != "patch-002" {
		t.Errorf("Expected sequential ids, got %s and %s", candidates[0].ID, candidates[1].ID)
	}

	for _, c := range candidates {
		if c.Origin != "generator" {
			t.Errorf("Expected generator origin, got %s", c.Origin)
		}
		if c.Body == "" {
			t.Errorf("Expected non-empty body for %s", c.ID)
		}
		if c.RiskScore < 0 || c.RiskScore > 1 {
			t.Errorf("Risk score out of range for %s: %v", c.ID, c.RiskScore)
		}
	}
}

// TestGenerate_NilContext tests the error path
func TestGenerate_NilContext(t *testing.T) {
	generator := NewHeuristicGenerator()

	if _, err := generator.Generate(nil, nil); err == nil {
		t.Error("Expected error for nil context")
	}
}

// TestGenerate_NoIssues tests that zero issues yields zero candidates
func TestGenerate_NoIssues(t *testing.T) {
	generator := NewHeuristicGenerator()
	ctx := &CodeContext{Source: generatorSource}

	candidates, err := generator.Generate(ctx, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(candidates))
	}
}

// TestClassifyIssue tests the description-to-type mapping
func TestClassifyIssue(t *testing.T) {
	tests := []struct {
		description string
		wantType    Type
	}{
		{"potential security vulnerability in input handling", TypeSecurity},
		{"fix off-by-one error", TypeBugfix},
		{"slow query, performance problem", TypePerformance},
		{"cleanup for maintainability", TypeMaintainability},
		{"restructure helper", TypeRefactor},
	}

	for _, tt := range tests {
		gotType, risk := classifyIssue(tt.description)
		if gotType != tt.wantType {
			t.Errorf("classifyIssue(%q) = %s, want %s", tt.description, gotType, tt.wantType)
		}
		if risk <= 0 || risk > 1 {
			t.Errorf("Risk out of range for %q: %v", tt.description, risk)
		}
	}
}

// TestBuildPatchBody tests the unified-diff shape of generated bodies
func TestBuildPatchBody(t *testing.T) {
	body := buildPatchBody("line one\nline two\nline three", Issue{
		Kind:      "refactor",
		StartLine: 1,
		EndLine:   1,
	})

	if !strings.HasPrefix(body, "@@ -2,1 +2,1 @@") {
		t.Errorf("Expected hunk header for line 2, got %q", body)
	}
	if !strings.Contains(body, "-line two") {
		t.Errorf("Expected removal of the issue line, got %q", body)
	}
}

// TestBuildPatchBody_OutOfRange tests that out-of-range issues yield nothing
func TestBuildPatchBody_OutOfRange(t *testing.T) {
	body := buildPatchBody("only line", Issue{StartLine: 10, EndLine: 12})
	if body != "" {
		t.Errorf("Expected empty body for out-of-range issue, got %q", body)
	}
}

// TestSymbolsNear tests symbol extraction around the issue region
func TestSymbolsNear(t *testing.T) {
	symbols := symbolsNear(generatorSource, 3, 4)
	if len(symbols) == 0 {
		t.Fatal("Expected symbols near the issue")
	}
	if symbols[0] != "handleRequest" {
		t.Errorf("Expected handleRequest, got %s", symbols[0])
	}
}
