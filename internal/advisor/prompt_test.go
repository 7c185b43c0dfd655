package advisor

import (
	"errors"
	"strings"
	"testing"

	"github.com/helix-tools/patchrank/internal/engine"
	"github.com/helix-tools/patchrank/internal/patch"
	"github.com/helix-tools/patchrank/internal/quantum"
)

func promptReport() *engine.OptimizationReport {
	return &engine.OptimizationReport{
		ContextHash:     "abc123",
		FilePath:        "internal/server/handler.go",
		PatchesAnalyzed: 2,
		TopPickID:       "patch-001",
		Entries: []engine.ReportEntry{
			{
				Candidate: patch.Candidate{ID: "patch-001", Type: patch.TypeBugfix},
				Score:     quantum.RankingScore{CandidateID: "patch-001", Rank: 1, Probability: 0.9, CombinedScore: 0.54},
			},
			{
				Candidate: patch.Candidate{ID: "patch-002", Type: patch.TypeRefactor, Description: "Restructure the request guard"},
				Score:     quantum.RankingScore{CandidateID: "patch-002", Rank: 2, Probability: 0.5, CombinedScore: 0.3},
			},
		},
		Smells: []quantum.Smell{
			{Type: quantum.SmellLongMethod, CandidateID: "patch-002", Severity: 0.8, Confidence: 0.85, Description: "Function exceeds 50 lines"},
		},
		Excluded: []engine.ExcludedCandidate{
			{CandidateID: "patch-003", Reason: "duplicate candidate id"},
		},
	}
}

// TestAssemblePrompt tests the rendered report sections
func TestAssemblePrompt(t *testing.T) {
	prompt, err := AssemblePrompt(promptReport(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := []string{
		"# Analysis Report",
		"**File:** internal/server/handler.go",
		"**Patches Analyzed:** 2",
		"**Recommended Patch:** patch-001",
		"**Ranked Patches:**",
		"- #1 patch-001 (bugfix): success probability 0.90, combined score 0.540",
		"- #2 patch-002 (refactor): success probability 0.50, combined score 0.300",
		"Restructure the request guard",
		"**Detected Smells:** 1 items",
		"**long_method** in patch-002 (severity 0.80, confidence 0.85)",
		"**Excluded Candidates:**",
		"- patch-003: duplicate candidate id",
		"# Task",
	}
	for _, want := range expected {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}

	if strings.Contains(prompt, "# Similar Historical Patches") {
		t.Error("Expected no historical section without historical patches")
	}
}

// TestAssemblePrompt_NilReport tests the missing-report error
func TestAssemblePrompt_NilReport(t *testing.T) {
	_, err := AssemblePrompt(nil, nil)
	if !errors.Is(err, ErrMissingReport) {
		t.Errorf("Expected ErrMissingReport, got %v", err)
	}
}

// TestAssemblePrompt_HistoricalSorted tests score-descending historical ordering
func TestAssemblePrompt_HistoricalSorted(t *testing.T) {
	historical := []HistoricalPatch{
		{PatchID: "low/patch-a", Text: "+low relevance", Score: 0.5},
		{PatchID: "high/patch-b", Text: "+high relevance", Score: 0.9},
	}

	prompt, err := AssemblePrompt(promptReport(), historical)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.Contains(prompt, "# Similar Historical Patches") {
		t.Fatal("Expected historical section")
	}
	highIdx := strings.Index(prompt, "high/patch-b")
	lowIdx := strings.Index(prompt, "low/patch-a")
	if highIdx < 0 || lowIdx < 0 {
		t.Fatal("Expected both historical patches in prompt")
	}
	if highIdx > lowIdx {
		t.Error("Expected higher-scored patch to appear first")
	}
	if !strings.Contains(prompt, "(similarity: 0.90)") {
		t.Errorf("Expected similarity score rendered, got %q", prompt)
	}
}

// TestAssemblePrompt_TruncatesLongPatchText tests the 400-char cap
func TestAssemblePrompt_TruncatesLongPatchText(t *testing.T) {
	historical := []HistoricalPatch{
		{PatchID: "big/patch-a", Text: strings.Repeat("x", 500), Score: 0.9},
	}

	prompt, err := AssemblePrompt(promptReport(), historical)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(prompt, strings.Repeat("x", 401)) {
		t.Error("Expected patch text truncated at 400 characters")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 400)+"...") {
		t.Error("Expected truncation ellipsis")
	}
}

// TestAssemblePrompt_EmptyEntries tests the placeholder bullets
func TestAssemblePrompt_EmptyEntries(t *testing.T) {
	report := &engine.OptimizationReport{ContextHash: "bare"}

	prompt, err := AssemblePrompt(report, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.Contains(prompt, "**Recommended Patch:** N/A") {
		t.Error("Expected N/A placeholder for missing top pick")
	}
	if !strings.Contains(prompt, "- (none)") {
		t.Error("Expected (none) placeholder for empty ranking")
	}
}
