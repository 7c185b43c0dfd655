package engine

import (
	"strings"
	"testing"

	"github.com/helix-tools/patchrank/internal/patch"
	"github.com/helix-tools/patchrank/internal/quantum"
)

func sampleReport() *OptimizationReport {
	return &OptimizationReport{
		ContextHash:     "abc123",
		PatchesAnalyzed: 2,
		TopPickID:       "patch-001",
		Entries: []ReportEntry{
			{
				Candidate: patch.Candidate{ID: "patch-001", Type: patch.TypeBugfix},
				Score: quantum.RankingScore{
					CandidateID:   "patch-001",
					Rank:          1,
					Probability:   0.9,
					CombinedScore: 0.54,
					Rationale:     "high success probability",
				},
			},
			{
				Candidate: patch.Candidate{ID: "patch-002", Type: patch.TypeRefactor},
				Score: quantum.RankingScore{
					CandidateID:   "patch-002",
					Rank:          2,
					Probability:   0.4,
					CombinedScore: 0.1,
					Rationale:     "moderate success probability",
				},
			},
		},
		Smells: []quantum.Smell{
			{Type: quantum.SmellLongMethod, Severity: 0.8, StartLine: 10},
			{Type: quantum.SmellDeepNesting, Severity: 0.75, StartLine: 14},
		},
		Excluded: []ExcludedCandidate{
			{CandidateID: "patch-003", Reason: "duplicate candidate id"},
		},
	}
}

// TestBuildSummary tests the rendered summary sections
func TestBuildSummary(t *testing.T) {
	summary := BuildSummary(sampleReport())

	if !strings.Contains(summary, "Top patch: patch-001 (#1)") {
		t.Errorf("Expected top pick line, got %q", summary)
	}
	if !strings.Contains(summary, "Success probability: 90.0%") {
		t.Errorf("Expected probability line, got %q", summary)
	}
	if !strings.Contains(summary, "Rationale: high success probability") {
		t.Errorf("Expected rationale line, got %q", summary)
	}
	if !strings.Contains(summary, "Excluded: 1 candidate(s)") {
		t.Errorf("Expected excluded line, got %q", summary)
	}
	if !strings.Contains(summary, "Code smells detected: 2") {
		t.Errorf("Expected smell count line, got %q", summary)
	}
	if !strings.Contains(summary, "long_method (severity 80%)") {
		t.Errorf("Expected smell detail line, got %q", summary)
	}
}

// TestBuildSummary_Deterministic tests that equal reports summarize identically
func TestBuildSummary_Deterministic(t *testing.T) {
	first := BuildSummary(sampleReport())
	second := BuildSummary(sampleReport())

	if first != second {
		t.Error("Expected identical summaries for equal reports")
	}
}

// TestBuildSummary_NoRankedCandidates tests the empty-ranking fallback
func TestBuildSummary_NoRankedCandidates(t *testing.T) {
	report := &OptimizationReport{ContextHash: "empty"}

	summary := BuildSummary(report)
	if !strings.Contains(summary, "No ranked candidates") {
		t.Errorf("Expected fallback line, got %q", summary)
	}
	if strings.Contains(summary, "Excluded") {
		t.Errorf("Expected no excluded section, got %q", summary)
	}
}

// TestBuildSummary_SmellLimit tests that only the first three smells render
func TestBuildSummary_SmellLimit(t *testing.T) {
	report := sampleReport()
	report.Smells = []quantum.Smell{
		{Type: quantum.SmellLongMethod, Severity: 0.9},
		{Type: quantum.SmellDeepNesting, Severity: 0.8},
		{Type: quantum.SmellDuplicateCode, Severity: 0.7},
		{Type: quantum.SmellDeadCode, Severity: 0.6},
	}

	summary := BuildSummary(report)
	if !strings.Contains(summary, "Code smells detected: 4") {
		t.Errorf("Expected full smell count, got %q", summary)
	}
	if strings.Contains(summary, "dead_code") {
		t.Errorf("Expected fourth smell to be omitted, got %q", summary)
	}
}

// TestRecommendations tests the action item assembly and cap
func TestRecommendations(t *testing.T) {
	report := sampleReport()

	recs := Recommendations(report, 2)
	if len(recs) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d", len(recs))
	}
	if !strings.Contains(recs[0], "Apply patch-001") {
		t.Errorf("Expected top pick first, got %q", recs[0])
	}
	if !strings.Contains(recs[1], "Fix long_method at line 11") {
		t.Errorf("Expected smell fix second, got %q", recs[1])
	}
}

func TestRecommendations_ZeroBudget(t *testing.T) {
	if recs := Recommendations(sampleReport(), 0); recs != nil {
		t.Errorf("Expected nil for zero budget, got %v", recs)
	}
}

func TestTopPick(t *testing.T) {
	report := sampleReport()

	top, ok := report.TopPick()
	if !ok {
		t.Fatal("Expected a top pick")
	}
	if top.Candidate.ID != "patch-001" {
		t.Errorf("Expected patch-001, got %s", top.Candidate.ID)
	}

	report.TopPickID = "missing"
	if _, ok := report.TopPick(); ok {
		t.Error("Expected no top pick for unknown id")
	}
}

func TestSmellsFor(t *testing.T) {
	report := sampleReport()
	report.Smells[0].CandidateID = "patch-001"

	smells := report.SmellsFor("patch-001")
	if len(smells) != 1 {
		t.Fatalf("Expected 1 smell, got %d", len(smells))
	}
	if smells[0].Type != quantum.SmellLongMethod {
		t.Errorf("Expected long_method, got %s", smells[0].Type)
	}
}
