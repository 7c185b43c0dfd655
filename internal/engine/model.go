package engine

import (
	"time"

	"github.com/helix-tools/patchrank/internal/patch"
	"github.com/helix-tools/patchrank/internal/quantum"
)

// SchemaVersion is the current version of the report data model.
const SchemaVersion = "v1"

// ReportEntry binds a candidate to its final score.
type ReportEntry struct {
	Candidate patch.Candidate      `json:"candidate"`
	Score     quantum.RankingScore `json:"score"`
}

// ExcludedCandidate records a candidate dropped from the ranking and why.
// Exclusions are per-candidate: one failure never aborts the whole batch.
type ExcludedCandidate struct {
	CandidateID string `json:"candidate_id"`
	Reason      string `json:"reason"`
}

// StageTimings records elapsed wall time per pipeline stage.
type StageTimings struct {
	EmbeddingMS float64 `json:"embedding_ms"`
	SmellMS     float64 `json:"smell_ms"`
	RankingMS   float64 `json:"ranking_ms"`
	CostMS      float64 `json:"cost_ms"`
	TotalMS     float64 `json:"total_ms"`
}

// OptimizationReport is the final output of one analysis run: the ordered
// candidate ranking, the single top pick, and the detected smells. The caller
// owns the report after return; the engine keeps no reference to it.
type OptimizationReport struct {
	ContextHash     string              `json:"context_hash"`
	FilePath        string              `json:"file_path,omitempty"`
	GeneratedAt     time.Time           `json:"generated_at"`
	Version         string              `json:"version"`
	PatchesAnalyzed int                 `json:"patches_analyzed"`
	Entries         []ReportEntry       `json:"candidates"`
	TopPickID       string              `json:"top_pick_id,omitempty"`
	Smells          []quantum.Smell     `json:"smells,omitempty"`
	Excluded        []ExcludedCandidate `json:"excluded,omitempty"`
	GreedyFallback  bool                `json:"greedy_fallback,omitempty"`
	Timings         StageTimings        `json:"timings"`
	Summary         string              `json:"summary,omitempty"`
}

// TopPick returns the recommended entry, if the report has one.
func (r *OptimizationReport) TopPick() (ReportEntry, bool) {
	for _, entry := range r.Entries {
		if entry.Candidate.ID == r.TopPickID {
			return entry, true
		}
	}
	return ReportEntry{}, false
}

// SmellsFor returns the smells detected on one candidate.
func (r *OptimizationReport) SmellsFor(candidateID string) []quantum.Smell {
	var smells []quantum.Smell
	for _, s := range r.Smells {
		if s.CandidateID == candidateID {
			smells = append(smells, s)
		}
	}
	return smells
}
