package engine

import (
	"fmt"
	"strings"
)

// BuildSummary renders a short human-readable summary for a report.
// The text is assembled from fixed templates over the computed scores,
// never generated, so equal reports always summarize identically.
func BuildSummary(report *OptimizationReport) string {
	var b strings.Builder

	if top, ok := report.TopPick(); ok {
		fmt.Fprintf(&b, "Top patch: %s (#%d)\n", top.Candidate.ID, top.Score.Rank)
		fmt.Fprintf(&b, "Success probability: %.1f%%\n", top.Score.Probability*100)
		fmt.Fprintf(&b, "Rationale: %s\n", top.Score.Rationale)
	} else {
		b.WriteString("No ranked candidates\n")
	}

	if len(report.Excluded) > 0 {
		fmt.Fprintf(&b, "Excluded: %d candidate(s)\n", len(report.Excluded))
	}

	if len(report.Smells) > 0 {
		fmt.Fprintf(&b, "Code smells detected: %d\n", len(report.Smells))
		limit := 3
		if len(report.Smells) < limit {
			limit = len(report.Smells)
		}
		for _, smell := range report.Smells[:limit] {
			fmt.Fprintf(&b, "  - %s (severity %.0f%%)\n", smell.Type, smell.Severity*100)
		}
	}

	return b.String()
}

// Recommendations produces up to n short action items from a report:
// the top patch to apply plus the most severe smells to fix.
func Recommendations(report *OptimizationReport, n int) []string {
	if n <= 0 {
		return nil
	}

	var recs []string
	if top, ok := report.TopPick(); ok {
		recs = append(recs, fmt.Sprintf("Apply %s (%.1f%% success probability)",
			top.Candidate.ID, top.Score.Probability*100))
	}

	for _, smell := range report.Smells {
		if len(recs) >= n {
			break
		}
		recs = append(recs, fmt.Sprintf("Fix %s at line %d (severity %.0f%%)",
			smell.Type, smell.StartLine+1, smell.Severity*100))
	}

	if len(recs) > n {
		recs = recs[:n]
	}
	return recs
}
