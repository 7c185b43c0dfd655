package advisor

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/helix-tools/patchrank/internal/engine"
)

var (
	ErrMissingReport = errors.New("report required for advice generation")
)

// AssemblePrompt builds the LLM prompt from an analysis report and any
// similar historical patches retrieved from the vector store.
func AssemblePrompt(report *engine.OptimizationReport, historical []HistoricalPatch) (string, error) {
	if report == nil {
		return "", ErrMissingReport
	}

	// Sort historical patches by relevance score (highest first), even if
	// already sorted.
	sorted := make([]HistoricalPatch, len(historical))
	copy(sorted, historical)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	return assembleReportPrompt(report, sorted), nil
}

func assembleReportPrompt(report *engine.OptimizationReport, historical []HistoricalPatch) string {
	var b strings.Builder

	b.WriteString("You are a senior software engineer reviewing candidate patches for a code change. ")
	b.WriteString("Your task is to produce concrete, actionable advice on which patch to apply ")
	b.WriteString("and what to watch out for during integration.\n\n")

	b.WriteString("# Analysis Report\n\n")
	if report.FilePath != "" {
		b.WriteString(fmt.Sprintf("**File:** %s\n\n", report.FilePath))
	}
	b.WriteString(fmt.Sprintf("**Patches Analyzed:** %d\n\n", report.PatchesAnalyzed))
	b.WriteString(fmt.Sprintf("**Recommended Patch:** %s\n\n", valueOrNA(report.TopPickID)))

	b.WriteString("**Ranked Patches:**\n")
	if len(report.Entries) == 0 {
		b.WriteString("- (none)\n\n")
	} else {
		for _, entry := range report.Entries {
			b.WriteString(fmt.Sprintf("- #%d %s (%s): success probability %.2f, combined score %.3f\n",
				entry.Score.Rank,
				entry.Candidate.ID,
				entry.Candidate.Type,
				entry.Score.Probability,
				entry.Score.CombinedScore,
			))
			if entry.Candidate.Description != "" {
				desc := entry.Candidate.Description
				if len(desc) > 200 {
					desc = desc[:200] + "..."
				}
				b.WriteString(fmt.Sprintf("  %s\n", desc))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("**Detected Smells:** %d items\n\n", len(report.Smells)))
	if len(report.Smells) == 0 {
		b.WriteString("- (none)\n\n")
	} else {
		for _, smell := range report.Smells {
			b.WriteString(fmt.Sprintf("- **%s** in %s (severity %.2f, confidence %.2f): %s\n",
				smell.Type, valueOrNA(smell.CandidateID), smell.Severity, smell.Confidence, smell.Description))
		}
		b.WriteString("\n")
	}

	if len(report.Excluded) > 0 {
		b.WriteString("**Excluded Candidates:**\n")
		for _, ex := range report.Excluded {
			b.WriteString(fmt.Sprintf("- %s: %s\n", ex.CandidateID, ex.Reason))
		}
		b.WriteString("\n")
	}

	if len(historical) > 0 {
		b.WriteString("# Similar Historical Patches\n\n")
		b.WriteString("The following are similar patches from past analyses that may indicate duplicated or related work:\n\n")

		for _, h := range historical {
			b.WriteString(fmt.Sprintf("**Patch %s** in %s (similarity: %.2f)\n", h.PatchID, valueOrNA(h.FilePath), h.Score))
			text := h.Text
			if len(text) > 400 {
				text = text[:400] + "..."
			}
			b.WriteString(text + "\n\n")
		}
	}

	b.WriteString("# Task\n\n")
	b.WriteString("Generate advice (2-4 paragraphs) that:\n")
	b.WriteString("1. States which patch to apply and why the ranking supports it\n")
	b.WriteString("2. Calls out integration risks implied by the cost breakdown and smells\n")
	b.WriteString("3. Notes any overlap with the similar historical patches\n")
	b.WriteString("4. Suggests verification steps before merging\n\n")
	b.WriteString("Use clear technical language and base all statements strictly on the report data and provided context. ")
	b.WriteString("Do not invent patch contents or outcomes; when the data is inconclusive, say so. ")
	b.WriteString("Treat historical patches only as background, not as part of this analysis.\n")

	return b.String()
}

func valueOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
