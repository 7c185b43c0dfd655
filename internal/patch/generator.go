package patch

import (
	"fmt"
	"regexp"
	"strings"
)

// Issue describes a single finding from upstream analysis tooling
// (linter output, review comments, etc.) that a candidate can address.
type Issue struct {
	Kind        string `json:"kind"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Description string `json:"description"`
}

// Generator produces candidate patches for a code context.
// The ranking engine treats generation as a pluggable collaborator:
// only the output contract matters to the pipeline.
type Generator interface {
	// Generate produces zero or more candidates for the given context
	Generate(ctx *CodeContext, issues []Issue) ([]Candidate, error)
}

// HeuristicGenerator is the default Generator implementation.
// It derives one candidate per reported issue, classifying the patch type
// and risk from the issue description.
type HeuristicGenerator struct {
	counter int
}

// NewHeuristicGenerator creates a generator with a fresh id counter.
func NewHeuristicGenerator() *HeuristicGenerator {
	return &HeuristicGenerator{}
}

var funcNamePattern = regexp.MustCompile(`(?m)^\s*(?:func|def|function)\s+(\w+)`)

// Generate builds one candidate per issue against the context source.
func (g *HeuristicGenerator) Generate(ctx *CodeContext, issues []Issue) ([]Candidate, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	candidates := make([]Candidate, 0, len(issues))
	for _, issue := range issues {
		g.counter++

		patchType, risk := classifyIssue(issue.Description)
		body := buildPatchBody(ctx.Source, issue)

		candidates = append(candidates, Candidate{
			ID:          fmt.Sprintf("patch-%03d", g.counter),
			Body:        body,
			Type:        patchType,
			Description: issue.Description,
			RiskScore:   risk,
			Symbols:     symbolsNear(ctx.Source, issue.StartLine, issue.EndLine),
			Origin:      "generator",
		})
	}

	return candidates, nil
}

// classifyIssue maps an issue description to a patch type and baseline risk
func classifyIssue(description string) (Type, float64) {
	lower := strings.ToLower(description)

	switch {
	case strings.Contains(lower, "security") || strings.Contains(lower, "vulnerab"):
		return TypeSecurity, 0.5
	case strings.Contains(lower, "bug") || strings.Contains(lower, "error") || strings.Contains(lower, "fix"):
		return TypeBugfix, 0.4
	case strings.Contains(lower, "performance") || strings.Contains(lower, "slow"):
		return TypePerformance, 0.3
	case strings.Contains(lower, "maintain") || strings.Contains(lower, "cleanup"):
		return TypeMaintainability, 0.2
	default:
		return TypeRefactor, 0.2
	}
}

// buildPatchBody produces a minimal unified-diff style body marking the issue lines
func buildPatchBody(source string, issue Issue) string {
	lines := strings.Split(source, "\n")

	start := issue.StartLine
	end := issue.EndLine
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if start >= len(lines) || end < start {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@ %s\n", start+1, end-start+1, start+1, end-start+1, issue.Kind)
	for i := start; i <= end; i++ {
		b.WriteString("-")
		b.WriteString(lines[i])
		b.WriteString("\n")
		b.WriteString("+")
		b.WriteString(rewriteLine(lines[i], issue.Kind))
		b.WriteString("\n")
	}
	return b.String()
}

// rewriteLine applies the simplest plausible fix for the issue kind
func rewriteLine(line, kind string) string {
	switch kind {
	case "unused_variable", "dead_code":
		return "" // removal
	default:
		return line
	}
}

// symbolsNear extracts function names declared in or immediately above the issue region.
// Falls back to all declared functions when the region holds none.
func symbolsNear(source string, startLine, endLine int) []string {
	lines := strings.Split(source, "\n")

	var nearby []string
	seen := make(map[string]bool)

	collect := func(from, to int) {
		for i := from; i <= to && i < len(lines); i++ {
			if i < 0 {
				continue
			}
			if m := funcNamePattern.FindStringSubmatch(lines[i]); m != nil && !seen[m[1]] {
				seen[m[1]] = true
				nearby = append(nearby, m[1])
			}
		}
	}

	// Look inside the region first, then widen upward to the enclosing declaration
	collect(startLine, endLine)
	if len(nearby) == 0 {
		collect(startLine-20, startLine)
	}
	if len(nearby) == 0 {
		for _, m := range funcNamePattern.FindAllStringSubmatch(source, 3) {
			if !seen[m[1]] {
				seen[m[1]] = true
				nearby = append(nearby, m[1])
			}
		}
	}

	return nearby
}
