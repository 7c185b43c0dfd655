package patch

import "time"

// Type classifies the intent of a proposed change
type Type string

const (
	TypeBugfix          Type = "bugfix"
	TypePerformance     Type = "performance"
	TypeRefactor        Type = "refactor"
	TypeSecurity        Type = "security"
	TypeMaintainability Type = "maintainability"
)

// DiffHunk represents one contiguous change region from a recent diff
// Carries enough metadata to locate the change and judge its shape
type DiffHunk struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Body      string `json:"body,omitempty"` // Unified-diff text (optional for large inputs)
}

// CodeContext is the immutable input to one analysis request:
// the source under review plus the recent changes around it.
// Created by the caller and read-only within the engine.
type CodeContext struct {
	FilePath  string     `json:"file_path"`
	Source    string     `json:"source"`
	Hunks     []DiffHunk `json:"hunks,omitempty"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// Candidate is one proposed modification to the context.
// Candidates are immutable values once created; the engine never mutates them.
type Candidate struct {
	ID          string   `json:"id"`
	Body        string   `json:"body"` // Diff/patch text of the proposed change
	Type        Type     `json:"type"`
	Description string   `json:"description,omitempty"`
	RiskScore   float64  `json:"risk_score"` // Heuristic risk in [0,1], higher = riskier
	Symbols     []string `json:"symbols,omitempty"` // Affected symbol names
	Origin      string   `json:"origin,omitempty"`  // Where the candidate came from (generator, pull request, caller)
}

// LineCount returns the number of lines in the candidate body.
func (c Candidate) LineCount() int {
	if c.Body == "" {
		return 0
	}
	n := 1
	for _, r := range c.Body {
		if r == '\n' {
			n++
		}
	}
	return n
}

// ContextLineCount returns the number of lines in the context source.
func (cc *CodeContext) ContextLineCount() int {
	if cc.Source == "" {
		return 0
	}
	n := 1
	for _, r := range cc.Source {
		if r == '\n' {
			n++
		}
	}
	return n
}

// ChangedPaths returns the unique file paths touched by the context's hunks.
func (cc *CodeContext) ChangedPaths() []string {
	pathMap := make(map[string]bool)
	var paths []string
	for _, h := range cc.Hunks {
		if h.FilePath != "" && !pathMap[h.FilePath] {
			pathMap[h.FilePath] = true
			paths = append(paths, h.FilePath)
		}
	}
	return paths
}
