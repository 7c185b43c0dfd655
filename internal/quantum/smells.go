package quantum

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/helix-tools/patchrank/internal/patch"
)

// SmellDetector scans candidate bodies for the nine structural smell
// categories. Detections carry a severity (structural measurement) and a
// confidence derived from how many independent heuristics agreed:
// single-heuristic detections are capped at 0.7, and each additional
// agreeing heuristic moves confidence toward 1.0.
type SmellDetector struct{}

// NewSmellDetector creates a detector with default thresholds.
func NewSmellDetector() *SmellDetector {
	return &SmellDetector{}
}

// confidenceFor maps the number of agreeing heuristics onto [0.7, 1.0)
func confidenceFor(agreeing int) float64 {
	if agreeing < 1 {
		agreeing = 1
	}
	return 1.0 - 0.3/float64(agreeing)
}

const (
	longMethodThreshold  = 50
	deepNestingThreshold = 4
	largeBlockThreshold  = 150
	significantLineLen   = 20
)

var (
	declPattern        = regexp.MustCompile(`^\s*(?:func|def|function)\s+(\w+)`)
	classPattern       = regexp.MustCompile(`^\s*(?:type\s+(\w+)\s+struct|class\s+(\w+))`)
	commentedOutCode   = regexp.MustCompile(`^\s*(?://|#)\s*(?:func|def|if|for|while|return|class|type)\b`)
	decisionKeyword    = regexp.MustCompile(`\b(if|else|elif|for|while|switch|case|and|or|&&|\|\|)\b`)
	shortIdentifier    = regexp.MustCompile(`\b([a-z]{1,2})\s*(?::?=|\()`)
	selectorReference  = regexp.MustCompile(`\b([A-Za-z_]\w*)\.\w+`)
	testPathIndicator  = regexp.MustCompile(`(_test\.go|test_\w+\.py|\.test\.|\.spec\.)`)
	loopCounterAllowed = map[string]bool{"i": true, "j": true, "k": true, "ok": true}
)

// Detect runs all nine smell heuristics over a candidate's body against
// its context. A nil context is allowed; only the missing-tests heuristic
// needs it.
func (d *SmellDetector) Detect(candidate patch.Candidate, ctx *patch.CodeContext) []Smell {
	lines := strings.Split(candidate.Body, "\n")

	var smells []Smell
	smells = append(smells, d.detectDuplicates(lines)...)
	smells = append(smells, d.detectLongMethods(lines)...)
	smells = append(smells, d.detectDeadCode(lines)...)
	smells = append(smells, d.detectDeepNesting(lines)...)
	smells = append(smells, d.detectLargeBlocks(lines)...)
	smells = append(smells, d.detectComplexLogic(lines)...)
	smells = append(smells, d.detectPoorNaming(lines)...)
	smells = append(smells, d.detectTightCoupling(lines)...)
	smells = append(smells, d.detectMissingTests(candidate, ctx)...)

	for i := range smells {
		smells[i].CandidateID = candidate.ID
	}
	return smells
}

// detectDuplicates flags significant lines that repeat verbatim
func (d *SmellDetector) detectDuplicates(lines []string) []Smell {
	var smells []Smell
	seen := make(map[string]int)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= significantLineLen {
			continue
		}

		if prev, dup := seen[trimmed]; dup {
			agreeing := 1
			// Corroborated when the repeated line is itself a branch or call
			if decisionKeyword.MatchString(trimmed) || strings.Contains(trimmed, "(") {
				agreeing = 2
			}
			smells = append(smells, Smell{
				Type:        SmellDuplicateCode,
				StartLine:   prev,
				EndLine:     i,
				Description: fmt.Sprintf("duplicate code block at lines %d and %d", prev+1, i+1),
				Severity:    0.7,
				Confidence:  confidenceFor(agreeing),
			})
		} else {
			seen[trimmed] = i
		}
	}

	return smells
}

// detectLongMethods flags function bodies longer than the threshold
func (d *SmellDetector) detectLongMethods(lines []string) []Smell {
	var smells []Smell

	flush := func(name string, start, end int) {
		length := end - start
		if length <= longMethodThreshold {
			return
		}
		agreeing := 1
		// Corroborated when the long body is also branch-heavy
		if countDecisions(lines[start:end]) > length/5 {
			agreeing = 2
		}
		smells = append(smells, Smell{
			Type:        SmellLongMethod,
			StartLine:   start,
			EndLine:     end,
			Description: fmt.Sprintf("function %s spans %d lines", name, length),
			Severity:    clamp01(float64(length) / 100.0),
			Confidence:  confidenceFor(agreeing),
		})
	}

	name, start := "", -1
	for i, line := range lines {
		if m := declPattern.FindStringSubmatch(line); m != nil {
			if start >= 0 {
				flush(name, start, i)
			}
			name, start = m[1], i
		}
	}
	if start >= 0 {
		flush(name, start, len(lines))
	}

	return smells
}

// detectDeadCode flags commented-out statements
func (d *SmellDetector) detectDeadCode(lines []string) []Smell {
	var smells []Smell

	for i, line := range lines {
		if !commentedOutCode.MatchString(line) {
			continue
		}
		agreeing := 1
		// Adjacent commented-out statements corroborate each other
		if i+1 < len(lines) && commentedOutCode.MatchString(lines[i+1]) {
			agreeing = 2
		}
		smells = append(smells, Smell{
			Type:        SmellDeadCode,
			StartLine:   i,
			EndLine:     i,
			Description: "commented-out code",
			Severity:    0.6,
			Confidence:  confidenceFor(agreeing),
		})
	}

	return smells
}

// detectDeepNesting flags lines nested beyond the threshold
func (d *SmellDetector) detectDeepNesting(lines []string) []Smell {
	var smells []Smell
	bracketDepth := 0

	for i, line := range lines {
		indent := indentLevel(line)

		lineMax := bracketDepth
		for _, r := range line {
			switch r {
			case '{', '(', '[':
				bracketDepth++
				if bracketDepth > lineMax {
					lineMax = bracketDepth
				}
			case '}', ')', ']':
				if bracketDepth > 0 {
					bracketDepth--
				}
			}
		}

		depth := indent
		agreeing := 1
		if lineMax > deepNestingThreshold && indent > deepNestingThreshold {
			// Both bracket depth and indentation agree
			agreeing = 2
			if lineMax > depth {
				depth = lineMax
			}
		} else if lineMax > depth {
			depth = lineMax
		}

		if depth <= deepNestingThreshold || strings.TrimSpace(line) == "" {
			continue
		}

		smells = append(smells, Smell{
			Type:        SmellDeepNesting,
			StartLine:   i,
			EndLine:     i,
			Description: fmt.Sprintf("nesting depth %d exceeds %d", depth, deepNestingThreshold),
			Severity:    clamp01(float64(depth) / 8.0),
			Confidence:  confidenceFor(agreeing),
		})
	}

	return smells
}

// detectLargeBlocks flags oversized type/class declarations
func (d *SmellDetector) detectLargeBlocks(lines []string) []Smell {
	var smells []Smell

	name, start := "", -1
	methods := 0
	for i, line := range lines {
		if m := classPattern.FindStringSubmatch(line); m != nil {
			if start >= 0 && i-start > largeBlockThreshold {
				smells = append(smells, d.largeBlockSmell(name, start, i, methods))
			}
			name = m[1]
			if name == "" {
				name = m[2]
			}
			start, methods = i, 0
		} else if declPattern.MatchString(line) && start >= 0 {
			methods++
		}
	}
	if start >= 0 && len(lines)-start > largeBlockThreshold {
		smells = append(smells, d.largeBlockSmell(name, start, len(lines), methods))
	}

	return smells
}

func (d *SmellDetector) largeBlockSmell(name string, start, end, methods int) Smell {
	agreeing := 1
	if methods > 15 {
		agreeing = 2
	}
	length := end - start
	return Smell{
		Type:        SmellLargeClass,
		StartLine:   start,
		EndLine:     end,
		Description: fmt.Sprintf("type %s spans %d lines with %d methods", name, length, methods),
		Severity:    clamp01(float64(length) / 400.0),
		Confidence:  confidenceFor(agreeing),
	}
}

// detectComplexLogic flags bodies with high decision-point density
func (d *SmellDetector) detectComplexLogic(lines []string) []Smell {
	decisions := countDecisions(lines)
	if len(lines) == 0 || float64(decisions) <= float64(len(lines))*0.3 {
		return nil
	}

	agreeing := 1
	// Corroborated when deep nesting appears alongside the dense branching
	for _, line := range lines {
		if indentLevel(line) > deepNestingThreshold {
			agreeing = 2
			break
		}
	}

	return []Smell{{
		Type:        SmellComplexLogic,
		StartLine:   0,
		EndLine:     len(lines) - 1,
		Description: fmt.Sprintf("%d decision points across %d lines", decisions, len(lines)),
		Severity:    clamp01(float64(decisions) / (float64(len(lines)) * 0.5)),
		Confidence:  confidenceFor(agreeing),
	}}
}

func countDecisions(lines []string) int {
	n := 0
	for _, line := range lines {
		n += len(decisionKeyword.FindAllString(line, -1))
	}
	return n
}

// detectPoorNaming flags a high rate of one- and two-letter identifiers
func (d *SmellDetector) detectPoorNaming(lines []string) []Smell {
	short, total := 0, 0
	firstLine := -1

	for i, line := range lines {
		for _, m := range shortIdentifier.FindAllStringSubmatch(line, -1) {
			total++
			if !loopCounterAllowed[m[1]] {
				short++
				if firstLine < 0 {
					firstLine = i
				}
			}
		}
	}

	if total < 5 || float64(short) <= float64(total)*0.4 {
		return nil
	}

	agreeing := 1
	if short > 10 {
		agreeing = 2
	}
	return []Smell{{
		Type:        SmellPoorNaming,
		StartLine:   firstLine,
		EndLine:     len(lines) - 1,
		Description: fmt.Sprintf("%d of %d assigned identifiers are one or two letters", short, total),
		Severity:    clamp01(float64(short) / float64(total)),
		Confidence:  confidenceFor(agreeing),
	}}
}

// detectTightCoupling flags bodies referencing many distinct external names
func (d *SmellDetector) detectTightCoupling(lines []string) []Smell {
	refs := make(map[string]bool)
	for _, line := range lines {
		for _, m := range selectorReference.FindAllStringSubmatch(line, -1) {
			refs[m[1]] = true
		}
	}

	if len(refs) <= 8 {
		return nil
	}

	agreeing := 1
	if len(refs) > 16 {
		agreeing = 2
	}
	return []Smell{{
		Type:        SmellTightCoupling,
		StartLine:   0,
		EndLine:     len(lines) - 1,
		Description: fmt.Sprintf("references %d distinct external names", len(refs)),
		Severity:    clamp01(float64(len(refs)) / 24.0),
		Confidence:  confidenceFor(agreeing),
	}}
}

// detectMissingTests flags changed paths with no test coverage in sight
func (d *SmellDetector) detectMissingTests(candidate patch.Candidate, ctx *patch.CodeContext) []Smell {
	if ctx == nil || len(candidate.Symbols) == 0 {
		return nil
	}

	// Any test-looking path in the candidate body or the context hunks
	// counts as coverage for the changed paths.
	if testPathIndicator.MatchString(candidate.Body) {
		return nil
	}
	for _, h := range ctx.Hunks {
		if testPathIndicator.MatchString(h.FilePath) {
			return nil
		}
	}

	agreeing := 1
	if len(candidate.Symbols) > 3 {
		agreeing = 2
	}
	return []Smell{{
		Type:        SmellMissingTests,
		StartLine:   0,
		EndLine:     0,
		Description: fmt.Sprintf("no test changes accompany %d affected symbols", len(candidate.Symbols)),
		Severity:    clamp01(0.4 + 0.1*float64(len(candidate.Symbols))),
		Confidence:  confidenceFor(agreeing),
	}}
}
