package quantum

import (
	"hash/fnv"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/helix-tools/patchrank/internal/patch"
)

// CostResult holds an integration-cost estimate and its sub-cost breakdown.
type CostResult struct {
	// Total is the final cost estimate, always >= 0
	Total float64 `json:"total"`

	// Sub-costs before weighting
	Testing   float64 `json:"testing"`
	Risk      float64 `json:"risk"`
	Magnitude float64 `json:"magnitude"`

	// Converged reports whether the minimization settled within the
	// iteration budget; a false value lowers rationale confidence
	Converged bool `json:"converged"`

	// Iterations is the number of perturbation steps executed
	Iterations int `json:"iterations"`
}

// CostEvaluator estimates the integration cost of a candidate through
// iterative variational minimization: start from a weighted combination of
// sub-costs, then repeatedly perturb a small parameter vector and accept
// improvements, in the manner of VQE energy minimization.
type CostEvaluator struct {
	config CostConfig
}

// NewCostEvaluator creates an evaluator with the given configuration.
func NewCostEvaluator(config CostConfig) *CostEvaluator {
	defaults := DefaultCostConfig()
	if config.Iterations <= 0 {
		config.Iterations = defaults.Iterations
	}
	if config.TestingWeight+config.RiskWeight+config.MagnitudeWeight == 0 {
		config.TestingWeight = defaults.TestingWeight
		config.RiskWeight = defaults.RiskWeight
		config.MagnitudeWeight = defaults.MagnitudeWeight
	}
	return &CostEvaluator{config: config}
}

// Regularization strength keeping the parameter vector near zero. The
// attainable improvement is small relative to the initial estimate, which is
// what keeps unseeded runs within a few percent of seeded ones.
const costDamping = 2.0

// Evaluate estimates the integration cost of applying the candidate to the
// context. Deterministic for a fixed configured seed.
func (e *CostEvaluator) Evaluate(candidate patch.Candidate, ctx *patch.CodeContext) CostResult {
	testing := testingBurden(candidate)
	risk := riskExposure(candidate, ctx)
	magnitude := changeMagnitude(candidate, ctx)

	subCosts := [3]float64{testing, risk, magnitude}
	subWeights := [3]float64{e.config.TestingWeight, e.config.RiskWeight, e.config.MagnitudeWeight}

	energy := func(params [3]float64) float64 {
		total := 0.0
		for k := 0; k < 3; k++ {
			scale := 1 + params[k]
			if scale < 0 {
				scale = 0
			}
			total += subWeights[k] * scale * subCosts[k]
			total += costDamping * params[k] * params[k]
		}
		return total
	}

	rng := rand.New(rand.NewSource(e.seedFor(candidate)))

	var params [3]float64
	best := energy(params)

	// A single rejected proposal is just an unlucky draw. Convergence is
	// declared only after stallLimit consecutive proposals fail to improve
	// the energy by at least tolerance.
	const tolerance = 1e-4
	const stallLimit = 2

	converged := false
	iterations := 0
	stalled := 0

	for iter := 0; iter < e.config.Iterations; iter++ {
		iterations = iter + 1

		proposal := params
		for k := 0; k < 3; k++ {
			proposal[k] += (rng.Float64() - 0.5) * 0.1
		}

		improvement := 0.0
		if value := energy(proposal); value < best {
			improvement = best - value
			best = value
			params = proposal
		}

		if improvement < tolerance {
			stalled++
			if stalled == stallLimit {
				converged = true
				break
			}
			continue
		}
		stalled = 0
	}

	return CostResult{
		Total:      best,
		Testing:    testing,
		Risk:       risk,
		Magnitude:  magnitude,
		Converged:  converged,
		Iterations: iterations,
	}
}

// seedFor combines the configured seed with the candidate id so each
// candidate gets its own deterministic stream
func (e *CostEvaluator) seedFor(candidate patch.Candidate) int64 {
	h := fnv.New64a()
	h.Write([]byte(candidate.ID))
	idHash := int64(h.Sum64() >> 1)

	if e.config.Seed != 0 {
		return e.config.Seed ^ idHash
	}
	return time.Now().UnixNano() ^ idHash
}

// Base testing burden by patch type, following the relative ordering the
// patch taxonomy implies: security and bug fixes demand the most verification.
var testingBaseline = map[patch.Type]float64{
	patch.TypeBugfix:          0.95,
	patch.TypeSecurity:        0.99,
	patch.TypePerformance:     0.70,
	patch.TypeMaintainability: 0.50,
	patch.TypeRefactor:        0.80,
}

// testingBurden estimates verification effort for the candidate
func testingBurden(candidate patch.Candidate) float64 {
	base, ok := testingBaseline[candidate.Type]
	if !ok {
		base = 0.70
	}
	return base * (1 + 0.1*float64(len(candidate.Symbols)))
}

// riskExposure combines the declared risk score with a size-derived
// complexity factor
func riskExposure(candidate patch.Candidate, ctx *patch.CodeContext) float64 {
	complexity := 0.0
	if ctx != nil && ctx.ContextLineCount() > 0 {
		complexity = clamp01(float64(candidate.LineCount()) / float64(ctx.ContextLineCount()))
	}
	return candidate.RiskScore + 0.3*complexity
}

var diffLinePattern = regexp.MustCompile(`(?m)^[+-][^+-]`)

// changeMagnitude measures how much of the context the candidate rewrites
func changeMagnitude(candidate patch.Candidate, ctx *patch.CodeContext) float64 {
	changed := len(diffLinePattern.FindAllString(candidate.Body, -1))
	if changed == 0 {
		// Not diff-shaped: fall back to raw line count
		changed = candidate.LineCount()
		if strings.TrimSpace(candidate.Body) == "" {
			changed = 0
		}
	}

	contextLines := 1
	if ctx != nil && ctx.ContextLineCount() > 0 {
		contextLines = ctx.ContextLineCount()
	}

	return float64(changed) / float64(contextLines)
}
