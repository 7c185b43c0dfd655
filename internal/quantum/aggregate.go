package quantum

import (
	"fmt"
	"sort"

	"github.com/helix-tools/patchrank/internal/patch"
)

// RankingScore is the per-candidate scoring tuple produced by aggregation.
type RankingScore struct {
	CandidateID    string  `json:"candidate_id"`
	Probability    float64 `json:"probability"`
	Cost           float64 `json:"cost"`
	NormalizedCost float64 `json:"normalized_cost"`
	CombinedScore  float64 `json:"combined_score"`
	Rank           int     `json:"rank"` // 1 = best
	Rationale      string  `json:"rationale"`

	// LowConfidence marks scores whose probability or cost estimate did
	// not converge within its iteration budget
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// Aggregator linearly combines success probabilities and integration costs
// into one ordinal ranking with a templated rationale per candidate.
type Aggregator struct {
	config AggregatorConfig
}

// NewAggregator creates an aggregator with the given weights.
func NewAggregator(config AggregatorConfig) *Aggregator {
	if config.ProbabilityWeight == 0 && config.CostWeight == 0 {
		config = DefaultAggregatorConfig()
	}
	return &Aggregator{config: config}
}

// Aggregate combines the ranked probabilities and evaluated costs into a
// sorted score list. Costs are min-max normalized across the candidate set;
// when every cost is equal the normalized cost is 0 for all. The list is
// sorted descending by combined score with ties broken by candidate id.
func (a *Aggregator) Aggregate(
	candidates []patch.Candidate,
	probabilities map[string]float64,
	costs map[string]CostResult,
	rankerConverged bool,
) []RankingScore {
	if len(candidates) == 0 {
		return nil
	}

	minCost, maxCost := costRange(candidates, costs)
	span := maxCost - minCost

	byType := make(map[string]patch.Type, len(candidates))
	scores := make([]RankingScore, 0, len(candidates))
	for _, c := range candidates {
		cost := costs[c.ID]
		byType[c.ID] = c.Type

		normalized := 0.0
		if span > 0 {
			normalized = (cost.Total - minCost) / span
		}

		probability := probabilities[c.ID]
		scores = append(scores, RankingScore{
			CandidateID:    c.ID,
			Probability:    probability,
			Cost:           cost.Total,
			NormalizedCost: normalized,
			CombinedScore:  a.config.ProbabilityWeight*probability - a.config.CostWeight*normalized,
			LowConfidence:  !rankerConverged || !cost.Converged,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].CombinedScore != scores[j].CombinedScore {
			return scores[i].CombinedScore > scores[j].CombinedScore
		}
		return scores[i].CandidateID < scores[j].CandidateID
	})

	for i := range scores {
		scores[i].Rank = i + 1
		scores[i].Rationale = rationale(scores[i], byType[scores[i].CandidateID])
	}

	return scores
}

func costRange(candidates []patch.Candidate, costs map[string]CostResult) (min, max float64) {
	first := true
	for _, c := range candidates {
		total := costs[c.ID].Total
		if first {
			min, max = total, total
			first = false
			continue
		}
		if total < min {
			min = total
		}
		if total > max {
			max = total
		}
	}
	return min, max
}

// ExpectedImpact estimates the upside of a patch type, used for rationale
// banding: fixes and security patches carry the most expected benefit.
func ExpectedImpact(t patch.Type) float64 {
	switch t {
	case patch.TypeSecurity:
		return 0.95
	case patch.TypeBugfix:
		return 0.90
	case patch.TypePerformance:
		return 0.70
	case patch.TypeMaintainability:
		return 0.60
	default:
		return 0.50
	}
}

// rationale renders the fixed threshold-band template for one score.
// The wording is deterministic: same score bands, same sentence.
func rationale(score RankingScore, patchType patch.Type) string {
	probBand := band(score.Probability, 0.7, 0.4)
	costBand := band(1-score.NormalizedCost, 2.0/3.0, 1.0/3.0)
	impactBand := band(ExpectedImpact(patchType), 0.8, 0.55)

	// Cost bands read inverted: a high remaining band means low cost
	costWord := map[string]string{"high": "low", "moderate": "moderate", "low": "high"}[costBand]

	text := fmt.Sprintf("%s success probability, %s integration cost, %s expected impact for %s patch",
		probBand, costWord, impactBand, patchType)
	if score.LowConfidence {
		text += " (low-confidence estimate)"
	}
	return text
}

func band(value, high, moderate float64) string {
	switch {
	case value > high:
		return "high"
	case value > moderate:
		return "moderate"
	default:
		return "low"
	}
}
