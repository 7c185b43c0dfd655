package quantum

import (
	"hash/fnv"
	"math"
	"sort"

	"github.com/helix-tools/patchrank/internal/patch"
)

// RankResult holds the per-candidate success probabilities together with
// observability flags about how the estimate was produced.
type RankResult struct {
	// Probabilities maps candidate id to success probability in [0,1]
	Probabilities map[string]float64 `json:"probabilities"`

	// GreedyFallback reports that the candidate count exceeded the exact
	// optimization budget and the greedy heuristic was used instead
	GreedyFallback bool `json:"greedy_fallback"`

	// Converged reports whether the angle search settled within the
	// round budget; a false value is a best-effort estimate, not an error
	Converged bool `json:"converged"`

	// Rounds is the number of optimization rounds actually executed
	Rounds int `json:"rounds"`
}

// ProbabilisticRanker estimates per-candidate success probabilities by
// building a compatibility graph over the candidates' affected symbols and
// solving an approximate max-cut partitioning with a small variational
// angle search, in the manner of QAOA parameter tuning.
type ProbabilisticRanker struct {
	config RankerConfig
}

// NewProbabilisticRanker creates a ranker with the given configuration.
func NewProbabilisticRanker(config RankerConfig) *ProbabilisticRanker {
	if config.Rounds <= 0 {
		config.Rounds = DefaultRankerConfig().Rounds
	}
	if config.GreedyThreshold <= 0 {
		config.GreedyThreshold = DefaultRankerConfig().GreedyThreshold
	}
	return &ProbabilisticRanker{config: config}
}

const (
	probFloor   = 0.30
	probCeiling = 0.99
	// Probability for a candidate with no conflicts at all
	probIndependent = 0.90
)

// Rank estimates a success probability for every candidate. Candidates are
// processed in id order so equal inputs always yield equal outputs. Above the
// greedy threshold the ranker degrades to the greedy heuristic and flags it.
func (r *ProbabilisticRanker) Rank(candidates []patch.Candidate) RankResult {
	ordered := make([]patch.Candidate, len(candidates))
	copy(ordered, candidates)
	patch.SortByID(ordered)

	weights := conflictGraph(ordered)

	if len(ordered) > r.config.GreedyThreshold {
		return r.rankGreedy(ordered, weights)
	}
	return r.rankVariational(ordered, weights)
}

// conflictGraph builds the symmetric edge-weight matrix: affected-symbol
// overlap blended with risk divergence between each candidate pair.
func conflictGraph(candidates []patch.Candidate) [][]float64 {
	n := len(candidates)
	weights := make([][]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			overlap := patch.SymbolOverlap(candidates[i], candidates[j])
			riskGap := math.Abs(candidates[i].RiskScore - candidates[j].RiskScore)
			w := 0.7*overlap + 0.3*riskGap
			weights[i][j] = w
			weights[j][i] = w
		}
	}

	return weights
}

// rankVariational runs the bounded angle search over the conflict graph
func (r *ProbabilisticRanker) rankVariational(candidates []patch.Candidate, weights [][]float64) RankResult {
	n := len(candidates)

	// Initial angles: deterministic spread seeded from the candidate ids,
	// so repeated runs over the same input stay bit-identical.
	angles := make([]float64, n)
	phase := angleSeed(candidates, r.config.Seed)
	for i := range angles {
		phase = phase*6364136223846793005 + 1442695040888963407
		angles[i] = float64(phase>>11) / float64(1<<53) * math.Pi
	}

	const tolerance = 1e-9
	converged := false
	rounds := 0
	best := cutValue(angles, weights)

	for round := 1; round <= r.config.Rounds; round++ {
		rounds = round
		step := math.Pi / (2 * float64(round+1))
		improved := 0.0

		for i := 0; i < n; i++ {
			for _, delta := range [2]float64{step, -step} {
				original := angles[i]
				angles[i] = original + delta
				if value := cutValue(angles, weights); value > best+tolerance {
					improved += value - best
					best = value
				} else {
					angles[i] = original
				}
			}
		}

		if improved < tolerance {
			converged = true
			break
		}
	}

	probabilities := make(map[string]float64, n)
	for i, c := range candidates {
		probabilities[c.ID] = nodeProbability(i, angles, weights)
	}

	return RankResult{
		Probabilities: probabilities,
		Converged:     converged,
		Rounds:        rounds,
	}
}

// rankGreedy is the documented degradation path for large candidate sets:
// probability falls linearly with the candidate's share of total conflict.
func (r *ProbabilisticRanker) rankGreedy(candidates []patch.Candidate, weights [][]float64) RankResult {
	total := 0.0
	for i := range weights {
		for j := range weights[i] {
			total += weights[i][j]
		}
	}

	probabilities := make(map[string]float64, len(candidates))
	for i, c := range candidates {
		if total == 0 {
			probabilities[c.ID] = probIndependent
			continue
		}
		row := 0.0
		for _, w := range weights[i] {
			row += w
		}
		probabilities[c.ID] = clampProbability(1.0 - row/total)
	}

	return RankResult{
		Probabilities:  probabilities,
		GreedyFallback: true,
		Converged:      true,
	}
}

// cutValue is the max-cut objective: total weight separated by the angles
func cutValue(angles []float64, weights [][]float64) float64 {
	value := 0.0
	for i := 0; i < len(angles); i++ {
		for j := i + 1; j < len(angles); j++ {
			if weights[i][j] > 0 {
				value += weights[i][j] * (1 - math.Cos(angles[i]-angles[j])) / 2
			}
		}
	}
	return value
}

// nodeProbability maps a node's achieved separation from its conflicting
// neighbors onto the probability band. A fully separated node approaches the
// ceiling; an unseparated one sits at the floor. Conflict-free candidates get
// the independent probability.
func nodeProbability(i int, angles []float64, weights [][]float64) float64 {
	row, separated := 0.0, 0.0
	for j := range weights[i] {
		if j == i || weights[i][j] == 0 {
			continue
		}
		row += weights[i][j]
		separated += weights[i][j] * (1 - math.Cos(angles[i]-angles[j])) / 2
	}

	if row == 0 {
		return probIndependent
	}
	return clampProbability(probFloor + (probCeiling-probFloor)*(separated/row))
}

// angleSeed derives a deterministic seed from the candidate ids unless an
// explicit seed was configured.
func angleSeed(candidates []patch.Candidate, seed int64) uint64 {
	if seed != 0 {
		return uint64(seed)
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	sort.Strings(ids)

	h := fnv.New64a()
	for _, id := range ids {
		h.Write([]byte(id))
	}
	if sum := h.Sum64(); sum != 0 {
		return sum
	}
	return 1
}

func clampProbability(p float64) float64 {
	if p < probFloor {
		return probFloor
	}
	if p > probCeiling {
		return probCeiling
	}
	return p
}
