// Package quantum implements the classical numeric core of the patch ranking
// engine: feature embeddings, fidelity similarity, smell detection, a
// QAOA-style probabilistic ranker, a VQE-style cost evaluator, and the final
// score aggregation. The quantum-inspired names follow the algorithms the
// procedures are shaped after; everything here is ordinary floating-point math.
package quantum

// FeatureCount is the number of scalar features extracted from a code fragment
// before projection into the embedding space.
const FeatureCount = 8

// Embedding is a fixed-dimension unit-normalized vector derived from a code
// fragment, plus the content hash used as its cache key.
// Embeddings are created once and never mutated.
type Embedding struct {
	Hash      string    `json:"hash"` // SHA-256 of the input text
	Vector    []float64 `json:"vector"`
	Features  []float64 `json:"features"` // The raw scalar features, for inspection
	Dimension int       `json:"dimension"`
}

// SmellType identifies a structurally detected quality issue category
type SmellType string

const (
	SmellDuplicateCode SmellType = "duplicate_code"
	SmellLongMethod    SmellType = "long_method"
	SmellDeadCode      SmellType = "dead_code"
	SmellDeepNesting   SmellType = "deep_nesting"
	SmellLargeClass    SmellType = "large_class"
	SmellComplexLogic  SmellType = "complex_logic"
	SmellPoorNaming    SmellType = "poor_naming"
	SmellTightCoupling SmellType = "tight_coupling"
	SmellMissingTests  SmellType = "missing_tests"
)

// Smell is one detected code smell with structural severity and a confidence
// derived from how many independent heuristics agreed on the detection.
type Smell struct {
	Type        SmellType `json:"type"`
	StartLine   int       `json:"start_line"`
	EndLine     int       `json:"end_line"`
	Description string    `json:"description"`
	Severity    float64   `json:"severity"`   // [0,1], structural measurement
	Confidence  float64   `json:"confidence"` // [0,1], heuristic agreement
	CandidateID string    `json:"candidate_id,omitempty"`
}

// EmbedderConfig holds parameters for the feature embedder
type EmbedderConfig struct {
	// Dimension is the length of projected embedding vectors
	Dimension int

	// CacheCapacity bounds the embedding cache entry count (0 = unbounded)
	CacheCapacity int
}

// DefaultEmbedderConfig returns the standard 1024-dimension configuration
func DefaultEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		Dimension:     1024,
		CacheCapacity: 0,
	}
}

// RankerConfig holds parameters for the probabilistic ranker
type RankerConfig struct {
	// Rounds is the optimization round budget for the angle parameter search
	Rounds int

	// GreedyThreshold is the candidate count above which the ranker
	// switches to the greedy fallback
	GreedyThreshold int

	// Seed fixes the parameter search randomness (0 = derive from input)
	Seed int64
}

// DefaultRankerConfig returns the standard three-round configuration
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		Rounds:          3,
		GreedyThreshold: 50,
		Seed:            0,
	}
}

// CostConfig holds parameters for the cost evaluator
type CostConfig struct {
	// Iterations is the perturb-and-accept budget
	Iterations int

	// Sub-cost weights (should sum to 1.0)
	TestingWeight   float64
	RiskWeight      float64
	MagnitudeWeight float64

	// Seed fixes the perturbation randomness (0 = non-deterministic runs,
	// still required to land within 5% of the seeded result)
	Seed int64
}

// DefaultCostConfig returns the standard five-iteration configuration
func DefaultCostConfig() CostConfig {
	return CostConfig{
		Iterations:      5,
		TestingWeight:   0.35,
		RiskWeight:      0.25,
		MagnitudeWeight: 0.40,
		Seed:            0,
	}
}

// AggregatorConfig holds the score combination weights
type AggregatorConfig struct {
	// ProbabilityWeight scales the success probability term
	ProbabilityWeight float64

	// CostWeight scales the normalized cost penalty term
	CostWeight float64
}

// DefaultAggregatorConfig returns the standard 0.6/0.4 split
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		ProbabilityWeight: 0.6,
		CostWeight:        0.4,
	}
}
