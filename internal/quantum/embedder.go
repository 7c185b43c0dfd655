package quantum

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"regexp"
	"strings"
)

// FeatureEmbedder converts code fragments into fixed-dimension unit vectors.
// Identical input text always produces an identical vector, so results are
// cached by content hash. Safe for concurrent use.
type FeatureEmbedder struct {
	config EmbedderConfig
	cache  *EmbeddingCache
}

// NewFeatureEmbedder creates an embedder with the given configuration.
func NewFeatureEmbedder(config EmbedderConfig) *FeatureEmbedder {
	if config.Dimension <= 0 {
		config.Dimension = DefaultEmbedderConfig().Dimension
	}
	return &FeatureEmbedder{
		config: config,
		cache:  NewEmbeddingCache(config.CacheCapacity),
	}
}

// Cache exposes the embedder's cache for inspection and sharing.
func (e *FeatureEmbedder) Cache() *EmbeddingCache {
	return e.cache
}

// Dimension returns the length of produced embedding vectors.
func (e *FeatureEmbedder) Dimension() int {
	return e.config.Dimension
}

// Embed converts text into a unit-normalized embedding.
// Empty or whitespace-only input yields the canonical zero-feature vector
// rather than an error, so downstream stages never special-case it.
func (e *FeatureEmbedder) Embed(text string) Embedding {
	hash := HashText(text)

	if cached, ok := e.cache.Get(hash); ok {
		return cached
	}

	features := ExtractFeatures(text)
	vector := project(features, e.config.Dimension)

	embedding := Embedding{
		Hash:      hash,
		Vector:    vector,
		Features:  features,
		Dimension: e.config.Dimension,
	}

	e.cache.Put(hash, embedding)
	return embedding
}

// HashText returns the hex SHA-256 digest used as the embedding cache key.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

var (
	identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	functionPattern   = regexp.MustCompile(`(?m)^\s*(?:func|def|function)\s+\w+`)
	branchPattern     = regexp.MustCompile(`\b(if|else|elif|for|while|switch|case|catch|except)\b`)
	commentPattern    = regexp.MustCompile(`^\s*(//|#|/\*|\*)`)
)

// ExtractFeatures computes the eight scalar features for a code fragment,
// each scaled into [0,1]. Empty input yields the all-zero feature vector.
func ExtractFeatures(text string) []float64 {
	features := make([]float64, FeatureCount)
	if strings.TrimSpace(text) == "" {
		return features
	}

	lines := strings.Split(text, "\n")
	tokens := strings.Fields(text)

	// Line count, saturating at 500 lines
	features[0] = clamp01(float64(len(lines)) / 500.0)

	// Token count, saturating at 2000 tokens
	features[1] = clamp01(float64(len(tokens)) / 2000.0)

	// Identifier diversity: unique identifiers over total identifiers
	idents := identifierPattern.FindAllString(text, -1)
	if len(idents) > 0 {
		unique := make(map[string]bool, len(idents))
		for _, id := range idents {
			unique[id] = true
		}
		features[2] = float64(len(unique)) / float64(len(idents))
	}

	// Maximum nesting depth, saturating at 10
	features[3] = clamp01(float64(maxNestingDepth(lines)) / 10.0)

	// Branching density: decision keywords per line
	features[4] = clamp01(float64(len(branchPattern.FindAllString(text, -1))) / float64(len(lines)) / 0.5)

	// Function count, saturating at 20
	features[5] = clamp01(float64(len(functionPattern.FindAllString(text, -1))) / 20.0)

	// Comment ratio
	commentLines := 0
	for _, line := range lines {
		if commentPattern.MatchString(line) {
			commentLines++
		}
	}
	features[6] = float64(commentLines) / float64(len(lines))

	// Shannon entropy over bytes, scaled by the 8-bit maximum
	features[7] = clamp01(byteEntropy(text) / 8.0)

	return features
}

// maxNestingDepth measures structural depth from both brackets and indentation,
// taking whichever signal is stronger. Indentation is assumed to step by four
// spaces or one tab per level.
func maxNestingDepth(lines []string) int {
	bracketDepth, maxBracket := 0, 0
	maxIndent := 0

	for _, line := range lines {
		for _, r := range line {
			switch r {
			case '{', '(', '[':
				bracketDepth++
				if bracketDepth > maxBracket {
					maxBracket = bracketDepth
				}
			case '}', ')', ']':
				if bracketDepth > 0 {
					bracketDepth--
				}
			}
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := indentLevel(line)
		if indent > maxIndent {
			maxIndent = indent
		}
	}

	if maxBracket > maxIndent {
		return maxBracket
	}
	return maxIndent
}

// indentLevel counts leading indentation in units of one tab or four spaces
func indentLevel(line string) int {
	spaces, tabs := 0, 0
	for _, r := range line {
		if r == ' ' {
			spaces++
		} else if r == '\t' {
			tabs++
		} else {
			break
		}
	}
	return tabs + spaces/4
}

// byteEntropy computes the Shannon entropy of the text's byte distribution
func byteEntropy(text string) float64 {
	if text == "" {
		return 0
	}

	var counts [256]int
	for i := 0; i < len(text); i++ {
		counts[text[i]]++
	}

	entropy := 0.0
	total := float64(len(text))
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// project maps the feature vector into the embedding space through a fixed
// pseudo-random phase lattice. The phases for each dimension are derived from
// the feature bits themselves, so the projection is fully determined by the
// features: same features, same vector.
func project(features []float64, dimension int) []float64 {
	vector := make([]float64, dimension)

	// All-zero features carry no signal to project, so they map straight to
	// the canonical first basis vector instead of a phase-lattice artifact.
	if allZero(features) {
		if dimension > 0 {
			vector[0] = 1
		}
		return vector
	}

	phases := phaseStream(features)

	for i := 0; i < dimension; i++ {
		amplitude := 0.0
		for j, f := range features {
			amplitude += math.Cos(f*math.Pi*float64(j+1) + phases.next())
		}
		vector[i] = amplitude
	}

	normalize(vector)
	return vector
}

// phaseGenerator yields a deterministic stream of phase offsets in [0, 2π)
// seeded from the quantized feature values.
type phaseGenerator struct {
	state uint64
}

func phaseStream(features []float64) *phaseGenerator {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, f := range features {
		binary.BigEndian.PutUint64(buf, math.Float64bits(f))
		h.Write(buf)
	}
	sum := h.Sum(nil)
	seed := binary.BigEndian.Uint64(sum[:8])
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &phaseGenerator{state: seed}
}

// next advances a splitmix64 step and maps the output into [0, 2π)
func (g *phaseGenerator) next() float64 {
	g.state += 0x9E3779B97F4A7C15
	z := g.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return float64(z>>11) / float64(1<<53) * 2 * math.Pi
}

// normalize scales the vector to unit L2 norm in place.
// A zero vector becomes the canonical first basis vector.
func normalize(vector []float64) {
	norm := 0.0
	for _, v := range vector {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	if norm == 0 {
		if len(vector) > 0 {
			vector[0] = 1
		}
		return
	}

	for i := range vector {
		vector[i] /= norm
	}
}

func allZero(features []float64) bool {
	for _, f := range features {
		if f != 0 {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
