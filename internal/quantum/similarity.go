package quantum

// Similarity computes the fidelity between two unit embeddings: the squared
// inner product of their vectors. For normalized vectors the result lies in
// [0,1], with Similarity(a, a) == 1.
func Similarity(a, b Embedding) float64 {
	dim := len(a.Vector)
	if len(b.Vector) < dim {
		dim = len(b.Vector)
	}

	dot := 0.0
	for i := 0; i < dim; i++ {
		dot += a.Vector[i] * b.Vector[i]
	}

	fidelity := dot * dot
	return clamp01(fidelity)
}

// SimilarityResult pairs a fidelity score with the hashes it was computed from.
type SimilarityResult struct {
	HashA    string  `json:"hash_a"`
	HashB    string  `json:"hash_b"`
	Fidelity float64 `json:"fidelity"`
	Kind     string  `json:"kind"` // "exact", "semantic", or "pattern"
}

// Compare computes the fidelity between two embeddings and classifies the
// relationship by threshold band.
func Compare(a, b Embedding) SimilarityResult {
	fidelity := Similarity(a, b)

	kind := "pattern"
	switch {
	case a.Hash == b.Hash || fidelity > 0.95:
		kind = "exact"
	case fidelity > 0.7:
		kind = "semantic"
	}

	return SimilarityResult{
		HashA:    a.Hash,
		HashB:    b.Hash,
		Fidelity: fidelity,
		Kind:     kind,
	}
}
