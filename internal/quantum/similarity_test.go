package quantum

import (
	"math"
	"testing"
)

// TestSimilarity_SelfIsOne tests that an embedding compared with itself scores 1
func TestSimilarity_SelfIsOne(t *testing.T) {
	embedder := NewFeatureEmbedder(EmbedderConfig{Dimension: 64})
	embedding := embedder.Embed(sampleFunction)

	got := Similarity(embedding, embedding)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Expected self-similarity 1.0, got %v", got)
	}
}

// TestSimilarity_Range tests that fidelity stays within [0,1]
func TestSimilarity_Range(t *testing.T) {
	embedder := NewFeatureEmbedder(EmbedderConfig{Dimension: 64})

	inputs := []string{
		sampleFunction,
		"func a() {}",
		"return nil",
		"",
	}

	for _, textA := range inputs {
		for _, textB := range inputs {
			got := Similarity(embedder.Embed(textA), embedder.Embed(textB))
			if got < 0 || got > 1 {
				t.Errorf("Similarity out of range for %q vs %q: %v", textA, textB, got)
			}
		}
	}
}

// TestSimilarity_Symmetric tests that the order of arguments does not matter
func TestSimilarity_Symmetric(t *testing.T) {
	embedder := NewFeatureEmbedder(EmbedderConfig{Dimension: 64})

	a := embedder.Embed(sampleFunction)
	b := embedder.Embed("func a() { return }")

	if Similarity(a, b) != Similarity(b, a) {
		t.Error("Expected symmetric similarity")
	}
}

// TestSimilarity_OrthogonalIsZero tests the perpendicular case directly
func TestSimilarity_OrthogonalIsZero(t *testing.T) {
	a := Embedding{Vector: []float64{1, 0}}
	b := Embedding{Vector: []float64{0, 1}}

	if got := Similarity(a, b); got != 0 {
		t.Errorf("Expected 0 for orthogonal vectors, got %v", got)
	}
}

// Opposite unit vectors still have fidelity 1: the square discards sign
func TestSimilarity_SignInvariant(t *testing.T) {
	a := Embedding{Vector: []float64{1, 0}}
	b := Embedding{Vector: []float64{-1, 0}}

	if got := Similarity(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Expected 1 for negated vectors, got %v", got)
	}
}

// TestCompare_Kinds tests the threshold banding
func TestCompare_Kinds(t *testing.T) {
	exact := Compare(
		Embedding{Hash: "h1", Vector: []float64{1, 0}},
		Embedding{Hash: "h1", Vector: []float64{1, 0}},
	)
	if exact.Kind != "exact" {
		t.Errorf("Expected exact, got %s", exact.Kind)
	}

	semantic := Compare(
		Embedding{Hash: "h1", Vector: []float64{1, 0}},
		Embedding{Hash: "h2", Vector: []float64{0.9, math.Sqrt(1 - 0.81)}},
	)
	if semantic.Kind != "semantic" {
		t.Errorf("Expected semantic, got %s (fidelity %v)", semantic.Kind, semantic.Fidelity)
	}

	pattern := Compare(
		Embedding{Hash: "h1", Vector: []float64{1, 0}},
		Embedding{Hash: "h2", Vector: []float64{0.5, math.Sqrt(0.75)}},
	)
	if pattern.Kind != "pattern" {
		t.Errorf("Expected pattern, got %s (fidelity %v)", pattern.Kind, pattern.Fidelity)
	}
}
