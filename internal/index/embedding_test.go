package index

import (
	"context"
	"errors"
	"testing"

	"github.com/helix-tools/patchrank/internal/quantum"
)

func localEmbedder(dimension int) *FeatureEmbedder {
	return NewFeatureEmbedder(quantum.NewFeatureEmbedder(quantum.EmbedderConfig{Dimension: dimension}))
}

// TestFeatureEmbedder_Embed tests the local embedder adapter
func TestFeatureEmbedder_Embed(t *testing.T) {
	e := localEmbedder(16)
	texts := []string{"func a() { return 1 }", "func b() { return 2 }"}

	records, err := e.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	for i, record := range records {
		if record.Text != texts[i] {
			t.Errorf("Expected text preserved at %d, got %q", i, record.Text)
		}
		if record.Index != i {
			t.Errorf("Expected index %d, got %d", i, record.Index)
		}
		if record.Model != "local-feature-v1" {
			t.Errorf("Expected local model id, got %s", record.Model)
		}
		if len(record.Embedding) != 16 {
			t.Errorf("Expected 16-dimensional vector, got %d", len(record.Embedding))
		}
	}
}

// TestFeatureEmbedder_Deterministic tests that equal inputs embed identically
func TestFeatureEmbedder_Deterministic(t *testing.T) {
	e := localEmbedder(16)
	text := "if err != nil { return err }"

	first, err := e.Embed(context.Background(), []string{text})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := e.Embed(context.Background(), []string{text})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for i := range first[0].Embedding {
		if first[0].Embedding[i] != second[0].Embedding[i] {
			t.Fatalf("Expected identical vectors, differ at %d", i)
		}
	}
}

// TestFeatureEmbedder_EmptyTexts tests the empty-input error
func TestFeatureEmbedder_EmptyTexts(t *testing.T) {
	e := localEmbedder(16)

	_, err := e.Embed(context.Background(), nil)
	if !errors.Is(err, ErrEmptyTexts) {
		t.Errorf("Expected ErrEmptyTexts, got %v", err)
	}
}

// TestFeatureEmbedder_Cancellation tests that a cancelled context stops embedding
func TestFeatureEmbedder_Cancellation(t *testing.T) {
	e := localEmbedder(16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Embed(ctx, []string{"func a() {}"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFeatureEmbedder_Accessors(t *testing.T) {
	e := localEmbedder(32)

	if e.GetModel() != "local-feature-v1" {
		t.Errorf("Expected local-feature-v1, got %s", e.GetModel())
	}
	if e.GetDimension() != 32 {
		t.Errorf("Expected dimension 32, got %d", e.GetDimension())
	}
}
