package index

import (
	"context"
	"strings"
	"testing"
)

func storedMatches() []PatchMatch {
	return []PatchMatch{
		{PatchID: "aaa/patch-001", ContextHash: "hash-a", Text: "+fix one", Score: 0.95},
		{PatchID: "bbb/patch-002", ContextHash: "hash-b", Text: "+fix two", Score: 0.90},
		{PatchID: "aaa/patch-003", ContextHash: "hash-a", Text: "+fix three", Score: 0.85},
		{PatchID: "ccc/patch-004", ContextHash: "hash-c", Text: "+fix four", Score: 0.80},
	}
}

// TestNewRetriever tests the constructor validation
func TestNewRetriever(t *testing.T) {
	if _, err := NewRetriever(nil, newMockVectorStore()); err == nil {
		t.Error("Expected error for nil embedder")
	}
	if _, err := NewRetriever(newMockEmbedder(8), nil); err == nil {
		t.Error("Expected error for nil vector store")
	}
	if _, err := NewRetriever(newMockEmbedder(8), newMockVectorStore()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

// TestFindSimilarPatches tests same-context filtering and the top-K cap
func TestFindSimilarPatches(t *testing.T) {
	store := newMockVectorStore()
	store.searchResults = storedMatches()
	r, _ := NewRetriever(newMockEmbedder(8), store)

	matches, err := r.FindSimilarPatches(context.Background(), "+some patch body", "hash-a", 2, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.ContextHash == "hash-a" {
			t.Errorf("Expected same-context patch %s to be excluded", m.PatchID)
		}
	}
	if matches[0].PatchID != "bbb/patch-002" || matches[1].PatchID != "ccc/patch-004" {
		t.Errorf("Expected score ordering preserved, got %s and %s",
			matches[0].PatchID, matches[1].PatchID)
	}
	if store.lastTopK != 4 {
		t.Errorf("Expected search over topK*2 = 4, got %d", store.lastTopK)
	}
}

// TestFindSimilarPatches_NoContextFilter tests retrieval without a context hash
func TestFindSimilarPatches_NoContextFilter(t *testing.T) {
	store := newMockVectorStore()
	store.searchResults = storedMatches()
	r, _ := NewRetriever(newMockEmbedder(8), store)

	matches, err := r.FindSimilarPatches(context.Background(), "+some patch body", "", 3, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(matches) != 3 {
		t.Errorf("Expected 3 matches, got %d", len(matches))
	}
}

// TestFindSimilarPatches_Validation tests the input guards
func TestFindSimilarPatches_Validation(t *testing.T) {
	r, _ := NewRetriever(newMockEmbedder(8), newMockVectorStore())

	if _, err := r.FindSimilarPatches(context.Background(), "", "hash", 3, nil); err == nil {
		t.Error("Expected error for empty patch body")
	}
	if _, err := r.FindSimilarPatches(context.Background(), "+body", "hash", 0, nil); err == nil {
		t.Error("Expected error for non-positive topK")
	}
}

// TestFindByPatchID tests self-exclusion in patch-anchored search
func TestFindByPatchID(t *testing.T) {
	store := newMockVectorStore()
	store.searchResults = storedMatches()
	store.existing["aaa/patch-001"] = true
	r, _ := NewRetriever(newMockEmbedder(8), store)

	matches, err := r.FindByPatchID(context.Background(), "aaa/patch-001", 2, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.PatchID == "aaa/patch-001" {
			t.Error("Expected the anchor patch to be excluded from its own results")
		}
	}
}

// TestFindByPatchID_NotFound tests the missing-anchor error
func TestFindByPatchID_NotFound(t *testing.T) {
	r, _ := NewRetriever(newMockEmbedder(8), newMockVectorStore())

	_, err := r.FindByPatchID(context.Background(), "zzz/patch-999", 2, nil)
	if err == nil {
		t.Fatal("Expected error for unknown patch id")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not-found error, got %v", err)
	}
}
