package index

import (
	"context"
	"fmt"
)

// Retriever provides high-level similarity retrieval over stored patches.
type Retriever struct {
	embedder    Embedder
	vectorStore VectorStore
}

// NewRetriever creates a new Retriever instance.
func NewRetriever(embedder Embedder, vectorStore VectorStore) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if vectorStore == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}

	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
	}, nil
}

// FindSimilarPatches performs semantic search using a patch body as the query.
// Results from the same analysis context are excluded so historical near
// duplicates from other analyses surface first.
func (r *Retriever) FindSimilarPatches(
	ctx context.Context,
	patchBody string,
	contextHash string,
	topK int,
	opts *SearchOptions,
) ([]PatchMatch, error) {
	if patchBody == "" {
		return nil, fmt.Errorf("patch body cannot be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	embeddingRecords, err := r.embedder.Embed(ctx, []string{patchBody})
	if err != nil {
		return nil, fmt.Errorf("failed to embed patch body: %w", err)
	}
	if len(embeddingRecords) == 0 {
		return nil, fmt.Errorf("no embedding generated for patch body")
	}

	queryVector := embeddingRecords[0].Embedding

	// Search for extra results to account for same-context entries
	matches, err := r.vectorStore.Search(ctx, queryVector, topK*2, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar patches: %w", err)
	}

	filtered := make([]PatchMatch, 0, topK)
	for _, match := range matches {
		if contextHash != "" && match.ContextHash == contextHash {
			continue
		}
		filtered = append(filtered, match)
		if len(filtered) >= topK {
			break
		}
	}

	return filtered, nil
}

// FindByPatchID retrieves patches similar to an already stored patch.
func (r *Retriever) FindByPatchID(
	ctx context.Context,
	patchID string,
	topK int,
	opts *SearchOptions,
) ([]PatchMatch, error) {
	if patchID == "" {
		return nil, fmt.Errorf("patch ID cannot be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	existenceMap, err := r.vectorStore.Query(ctx, []string{patchID})
	if err != nil {
		return nil, fmt.Errorf("failed to check patch existence: %w", err)
	}
	if !existenceMap[patchID] {
		return nil, fmt.Errorf("patch %s not found in vector store", patchID)
	}

	// Retrieve the stored patch to get its body
	selfFilter := &SearchOptions{PatchIDs: []string{patchID}}
	stored, err := r.vectorStore.Search(ctx, nil, 1, selfFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve patch: %w", err)
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("patch %s not found", patchID)
	}

	embeddingRecords, err := r.embedder.Embed(ctx, []string{stored[0].Text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed patch text: %w", err)
	}
	if len(embeddingRecords) == 0 {
		return nil, fmt.Errorf("no embedding generated for patch")
	}

	queryVector := embeddingRecords[0].Embedding

	// Search for topK+1 to account for the patch itself in results
	matches, err := r.vectorStore.Search(ctx, queryVector, topK+1, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar patches: %w", err)
	}

	filtered := make([]PatchMatch, 0, topK)
	for _, match := range matches {
		if match.PatchID != patchID {
			filtered = append(filtered, match)
			if len(filtered) >= topK {
				break
			}
		}
	}

	return filtered, nil
}
