// Package index persists embeddings of ranked patches in a vector store so
// later analyses can find similar historical patches (cross-analysis
// duplicate detection). The store and embedder are both interfaces with
// concrete Milvus and OpenAI implementations.
package index

import (
	"context"
	"time"
)

// PatchRecord is one stored patch: identity, text, and ranking outcome.
type PatchRecord struct {
	PatchID       string    `json:"patch_id"` // "<context-hash-prefix>/<candidate-id>"
	ContextHash   string    `json:"context_hash"`
	FilePath      string    `json:"file_path"`
	Text          string    `json:"text"` // Patch body used for embedding
	PatchType     string    `json:"patch_type"`
	Probability   float64   `json:"probability"`
	CombinedScore float64   `json:"combined_score"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

// PatchMatch is a retrieved similar patch with its similarity score.
type PatchMatch struct {
	PatchID       string    `json:"patch_id"`
	ContextHash   string    `json:"context_hash"`
	FilePath      string    `json:"file_path"`
	Text          string    `json:"text"`
	Score         float32   `json:"score"` // Vector similarity (cosine)
	PatchType     string    `json:"patch_type"`
	CombinedScore float64   `json:"combined_score"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

// SearchOptions provides filtering options for vector search
type SearchOptions struct {
	FilePath    string   `json:"file_path,omitempty"`    // Filter by analyzed file
	PatchIDs    []string `json:"patch_ids,omitempty"`    // Filter by specific patch IDs
	ContextHash string   `json:"context_hash,omitempty"` // Filter by originating context
}

// VectorStore defines the interface for patch embedding storage and
// similarity search
type VectorStore interface {
	// Insert adds patch records with their embeddings
	Insert(ctx context.Context, records []PatchRecord, embeddings [][]float32) error

	// Search performs top-K similarity search with optional filtering
	Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]PatchMatch, error)

	// Query checks which patch IDs exist in the store
	Query(ctx context.Context, patchIDs []string) (map[string]bool, error)

	// Delete removes records by patch IDs
	Delete(ctx context.Context, patchIDs []string) error

	// GetStats returns collection statistics (record count, index status, etc.)
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close releases resources and closes connections
	Close() error
}

// IndexOptions provides configuration for report indexing
type IndexOptions struct {
	// BatchSize determines how many patch bodies to embed at once
	BatchSize int

	// SkipExisting will check if a patch already exists and skip if present
	SkipExisting bool

	// TopOnly indexes only the report's recommended patch
	TopOnly bool
}

// DefaultIndexOptions returns sensible defaults for indexing
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		BatchSize:    10,
		SkipExisting: true,
		TopOnly:      false,
	}
}
