package index

import "context"

// mockVectorStore is an in-memory VectorStore for testing
type mockVectorStore struct {
	inserted      []PatchRecord
	insertedVecs  [][]float32
	insertCalls   int
	existing      map[string]bool
	searchResults []PatchMatch
	lastTopK      int
	lastOpts      *SearchOptions
	queriedIDs    []string
	deletedIDs    []string
	closed        bool

	insertErr error
	searchErr error
	queryErr  error
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{existing: make(map[string]bool)}
}

func (m *mockVectorStore) Insert(ctx context.Context, records []PatchRecord, embeddings [][]float32) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.insertCalls++
	m.inserted = append(m.inserted, records...)
	m.insertedVecs = append(m.insertedVecs, embeddings...)
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]PatchMatch, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.lastTopK = topK
	m.lastOpts = opts
	results := m.searchResults
	if opts != nil && len(opts.PatchIDs) > 0 {
		var filtered []PatchMatch
		for _, r := range results {
			for _, id := range opts.PatchIDs {
				if r.PatchID == id {
					filtered = append(filtered, r)
				}
			}
		}
		results = filtered
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *mockVectorStore) Query(ctx context.Context, patchIDs []string) (map[string]bool, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	m.queriedIDs = append(m.queriedIDs, patchIDs...)
	result := make(map[string]bool, len(patchIDs))
	for _, id := range patchIDs {
		result[id] = m.existing[id]
	}
	return result, nil
}

func (m *mockVectorStore) Delete(ctx context.Context, patchIDs []string) error {
	m.deletedIDs = append(m.deletedIDs, patchIDs...)
	return nil
}

func (m *mockVectorStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"row_count": int64(len(m.inserted))}, nil
}

func (m *mockVectorStore) Close() error {
	m.closed = true
	return nil
}

// mockEmbedder returns fixed-dimension vectors without any external call
type mockEmbedder struct {
	dimension int
	batches   [][]string
	err       error
}

func newMockEmbedder(dimension int) *mockEmbedder {
	return &mockEmbedder{dimension: dimension}
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}
	m.batches = append(m.batches, texts)

	records := make([]EmbeddingRecord, len(texts))
	for i, text := range texts {
		vector := make([]float32, m.dimension)
		vector[0] = float32(len(text))
		records[i] = EmbeddingRecord{Text: text, Embedding: vector, Index: i, Model: m.GetModel()}
	}
	return records, nil
}

func (m *mockEmbedder) GetModel() string { return "mock-embedder" }

func (m *mockEmbedder) GetDimension() int { return m.dimension }
