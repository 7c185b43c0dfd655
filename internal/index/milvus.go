package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

func init() {
	// Load .env for Milvus configuration
	_ = godotenv.Load("../../../.env")
}

// Common errors for Milvus operations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrEmptyRecords     = errors.New("no records provided for insertion")
	ErrRecordMismatch   = errors.New("record and embedding counts differ")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
)

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension
	IndexType      string // Index type (default: "HNSW")
	MetricType     string // Similarity metric (default: "COSINE")

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
}

// DefaultMilvusConfig returns default configuration from environment variables
func DefaultMilvusConfig() MilvusConfig {
	address := os.Getenv("MILVUS_ADDRESS")
	if address == "" {
		address = "localhost:19530"
	}

	collection := os.Getenv("MILVUS_COLLECTION")
	if collection == "" {
		collection = "patchrank_patches"
	}

	return MilvusConfig{
		Address:        address,
		CollectionName: collection,
		Dimension:      1024, // Matches the local feature embedder
		IndexType:      "HNSW",
		MetricType:     "COSINE",
		M:              16,
		EfConstruction: 256,
	}
}

// MilvusStore implements VectorStore interface using Milvus
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore creates a new Milvus vector store instance
// Connects to Milvus and ensures the collection exists with proper schema
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the collection with schema if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if has {
		return nil // Collection already exists
	}

	// Define schema for patch embeddings
	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:     "patch_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "context_hash",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "file_path",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.config.Dimension),
				},
			},
			{
				Name:     "patch_type",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "combined_score",
				DataType: entity.FieldTypeFloat,
			},
			{
				Name:     "analyzed_at",
				DataType: entity.FieldTypeInt64, // Unix timestamp
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Create HNSW index on embedding field
	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}

	if err := m.client.CreateIndex(ctx, m.config.CollectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	// Load collection into memory
	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

// Insert adds patch records with their embeddings to Milvus
func (m *MilvusStore) Insert(ctx context.Context, records []PatchRecord, embeddings [][]float32) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}
	if len(records) != len(embeddings) {
		return fmt.Errorf("%w: %d records, %d embeddings", ErrRecordMismatch, len(records), len(embeddings))
	}

	// Prepare column data
	patchIDs := make([]string, len(records))
	contextHashes := make([]string, len(records))
	filePaths := make([]string, len(records))
	texts := make([]string, len(records))
	patchTypes := make([]string, len(records))
	combinedScores := make([]float32, len(records))
	analyzedAts := make([]int64, len(records))

	for i, record := range records {
		patchIDs[i] = record.PatchID
		contextHashes[i] = record.ContextHash
		filePaths[i] = record.FilePath
		texts[i] = record.Text
		patchTypes[i] = record.PatchType
		combinedScores[i] = float32(record.CombinedScore)
		analyzedAts[i] = record.AnalyzedAt.Unix()
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("patch_id", patchIDs),
		entity.NewColumnVarChar("context_hash", contextHashes),
		entity.NewColumnVarChar("file_path", filePaths),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, embeddings),
		entity.NewColumnVarChar("patch_type", patchTypes),
		entity.NewColumnFloat("combined_score", combinedScores),
		entity.NewColumnInt64("analyzed_at", analyzedAts),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	// Flush to ensure data is persisted
	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}

	return nil
}

// Search performs top-K similarity search with optional filtering
func (m *MilvusStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]PatchMatch, error) {
	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	// Build filter expression
	expr := ""
	if opts != nil {
		if opts.FilePath != "" {
			expr = fmt.Sprintf(`file_path == "%s"`, opts.FilePath)
		}
		if opts.ContextHash != "" {
			clause := fmt.Sprintf(`context_hash == "%s"`, opts.ContextHash)
			if expr == "" {
				expr = clause
			} else {
				expr = fmt.Sprintf("%s and %s", expr, clause)
			}
		}
		if len(opts.PatchIDs) > 0 {
			clause := fmt.Sprintf(`patch_id == "%s"`, opts.PatchIDs[0])
			for i := 1; i < len(opts.PatchIDs); i++ {
				clause = fmt.Sprintf(`%s or patch_id == "%s"`, clause, opts.PatchIDs[i])
			}
			if expr == "" {
				expr = clause
			} else {
				expr = fmt.Sprintf("%s and (%s)", expr, clause)
			}
		}
	}

	// Configure search parameters
	sp, err := entity.NewIndexHNSWSearchParam(64) // ef parameter for search
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	vectors := []entity.Vector{entity.FloatVector(queryVector)}
	outputFields := []string{"patch_id", "context_hash", "file_path", "text", "patch_type", "combined_score", "analyzed_at"}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		expr,
		outputFields,
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []PatchMatch{}, nil
	}

	matches := make([]PatchMatch, 0, results[0].ResultCount)

	for i := 0; i < results[0].ResultCount; i++ {
		match := PatchMatch{
			Score: results[0].Scores[i],
		}

		for _, field := range results[0].Fields {
			switch field.Name() {
			case "patch_id":
				match.PatchID = field.(*entity.ColumnVarChar).Data()[i]
			case "context_hash":
				match.ContextHash = field.(*entity.ColumnVarChar).Data()[i]
			case "file_path":
				match.FilePath = field.(*entity.ColumnVarChar).Data()[i]
			case "text":
				match.Text = field.(*entity.ColumnVarChar).Data()[i]
			case "patch_type":
				match.PatchType = field.(*entity.ColumnVarChar).Data()[i]
			case "combined_score":
				match.CombinedScore = float64(field.(*entity.ColumnFloat).Data()[i])
			case "analyzed_at":
				match.AnalyzedAt = time.Unix(field.(*entity.ColumnInt64).Data()[i], 0)
			}
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// Query checks which patch IDs exist in the store
func (m *MilvusStore) Query(ctx context.Context, patchIDs []string) (map[string]bool, error) {
	if len(patchIDs) == 0 {
		return map[string]bool{}, nil
	}

	expr := fmt.Sprintf(`patch_id == "%s"`, patchIDs[0])
	for i := 1; i < len(patchIDs); i++ {
		expr = fmt.Sprintf(`%s or patch_id == "%s"`, expr, patchIDs[i])
	}

	results, err := m.client.Query(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		expr,
		[]string{"patch_id"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query patches: %w", err)
	}

	existenceMap := make(map[string]bool, len(patchIDs))
	for _, id := range patchIDs {
		existenceMap[id] = false
	}

	for _, column := range results {
		if column.Name() == "patch_id" {
			if varcharCol, ok := column.(*entity.ColumnVarChar); ok {
				for _, id := range varcharCol.Data() {
					existenceMap[id] = true
				}
			}
		}
	}

	return existenceMap, nil
}

// Delete removes records by patch IDs
func (m *MilvusStore) Delete(ctx context.Context, patchIDs []string) error {
	if len(patchIDs) == 0 {
		return nil
	}

	expr := fmt.Sprintf(`patch_id == "%s"`, patchIDs[0])
	for i := 1; i < len(patchIDs); i++ {
		expr = fmt.Sprintf(`%s or patch_id == "%s"`, expr, patchIDs[i])
	}

	if err := m.client.Delete(ctx, m.config.CollectionName, "", expr); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	return nil
}

// GetStats returns collection statistics
func (m *MilvusStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return map[string]interface{}{
		"row_count": stats["row_count"],
	}, nil
}

// Close releases resources and closes the Milvus connection
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
