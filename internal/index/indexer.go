package index

import (
	"context"
	"fmt"
	"time"

	"github.com/helix-tools/patchrank/internal/engine"
)

// IndexReport embeds the ranked patches of a report and stores them in the
// vector store so later analyses can find similar historical work. It:
// 1. Converts report entries to patch records
// 2. Generates embeddings in batches
// 3. Stores embeddings with ranking metadata in Milvus
// 4. Supports skip-existing and top-only options
func IndexReport(
	ctx context.Context,
	report *engine.OptimizationReport,
	embedder Embedder,
	vectorStore VectorStore,
	opts IndexOptions,
) error {
	if report == nil || len(report.Entries) == 0 {
		return nil
	}

	if embedder == nil {
		return fmt.Errorf("embedder cannot be nil")
	}

	if vectorStore == nil {
		return fmt.Errorf("vector store cannot be nil")
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIndexOptions().BatchSize
	}

	records := recordsFromReport(report, opts.TopOnly)

	if opts.SkipExisting {
		records = filterNewRecords(ctx, records, vectorStore)
	}

	// Process records in batches
	for batchStart := 0; batchStart < len(records); batchStart += opts.BatchSize {
		batchEnd := batchStart + opts.BatchSize
		if batchEnd > len(records) {
			batchEnd = len(records)
		}

		batch := records[batchStart:batchEnd]

		texts := make([]string, len(batch))
		for i, record := range batch {
			texts[i] = record.Text
		}

		embeddingRecords, err := embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings for batch starting at %d: %w", batchStart, err)
		}

		embeddings := make([][]float32, len(batch))
		for i := range batch {
			embeddings[i] = embeddingRecords[i].Embedding
		}

		if err := vectorStore.Insert(ctx, batch, embeddings); err != nil {
			return fmt.Errorf("failed to insert batch starting at %d: %w", batchStart, err)
		}
	}

	return nil
}

// recordsFromReport flattens report entries into storable patch records.
// Patch IDs are namespaced by the context hash so the same candidate ID from
// different analyses never collides.
func recordsFromReport(report *engine.OptimizationReport, topOnly bool) []PatchRecord {
	hashPrefix := report.ContextHash
	if len(hashPrefix) > 12 {
		hashPrefix = hashPrefix[:12]
	}

	analyzedAt := report.GeneratedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now()
	}

	records := make([]PatchRecord, 0, len(report.Entries))
	for _, entry := range report.Entries {
		if topOnly && entry.Candidate.ID != report.TopPickID {
			continue
		}

		records = append(records, PatchRecord{
			PatchID:       fmt.Sprintf("%s/%s", hashPrefix, entry.Candidate.ID),
			ContextHash:   report.ContextHash,
			FilePath:      report.FilePath,
			Text:          entry.Candidate.Body,
			PatchType:     string(entry.Candidate.Type),
			Probability:   entry.Score.Probability,
			CombinedScore: entry.Score.CombinedScore,
			AnalyzedAt:    analyzedAt,
		})
	}

	return records
}

// filterNewRecords removes records whose patch IDs already exist in the store
func filterNewRecords(
	ctx context.Context,
	records []PatchRecord,
	vectorStore VectorStore,
) []PatchRecord {
	if len(records) == 0 {
		return records
	}

	patchIDs := make([]string, len(records))
	for i, record := range records {
		patchIDs[i] = record.PatchID
	}

	existingMap, err := vectorStore.Query(ctx, patchIDs)
	if err != nil {
		// If the query fails, process everything and let insertion surface
		// any real problem.
		return records
	}

	fresh := make([]PatchRecord, 0, len(records))
	for _, record := range records {
		if !existingMap[record.PatchID] {
			fresh = append(fresh, record)
		}
	}

	return fresh
}
