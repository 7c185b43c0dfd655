package orchestrator

import (
	"context"
	"fmt"
	"log"

	"github.com/helix-tools/patchrank/internal/advisor"
	"github.com/helix-tools/patchrank/internal/engine"
	"github.com/helix-tools/patchrank/internal/index"
	"github.com/helix-tools/patchrank/internal/quantum"
)

// PipelineConfig holds configuration for the history-aware advice pipeline.
type PipelineConfig struct {
	// TopK is the number of similar historical patches to retrieve as context
	TopK int

	// MaxContextSize is the maximum number of historical patches to include
	// in the prompt
	MaxContextSize int

	// UseLocalEmbedder selects the deterministic feature embedder instead of
	// the OpenAI embedding API
	UseLocalEmbedder bool

	// EmbedderModel is the model to use for remote embeddings
	EmbedderModel string

	// EmbedderDimension is the vector dimension for embeddings
	EmbedderDimension int

	// LLMConfig holds the LLM configuration for advice generation
	LLMConfig advisor.LLMConfig

	// MilvusConfig holds the Milvus vector store configuration
	MilvusConfig index.MilvusConfig

	// IndexOptions controls how report entries are indexed
	IndexOptions index.IndexOptions
}

// DefaultPipelineConfig returns sensible defaults for the advice pipeline.
func DefaultPipelineConfig() PipelineConfig {
	milvus := index.DefaultMilvusConfig()

	return PipelineConfig{
		TopK:              5,
		MaxContextSize:    10,
		UseLocalEmbedder:  true,
		EmbedderModel:     "text-embedding-3-large",
		EmbedderDimension: milvus.Dimension,
		LLMConfig:         advisor.DefaultLLMConfig(),
		MilvusConfig:      milvus,
		IndexOptions:      index.DefaultIndexOptions(),
	}
}

// Pipeline orchestrates report indexing, historical retrieval, and
// LLM-backed advice generation on top of the core analysis.
type Pipeline struct {
	config      PipelineConfig
	embedder    index.Embedder
	vectorStore index.VectorStore
	retriever   *index.Retriever
	generator   *advisor.Generator
}

// NewPipeline creates an advice pipeline with the given configuration.
func NewPipeline(ctx context.Context, config PipelineConfig) (*Pipeline, error) {
	var (
		embedder index.Embedder
		err      error
	)
	if config.UseLocalEmbedder {
		embedder = index.NewFeatureEmbedder(quantum.NewFeatureEmbedder(quantum.EmbedderConfig{
			Dimension: config.MilvusConfig.Dimension,
		}))
	} else {
		embedder, err = index.NewOpenAIEmbedder(config.EmbedderModel, config.EmbedderDimension)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
	}

	vectorStore, err := index.NewMilvusStore(ctx, config.MilvusConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	retriever, err := index.NewRetriever(embedder, vectorStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	llm, err := advisor.NewOpenAILLM(config.LLMConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}

	generator := advisor.NewGenerator(llm, config.LLMConfig)

	return &Pipeline{
		config:      config,
		embedder:    embedder,
		vectorStore: vectorStore,
		retriever:   retriever,
		generator:   generator,
	}, nil
}

// SetLLM replaces the advice LLM, primarily for testing.
func (p *Pipeline) SetLLM(llm advisor.LLM) {
	p.generator = advisor.NewGenerator(llm, p.config.LLMConfig)
}

// Close releases resources held by the pipeline.
func (p *Pipeline) Close() error {
	if p.vectorStore != nil {
		return p.vectorStore.Close()
	}
	return nil
}

// IndexReport stores the report's ranked patches in the vector store so
// later analyses can retrieve them as historical context.
func (p *Pipeline) IndexReport(ctx context.Context, report *engine.OptimizationReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	log.Printf("[Pipeline] Indexing %d ranked patches", len(report.Entries))

	if err := index.IndexReport(ctx, report, p.embedder, p.vectorStore, p.config.IndexOptions); err != nil {
		return fmt.Errorf("failed to index report: %w", err)
	}

	log.Printf("[Pipeline] Successfully indexed report %s", report.ContextHash)
	return nil
}

// FindRelatedPatches retrieves historical patches similar to the report's
// top pick, excluding patches from the same analysis context.
func (p *Pipeline) FindRelatedPatches(ctx context.Context, report *engine.OptimizationReport) ([]index.PatchMatch, error) {
	if report == nil {
		return nil, fmt.Errorf("report cannot be nil")
	}

	top, ok := report.TopPick()
	if !ok {
		return []index.PatchMatch{}, nil
	}

	matches, err := p.retriever.FindSimilarPatches(ctx, top.Candidate.Body, report.ContextHash, p.config.TopK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	return matches, nil
}

// AdviseOnReport generates remediation advice for a report using historical
// context. The pipeline: retrieval -> prompt assembly -> LLM generation.
func (p *Pipeline) AdviseOnReport(ctx context.Context, report *engine.OptimizationReport) (*advisor.Advice, error) {
	if report == nil {
		return nil, fmt.Errorf("report cannot be nil")
	}

	log.Printf("[Pipeline] Generating advice for analysis %s", report.ContextHash)

	// Stage 1: Retrieval of similar historical patches
	log.Printf("[Pipeline] Stage 1: Retrieving top-%d similar patches", p.config.TopK)
	matches, err := p.FindRelatedPatches(ctx, report)
	if err != nil {
		// Historical context is an enrichment; advice still works without it.
		log.Printf("[Pipeline] Warning: retrieval failed, continuing without history: %v", err)
		matches = nil
	}
	log.Printf("[Pipeline] Retrieved %d historical patches", len(matches))

	if len(matches) > p.config.MaxContextSize {
		matches = matches[:p.config.MaxContextSize]
		log.Printf("[Pipeline] Trimmed context to %d patches (max size)", p.config.MaxContextSize)
	}

	historical := make([]advisor.HistoricalPatch, len(matches))
	for i, m := range matches {
		historical[i] = advisor.HistoricalPatch{
			PatchID:  m.PatchID,
			FilePath: m.FilePath,
			Text:     m.Text,
			Score:    m.Score,
		}
	}

	// Stage 2: Prompt assembly
	log.Printf("[Pipeline] Stage 2: Assembling prompt with %d historical patches", len(historical))
	prompt, err := advisor.AssemblePrompt(report, historical)
	if err != nil {
		return nil, fmt.Errorf("prompt assembly failed: %w", err)
	}
	log.Printf("[Pipeline] Assembled prompt (%d characters)", len(prompt))

	// Stage 3: LLM generation
	log.Printf("[Pipeline] Stage 3: Generating advice with LLM")
	advice, err := p.generator.Generate(ctx, report.ContextHash, prompt)
	if err != nil {
		return nil, fmt.Errorf("advice generation failed: %w", err)
	}
	log.Printf("[Pipeline] Successfully generated advice (%d characters)", len(advice.Text))

	return advice, nil
}
