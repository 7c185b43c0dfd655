// Package orchestrator coordinates the patch ranking pipeline: embedding,
// smell detection, probabilistic ranking, cost evaluation, and aggregation.
// One Orchestrator instance is safe for concurrent Analyze calls; the only
// shared state is the internally synchronized embedding cache.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/helix-tools/patchrank/internal/engine"
	"github.com/helix-tools/patchrank/internal/patch"
	"github.com/helix-tools/patchrank/internal/quantum"
)

// Common errors for analysis requests
var (
	ErrInvalidContext = errors.New("invalid code context")
	ErrNoCandidates   = errors.New("no candidates to analyze")
)

// Config aggregates the per-component configuration for one orchestrator.
type Config struct {
	Embedder   quantum.EmbedderConfig
	Ranker     quantum.RankerConfig
	Cost       quantum.CostConfig
	Aggregator quantum.AggregatorConfig

	// Workers bounds the per-candidate parallelism within one Analyze call
	Workers int
}

// DefaultConfig returns sensible defaults for all pipeline stages.
func DefaultConfig() Config {
	return Config{
		Embedder:   quantum.DefaultEmbedderConfig(),
		Ranker:     quantum.DefaultRankerConfig(),
		Cost:       quantum.DefaultCostConfig(),
		Aggregator: quantum.DefaultAggregatorConfig(),
		Workers:    4,
	}
}

// Orchestrator owns the pipeline components and the shared embedding cache.
type Orchestrator struct {
	config     Config
	embedder   *quantum.FeatureEmbedder
	detector   *quantum.SmellDetector
	ranker     *quantum.ProbabilisticRanker
	evaluator  *quantum.CostEvaluator
	aggregator *quantum.Aggregator
	generator  patch.Generator
}

// New creates an orchestrator with the given configuration and the default
// heuristic candidate generator.
func New(config Config) *Orchestrator {
	if config.Workers <= 0 {
		config.Workers = DefaultConfig().Workers
	}
	return &Orchestrator{
		config:     config,
		embedder:   quantum.NewFeatureEmbedder(config.Embedder),
		detector:   quantum.NewSmellDetector(),
		ranker:     quantum.NewProbabilisticRanker(config.Ranker),
		evaluator:  quantum.NewCostEvaluator(config.Cost),
		aggregator: quantum.NewAggregator(config.Aggregator),
		generator:  patch.NewHeuristicGenerator(),
	}
}

// SetGenerator replaces the candidate-generation collaborator.
func (o *Orchestrator) SetGenerator(g patch.Generator) {
	if g != nil {
		o.generator = g
	}
}

// Cache exposes the shared embedding cache for inspection.
func (o *Orchestrator) Cache() *quantum.EmbeddingCache {
	return o.embedder.Cache()
}

// candidateOutcome carries the per-candidate results of the parallel stage
type candidateOutcome struct {
	candidate patch.Candidate
	embedding quantum.Embedding
	smells    []quantum.Smell
	cost      quantum.CostResult
	err       error
}

// Analyze runs the full pipeline over one context and candidate set and
// assembles the final report.
//
// Candidates may be nil, in which case the configured generator is invoked
// with issues derived from the context. A failure scoring one candidate
// excludes only that candidate; cancellation stops dispatching new work but
// returns an error rather than a partial report.
func (o *Orchestrator) Analyze(
	ctx context.Context,
	codeCtx *patch.CodeContext,
	candidates []patch.Candidate,
) (*engine.OptimizationReport, error) {
	start := time.Now()

	if codeCtx == nil {
		return nil, fmt.Errorf("%w: context is nil", ErrInvalidContext)
	}
	if strings.TrimSpace(codeCtx.Source) == "" && len(codeCtx.Hunks) == 0 {
		return nil, fmt.Errorf("%w: empty source and no diff hunks", ErrInvalidContext)
	}

	if len(candidates) == 0 {
		generated, err := o.generator.Generate(codeCtx, IssuesFromContext(o.detector, codeCtx))
		if err != nil {
			return nil, fmt.Errorf("candidate generation failed: %w", err)
		}
		candidates = generated
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	// Per-candidate work is independent; results are joined and then sorted,
	// so the final ordering never depends on completion order.
	parallelStart := time.Now()
	outcomes, err := o.evaluateCandidates(ctx, codeCtx, candidates)
	if err != nil {
		return nil, err
	}
	parallelMS := float64(time.Since(parallelStart).Microseconds()) / 1000

	var (
		scored     []patch.Candidate
		embeddings []quantum.Embedding
		excluded   []engine.ExcludedCandidate
		smells     []quantum.Smell
		costs      = make(map[string]quantum.CostResult, len(outcomes))
	)
	for _, out := range outcomes {
		if out.err != nil {
			excluded = append(excluded, engine.ExcludedCandidate{
				CandidateID: out.candidate.ID,
				Reason:      out.err.Error(),
			})
			continue
		}
		// Outcomes arrive in id order, so the lowest id of a duplicate
		// group is the one that survives.
		if priorID, fidelity, dup := duplicateOf(out.embedding, scored, embeddings); dup {
			excluded = append(excluded, engine.ExcludedCandidate{
				CandidateID: out.candidate.ID,
				Reason:      fmt.Sprintf("near-duplicate of %s (fidelity %.2f)", priorID, fidelity),
			})
			continue
		}
		scored = append(scored, out.candidate)
		embeddings = append(embeddings, out.embedding)
		smells = append(smells, out.smells...)
		costs[out.candidate.ID] = out.cost
	}

	rankStart := time.Now()
	rankResult := o.ranker.Rank(scored)
	rankMS := float64(time.Since(rankStart).Microseconds()) / 1000

	scores := o.aggregator.Aggregate(scored, rankResult.Probabilities, costs, rankResult.Converged)

	byID := patch.ByID(scored)
	entries := make([]engine.ReportEntry, len(scores))
	for i, score := range scores {
		entries[i] = engine.ReportEntry{Candidate: byID[score.CandidateID], Score: score}
	}

	report := &engine.OptimizationReport{
		ContextHash:     quantum.HashText(codeCtx.Source),
		FilePath:        codeCtx.FilePath,
		GeneratedAt:     time.Now(),
		Version:         engine.SchemaVersion,
		PatchesAnalyzed: len(candidates),
		Entries:         entries,
		Smells:          smells,
		Excluded:        excluded,
		GreedyFallback:  rankResult.GreedyFallback,
		Timings: engine.StageTimings{
			EmbeddingMS: parallelMS,
			SmellMS:     parallelMS,
			RankingMS:   rankMS,
			CostMS:      parallelMS,
			TotalMS:     float64(time.Since(start).Microseconds()) / 1000,
		},
	}
	if len(entries) > 0 {
		report.TopPickID = entries[0].Candidate.ID
	}
	report.Summary = engine.BuildSummary(report)

	return report, nil
}

// evaluateCandidates runs embedding, smell detection, and cost evaluation
// for each candidate on a bounded worker pool. Cancellation stops dispatch;
// in-flight work either commits its cache entry fully or not at all.
func (o *Orchestrator) evaluateCandidates(
	ctx context.Context,
	codeCtx *patch.CodeContext,
	candidates []patch.Candidate,
) ([]candidateOutcome, error) {
	jobs := make(chan patch.Candidate)
	results := make(chan candidateOutcome, len(candidates))

	workers := o.config.Workers
	if workers > len(candidates) {
		workers = len(candidates)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for candidate := range jobs {
				results <- o.evaluateOne(codeCtx, candidate)
			}
		}()
	}

	dispatched := 0
	seen := make(map[string]bool, len(candidates))
dispatch:
	for _, candidate := range candidates {
		if seen[candidate.ID] {
			results <- candidateOutcome{
				candidate: candidate,
				err:       fmt.Errorf("duplicate candidate id %q", candidate.ID),
			}
			dispatched++
			continue
		}
		seen[candidate.ID] = true

		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- candidate:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	outcomes := make([]candidateOutcome, 0, dispatched)
	for out := range results {
		outcomes = append(outcomes, out)
	}

	// Stable order for exclusion records regardless of completion order
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].candidate.ID < outcomes[j].candidate.ID
	})

	return outcomes, nil
}

// evaluateOne scores a single candidate, converting panics from malformed
// input into per-candidate errors so one bad patch never aborts the batch.
func (o *Orchestrator) evaluateOne(codeCtx *patch.CodeContext, candidate patch.Candidate) (out candidateOutcome) {
	out.candidate = candidate

	defer func() {
		if r := recover(); r != nil {
			out.err = fmt.Errorf("evaluation panic: %v", r)
		}
	}()

	if candidate.ID == "" {
		out.err = errors.New("candidate has no id")
		return out
	}

	out.embedding = o.embedder.Embed(candidate.Body)
	out.smells = o.detector.Detect(candidate, codeCtx)
	out.cost = o.evaluator.Evaluate(candidate, codeCtx)
	return out
}

// duplicateOf reports whether the embedding's source text already appears
// among the kept candidates. The similarity classification must be exact and
// the content hashes must agree; fidelity alone is too coarse a signal to
// drop a candidate on.
func duplicateOf(emb quantum.Embedding, kept []patch.Candidate, embeddings []quantum.Embedding) (string, float64, bool) {
	for i, prior := range embeddings {
		result := quantum.Compare(emb, prior)
		if result.Kind == "exact" && emb.Hash == prior.Hash {
			return kept[i].ID, result.Fidelity, true
		}
	}
	return "", 0, false
}

// IssuesFromContext derives generator issues from the smells of the context
// source itself, so an Analyze call without external candidates still has
// something concrete to propose fixes for.
func IssuesFromContext(detector *quantum.SmellDetector, codeCtx *patch.CodeContext) []patch.Issue {
	contextCandidate := patch.Candidate{ID: "context", Body: codeCtx.Source}
	smells := detector.Detect(contextCandidate, nil)

	issues := make([]patch.Issue, 0, len(smells))
	for _, smell := range smells {
		issues = append(issues, patch.Issue{
			Kind:        string(smell.Type),
			StartLine:   smell.StartLine,
			EndLine:     smell.EndLine,
			Description: smell.Description,
		})
	}
	return issues
}
