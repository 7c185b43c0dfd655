package orchestrator

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/helix-tools/patchrank/internal/adapter"
	"github.com/helix-tools/patchrank/internal/engine"
	"github.com/helix-tools/patchrank/internal/ingest/git"
	"github.com/helix-tools/patchrank/internal/patch"
)

func init() {
	// Load .env
	_ = godotenv.Load("../../.env")
}

// AnalyzeFile analyzes patch candidates for one file of a Git repository
// The repo parameter can be either a local path or a remote URL
// Uses default pipeline configuration
// Token is automatically loaded from GITHUB_TOKEN environment variable if not provided
func AnalyzeFile(ctx context.Context, repo, filePath string, token ...string) (*engine.OptimizationReport, error) {
	config := DefaultConfig()
	return AnalyzeFileWithConfig(ctx, repo, filePath, config, token...)
}

// AnalyzeFileWithConfig analyzes a file with custom pipeline configuration
// Token is automatically loaded from GITHUB_TOKEN environment variable if not provided
func AnalyzeFileWithConfig(ctx context.Context, repo, filePath string, config Config, token ...string) (*engine.OptimizationReport, error) {
	// Check for context cancellation
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before analysis: %w", err)
	}

	// Extract token: use provided token, otherwise fall back to env var
	var apiToken string
	if len(token) > 0 && token[0] != "" {
		apiToken = token[0]
	} else {
		apiToken = os.Getenv("GITHUB_TOKEN")
	}

	// Step 1: Ingest the file's content and history
	codeCtx, candidates, err := ingestFile(ctx, repo, filePath, apiToken)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest repository: %w", err)
	}

	// Check for context cancellation after ingestion
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled after ingestion: %w", err)
	}

	// Step 2: Rank the candidates
	return New(config).Analyze(ctx, codeCtx, candidates)
}

// ingestFile loads the target file and its change history, and fetches
// externally proposed candidates if the platform and token allow it
// Supports both local paths and remote URLs
func ingestFile(ctx context.Context, repo, filePath, token string) (*patch.CodeContext, []patch.Candidate, error) {
	// Detect platform from URL
	platform, owner, repoName := DetectPlatform(repo)

	// Try to open as local repository first
	gitRepo, err := git.OpenRepository(repo)
	if err != nil {
		// If local open fails, try cloning from remote URL
		gitRepo, err = git.CloneRepository(repo)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open or clone repository '%s': %w", repo, err)
		}
	}

	// Load the file with a bounded history window
	history, err := git.LoadFileHistory(gitRepo, filePath, 20)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load history for '%s': %w", filePath, err)
	}

	codeCtx := git.BuildContext(history)

	// Enrich with platform-proposed candidates if token provided
	var candidates []patch.Candidate
	if token != "" && owner != "" && repoName != "" {
		candidates, err = fetchCandidates(ctx, platform, token, owner, repoName, filePath)
		if err != nil {
			// Log error but don't fail - generated candidates still work
			fmt.Printf("Warning: failed to fetch candidates from %s: %v\n", platform, err)
		}
	}

	return codeCtx, candidates, nil
}

// fetchCandidates dispatches to a platform-specific candidate source
func fetchCandidates(ctx context.Context, platform adapter.SourcePlatform, token, owner, repo, filePath string) ([]patch.Candidate, error) {
	var source adapter.CandidateSource

	switch platform {
	case adapter.PlatformGitHub:
		source = adapter.NewGitHubAdapter()
	// ? This is where we would implement other platforms
	default:
		return nil, nil
	}

	candidates, err := source.FetchCandidates(ctx, token, owner, repo, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	return candidates, nil
}
