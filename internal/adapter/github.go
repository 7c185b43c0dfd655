package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	githubmodel "github.com/helix-tools/patchrank/internal/ingest/github"
	"github.com/helix-tools/patchrank/internal/patch"
)

// GitHubAdapter implements the CandidateSource interface for GitHub:
// open pull requests touching the analyzed file become candidates.
type GitHubAdapter struct{}

// NewGitHubAdapter creates a new GitHub adapter instance
func NewGitHubAdapter() *GitHubAdapter {
	return &GitHubAdapter{}
}

// GetPlatform returns the GitHub platform identifier
func (a *GitHubAdapter) GetPlatform() SourcePlatform {
	return PlatformGitHub
}

// FetchCandidates fetches open pull requests and converts those touching
// filePath into patch candidates
func (a *GitHubAdapter) FetchCandidates(ctx context.Context, token, owner, repo, filePath string) ([]patch.Candidate, error) {
	client := githubmodel.NewClient(token)

	prs, err := githubmodel.ListOpenPullRequests(ctx, client, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull requests: %w", err)
	}

	var candidates []patch.Candidate
	for _, pr := range prs {
		if pr.Draft || !pr.TouchesPath(filePath) {
			continue
		}
		candidates = append(candidates, ConvertPullRequest(pr, filePath))
	}

	return candidates, nil
}

var addedSymbolPattern = regexp.MustCompile(`(?m)^\+\s*(?:func|def|function)\s+(\w+)`)

// ConvertPullRequest converts one pull request into a candidate for the
// given file. The patch type and risk are classified from the PR's title
// and labels.
func ConvertPullRequest(pr githubmodel.PullRequest, filePath string) patch.Candidate {
	body := pr.PatchFor(filePath)

	return patch.Candidate{
		ID:          fmt.Sprintf("pr-%d", pr.Number),
		Body:        body,
		Type:        classifyPullRequest(pr),
		Description: pr.Title,
		RiskScore:   pullRequestRisk(pr),
		Symbols:     patchSymbols(body),
		Origin:      pr.HTMLURL,
	}
}

// classifyPullRequest maps PR labels and title onto the patch taxonomy
func classifyPullRequest(pr githubmodel.PullRequest) patch.Type {
	text := strings.ToLower(pr.Title)
	for _, label := range pr.Labels {
		text += " " + strings.ToLower(label)
	}

	switch {
	case strings.Contains(text, "security") || strings.Contains(text, "cve"):
		return patch.TypeSecurity
	case strings.Contains(text, "fix") || strings.Contains(text, "bug"):
		return patch.TypeBugfix
	case strings.Contains(text, "perf") || strings.Contains(text, "optimi"):
		return patch.TypePerformance
	case strings.Contains(text, "refactor"):
		return patch.TypeRefactor
	default:
		return patch.TypeMaintainability
	}
}

// pullRequestRisk derives a heuristic risk score from the PR's size
func pullRequestRisk(pr githubmodel.PullRequest) float64 {
	churn := pr.Additions + pr.Deletions
	risk := 0.1 + float64(churn)/1000.0 + float64(pr.ChangedFiles)*0.02
	if risk > 1 {
		risk = 1
	}
	return risk
}

// patchSymbols extracts function names declared in the added lines of a diff
func patchSymbols(body string) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, m := range addedSymbolPattern.FindAllStringSubmatch(body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			symbols = append(symbols, m[1])
		}
	}
	return symbols
}
