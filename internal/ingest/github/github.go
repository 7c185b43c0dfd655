// Package github fetches open pull requests so their patches can be offered
// to the ranking engine as externally proposed candidates.
package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v77/github"
)

// NewClient creates a GitHub API client with authentication
// token: GitHub personal access token
func NewClient(token string) *github.Client {
	return github.NewClient(nil).WithAuthToken(token)
}

// ListOpenPullRequests fetches all open pull requests with their changed
// files, paging through the API until exhausted.
func ListOpenPullRequests(ctx context.Context, client *github.Client, owner, repo string) ([]PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 50},
	}

	var prs []PullRequest
	for {
		page, resp, err := client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		for _, ghPR := range page {
			pr := ParsePullRequest(ghPR)

			files, err := listPullRequestFiles(ctx, client, owner, repo, pr.Number)
			if err != nil {
				// A PR whose files cannot be listed is skipped, not fatal
				continue
			}
			pr.Files = files

			prs = append(prs, *pr)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return prs, nil
}

// listPullRequestFiles fetches the changed files and patch text for one PR
func listPullRequestFiles(ctx context.Context, client *github.Client, owner, repo string, number int) ([]PRFile, error) {
	opts := &github.ListOptions{PerPage: 100}

	var files []PRFile
	for {
		page, resp, err := client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list files for PR #%d: %w", number, err)
		}

		for _, f := range page {
			files = append(files, PRFile{
				Path:      f.GetFilename(),
				Status:    f.GetStatus(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Patch:     f.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}

// ParsePullRequest converts a go-github PullRequest to our PullRequest struct
func ParsePullRequest(ghPR *github.PullRequest) *PullRequest {
	pr := &PullRequest{
		ID:           ghPR.GetID(),
		Number:       ghPR.GetNumber(),
		Title:        ghPR.GetTitle(),
		Description:  ghPR.GetBody(),
		State:        ghPR.GetState(),
		CreatedAt:    ghPR.GetCreatedAt().Time,
		UpdatedAt:    ghPR.GetUpdatedAt().Time,
		Draft:        ghPR.GetDraft(),
		Additions:    ghPR.GetAdditions(),
		Deletions:    ghPR.GetDeletions(),
		ChangedFiles: ghPR.GetChangedFiles(),
		HTMLURL:      ghPR.GetHTMLURL(),
	}

	if user := ghPR.GetUser(); user != nil {
		pr.Author = user.GetLogin()
	}

	for _, label := range ghPR.Labels {
		if label != nil {
			pr.Labels = append(pr.Labels, label.GetName())
		}
	}

	if mergedAt := ghPR.GetMergedAt(); !mergedAt.IsZero() {
		t := mergedAt.Time
		pr.MergedAt = &t
	}

	return pr
}
