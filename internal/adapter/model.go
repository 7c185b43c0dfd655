package adapter

import (
	"context"

	"github.com/helix-tools/patchrank/internal/patch"
)

// SourcePlatform represents the origin platform of external candidates
type SourcePlatform string

const (
	PlatformGitHub SourcePlatform = "github"
	PlatformLocal  SourcePlatform = "local"
)

// CandidateSource defines the interface for fetching externally proposed
// patch candidates for a file from a hosting platform
type CandidateSource interface {
	// GetPlatform returns the source platform identifier
	GetPlatform() SourcePlatform

	// FetchCandidates fetches open proposals touching the given file and
	// converts them into the engine's candidate model
	FetchCandidates(ctx context.Context, token, owner, repo, filePath string) ([]patch.Candidate, error)
}
