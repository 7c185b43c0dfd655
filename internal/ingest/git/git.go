// Package git builds code contexts from Git repositories: the file content
// at HEAD plus the recent diff hunks that touched it.
package git

import (
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/memory"

	"github.com/helix-tools/patchrank/internal/patch"
)

// OpenRepository opens a Git repository from a local path
func OpenRepository(path string) (*gogit.Repository, error) {
	return gogit.PlainOpen(path)
}

// CloneRepository clones a Git repository to memory
func CloneRepository(url string) (*gogit.Repository, error) {
	return gogit.Clone(memory.NewStorage(), nil, &gogit.CloneOptions{
		URL: url,
	})
}

// ParseAuthor converts a go-git Signature to Author
func ParseAuthor(sig object.Signature) Author {
	return Author{
		Name:  sig.Name,
		Email: sig.Email,
		When:  sig.When,
	}
}

// LoadFileHistory reads the file content at HEAD and the most recent commits
// that touched it. maxChanges bounds the history depth (0 = 10 commits).
func LoadFileHistory(repo *gogit.Repository, filePath string, maxChanges int) (*FileHistory, error) {
	if maxChanges <= 0 {
		maxChanges = 10
	}

	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	headCommit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD commit: %w", err)
	}

	file, err := headCommit.File(filePath)
	if err != nil {
		return nil, fmt.Errorf("file %q not found at HEAD: %w", filePath, err)
	}
	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", filePath, err)
	}

	changes, err := parseFileChanges(repo, ref.Hash().String(), filePath, maxChanges)
	if err != nil {
		return nil, err
	}

	return &FileHistory{
		FilePath: filePath,
		Content:  content,
		HeadHash: ref.Hash().String(),
		Changes:  changes,
	}, nil
}

// parseFileChanges walks the log for commits touching the file and extracts
// per-commit diff text for it
func parseFileChanges(repo *gogit.Repository, fromHash, filePath string, maxChanges int) ([]FileChange, error) {
	commitIter, err := repo.Log(&gogit.LogOptions{
		FileName: &filePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get log for %q: %w", filePath, err)
	}

	changes := make([]FileChange, 0, maxChanges)

	err = commitIter.ForEach(func(c *object.Commit) error {
		if len(changes) >= maxChanges {
			return fmt.Errorf("max changes reached")
		}

		change, err := parseFileChange(c, filePath)
		if err != nil {
			// Skip commits whose diff cannot be computed rather than
			// failing the whole history
			return nil
		}
		if change != nil {
			changes = append(changes, *change)
		}
		return nil
	})

	// "max changes reached" is not a real error
	if err != nil && err.Error() != "max changes reached" {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	return changes, nil
}

// parseFileChange extracts the file's diff in one commit, or nil when the
// commit did not modify it
func parseFileChange(commit *object.Commit, filePath string) (*FileChange, error) {
	subject := strings.TrimSpace(strings.SplitN(commit.Message, "\n", 2)[0])

	change := &FileChange{
		CommitHash:  commit.Hash.String(),
		ShortHash:   commit.Hash.String()[:8],
		Author:      ParseAuthor(commit.Author),
		Subject:     subject,
		CommittedAt: commit.Committer.When,
	}

	parent, err := commit.Parents().Next()
	if err != nil {
		// Initial commit: whole file counts as added
		if file, ferr := commit.File(filePath); ferr == nil {
			content, _ := file.Contents()
			change.Additions = strings.Count(content, "\n") + 1
			change.Patch = content
		}
		return change, nil
	}

	diff, err := parent.Patch(commit)
	if err != nil {
		return nil, fmt.Errorf("failed to get patch: %w", err)
	}

	for _, filePatch := range diff.FilePatches() {
		from, to := filePatch.Files()
		if !matchesPath(from, filePath) && !matchesPath(to, filePath) {
			continue
		}

		var patchText strings.Builder
		for _, chunk := range filePatch.Chunks() {
			content := chunk.Content()
			switch chunk.Type() {
			case 1: // Added
				change.Additions += strings.Count(content, "\n")
				writePrefixed(&patchText, content, "+")
			case 2: // Deleted
				change.Deletions += strings.Count(content, "\n")
				writePrefixed(&patchText, content, "-")
			}
		}
		change.Patch = patchText.String()
		return change, nil
	}

	return nil, nil
}

func matchesPath(f interface{ Path() string }, filePath string) bool {
	return f != nil && f.Path() == filePath
}

func writePrefixed(b *strings.Builder, content, prefix string) {
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// BuildContext converts a file history into the engine's input contract
func BuildContext(history *FileHistory) *patch.CodeContext {
	hunks := make([]patch.DiffHunk, 0, len(history.Changes))
	for _, change := range history.Changes {
		hunks = append(hunks, patch.DiffHunk{
			FilePath:  history.FilePath,
			Additions: change.Additions,
			Deletions: change.Deletions,
			Body:      change.Patch,
		})
	}

	return &patch.CodeContext{
		FilePath:  history.FilePath,
		Source:    history.Content,
		Hunks:     hunks,
		FetchedAt: time.Now(),
	}
}
