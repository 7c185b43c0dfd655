package github

import "time"

// PullRequest represents the pull request data the candidate pipeline needs:
// identity, the declared intent, and the per-file patch text.
type PullRequest struct {
	ID           int64      `json:"id"`
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	State        string     `json:"state"`
	Author       string     `json:"author"`
	Labels       []string   `json:"labels"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	MergedAt     *time.Time `json:"merged_at,omitempty"`
	Draft        bool       `json:"draft"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	ChangedFiles int        `json:"changed_files"`
	HTMLURL      string     `json:"html_url"`
	Files        []PRFile   `json:"files"`
}

// PRFile represents one file's change within a pull request
type PRFile struct {
	Path      string `json:"path"`
	Status    string `json:"status"` // "added", "modified", "removed", "renamed"
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// TouchesPath reports whether the pull request changes the given file
func (pr *PullRequest) TouchesPath(path string) bool {
	for _, f := range pr.Files {
		if f.Path == path {
			return true
		}
	}
	return false
}

// PatchFor returns the diff text for one file in the pull request
func (pr *PullRequest) PatchFor(path string) string {
	for _, f := range pr.Files {
		if f.Path == path {
			return f.Patch
		}
	}
	return ""
}
