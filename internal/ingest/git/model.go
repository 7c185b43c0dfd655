package git

import "time"

// Author represents Git author/committer information
type Author struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	When  time.Time `json:"when"`
}

// FileChange represents one commit's change to the file under analysis
type FileChange struct {
	CommitHash  string    `json:"commit_hash"`
	ShortHash   string    `json:"short_hash"` // First 8 chars for display
	Author      Author    `json:"author"`
	Subject     string    `json:"subject"`
	CommittedAt time.Time `json:"committed_at"`
	Additions   int       `json:"additions"`
	Deletions   int       `json:"deletions"`
	Patch       string    `json:"patch,omitempty"` // Unified diff text for this file
}

// FileHistory binds a file's current content to its recent change records
type FileHistory struct {
	FilePath string       `json:"file_path"`
	Content  string       `json:"content"`
	HeadHash string       `json:"head_hash"`
	Changes  []FileChange `json:"changes"`
}
