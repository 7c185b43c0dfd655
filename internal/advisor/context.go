package advisor

// HistoricalPatch represents a similar patch found in the vector store,
// used for prompt assembly. It mirrors the structure from the index package
// but is defined here to avoid circular dependencies and keep the advisor
// package self-contained.
type HistoricalPatch struct {
	PatchID  string
	FilePath string
	Text     string
	Score    float32
}
