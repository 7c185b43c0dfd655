package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/helix-tools/patchrank/internal/advisor"
	"github.com/helix-tools/patchrank/internal/index"
	"github.com/helix-tools/patchrank/internal/orchestrator"
)

var (
	topK           int
	maxContextSize int
	remoteEmbedder bool
	verbose        bool
)

var adviseCmd = &cobra.Command{
	Use:   "advise [repository] [file]",
	Short: "Generate patch advice for a file using historical context",
	Long: `Rank candidate patches for a file and generate remediation advice.

This command:
1. Analyzes the file and ranks its candidate patches
2. Indexes the ranked patches into a vector store (Milvus)
3. Retrieves similar historical patches as context
4. Generates advice using an LLM (OpenAI)

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for the LLM (and embeddings with --remote-embedder)
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)

Examples:
  patchrank advise /path/to/repo internal/server/server.go
  patchrank advise https://github.com/user/repo main.go --topk 5
  patchrank advise . pkg/parser/parser.go --verbose`,
	Args: cobra.ExactArgs(2),
	RunE: runAdvise,
}

func init() {
	rootCmd.AddCommand(adviseCmd)
	adviseCmd.Flags().IntVar(&topK, "topk", 3, "Number of similar historical patches to retrieve for context")
	adviseCmd.Flags().IntVar(&maxContextSize, "max-context", 10, "Maximum number of historical patches in the prompt")
	adviseCmd.Flags().BoolVar(&remoteEmbedder, "remote-embedder", false, "Use the OpenAI embedding API instead of the local embedder")
	adviseCmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed progress")
}

func runAdvise(cmd *cobra.Command, args []string) error {
	repo := args[0]
	filePath := args[1]
	ctx := context.Background()

	// Check required environment variables
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	milvusAddr := os.Getenv("MILVUS_ADDRESS")
	if milvusAddr == "" {
		milvusAddr = "localhost:19530"
	}

	// Styling
	var (
		headerColor  = lipgloss.Color("#F780FF") // Bright pink
		targetColor  = lipgloss.Color("#8BE9FD") // Cyan
		answerColor  = lipgloss.Color("#E9E9F4") // Light purple/white
		contextColor = lipgloss.Color("#6272A4") // Muted purple
		errorColor   = lipgloss.Color("#FF5555") // Red
		successColor = lipgloss.Color("#50FA7B") // Green
	)

	headerStyle := lipgloss.NewStyle().
		Foreground(headerColor).
		Bold(true)

	targetStyle := lipgloss.NewStyle().
		Foreground(targetColor).
		Italic(true)

	answerStyle := lipgloss.NewStyle().
		Foreground(answerColor)

	contextStyle := lipgloss.NewStyle().
		Foreground(contextColor).
		Italic(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(successColor)

	// Print target
	fmt.Println()
	fmt.Println(headerStyle.Render("Target:"))
	fmt.Println(targetStyle.Render(fmt.Sprintf("%s in %s", filePath, repo)))
	fmt.Println()

	// Step 1: Analyze the file
	if verbose {
		fmt.Println(contextStyle.Render("→ Ranking candidate patches..."))
	}
	report, err := orchestrator.AnalyzeFile(ctx, repo, filePath)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	if len(report.Entries) == 0 {
		return fmt.Errorf("%s No rankable patches for this file", errorStyle.Render("Error:"))
	}

	if verbose {
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Ranked %d patches", len(report.Entries))))
	}

	// Step 2: Create advice pipeline
	if verbose {
		fmt.Println(contextStyle.Render("→ Initializing advice pipeline..."))
	}

	milvusConfig := index.DefaultMilvusConfig()
	milvusConfig.Address = milvusAddr

	config := orchestrator.PipelineConfig{
		TopK:              topK,
		MaxContextSize:    maxContextSize,
		UseLocalEmbedder:  !remoteEmbedder,
		EmbedderModel:     "text-embedding-3-large",
		EmbedderDimension: milvusConfig.Dimension,
		MilvusConfig:      milvusConfig,
		LLMConfig: advisor.LLMConfig{
			Model:       "gpt-4o",
			Temperature: 0.7,
			MaxTokens:   2000,
			APIKey:      apiKey,
		},
		IndexOptions: index.DefaultIndexOptions(),
	}

	pipeline, err := orchestrator.NewPipeline(ctx, config)
	if err != nil {
		return fmt.Errorf("%s Failed to create advice pipeline: %w", errorStyle.Render("Error:"), err)
	}
	defer pipeline.Close()

	if verbose {
		fmt.Println(successStyle.Render("✓ Advice pipeline initialized"))
	}

	// Step 3: Index the ranked patches
	if verbose {
		fmt.Println(contextStyle.Render("→ Indexing ranked patches..."))
	}
	if err := pipeline.IndexReport(ctx, report); err != nil {
		return fmt.Errorf("%s Failed to index report: %w", errorStyle.Render("Error:"), err)
	}

	if verbose {
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ Indexed %d patches", len(report.Entries))))
	}

	// Step 4: Generate advice with historical context
	if verbose {
		fmt.Println(contextStyle.Render("→ Retrieving similar patches and generating advice..."))
	}

	advice, err := pipeline.AdviseOnReport(ctx, report)
	if err != nil {
		return fmt.Errorf("%s Failed to generate advice: %w", errorStyle.Render("Error:"), err)
	}

	// Print advice
	fmt.Println(headerStyle.Render("Advice:"))
	fmt.Println()

	adviceText := strings.TrimSpace(advice.Text)
	fmt.Println(answerStyle.Render(adviceText))
	fmt.Println()

	return nil
}
