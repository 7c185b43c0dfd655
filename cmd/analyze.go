package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/helix-tools/patchrank/internal/engine"
	"github.com/helix-tools/patchrank/internal/orchestrator"
)

var (
	exportFile string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [repository] [file]",
	Short: "Rank candidate patches for a file and display the result",
	Long: `Analyze candidate patches for one file of a Git repository (local path or remote URL).

Each ranked patch shows:
- Rank and patch ID
- Patch type
- Success probability
- Normalized integration cost
- Combined score

Examples:
  patchrank analyze /path/to/local/repo internal/server/server.go
  patchrank analyze https://github.com/user/repo main.go
  patchrank analyze https://github.com/user/repo main.go --export report.json`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&exportFile, "export", "", "Export the report to a JSON file: --export <filename>")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	repo := args[0]
	filePath := args[1]
	ctx := context.Background()

	// Run the analysis
	report, err := orchestrator.AnalyzeFile(ctx, repo, filePath)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if len(report.Entries) == 0 {
		fmt.Println("No rankable patches for this file")
		return nil
	}

	// Handle export flag
	if exportFile != "" {
		return handleExport(report, exportFile)
	}

	// Default: output table
	return outputTable(report)
}

func handleExport(report *engine.OptimizationReport, filename string) error {
	// Create output file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	// Export the report as JSON
	if err := engine.ExportReport(report, "json", file); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("✓ Exported %d ranked patches to %s\n", len(report.Entries), filename)
	return nil
}

func outputTable(report *engine.OptimizationReport) error {
	// LipGloss signature purple/pink palette
	var (
		// Colors
		headerColor  = lipgloss.Color("#F780FF") // Bright pink/magenta
		patchColor   = lipgloss.Color("#BD93F9") // Purple
		numberColor  = lipgloss.Color("#FF79C6") // Pink
		typeColor    = lipgloss.Color("#E9E9F4") // Light purple/white
		borderColor  = lipgloss.Color("#6272A4") // Muted purple
		summaryColor = lipgloss.Color("#8BE9FD") // Cyan accent
	)

	// Column widths
	const (
		rankWidth  = 6
		idWidth    = 16
		typeWidth  = 18
		probWidth  = 8
		costWidth  = 8
		scoreWidth = 9
	)

	// Header style
	headerStyle := lipgloss.NewStyle().
		Foreground(headerColor).
		Bold(true).
		Padding(0, 1)

	// Border separator
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)

	// Print header
	headers := []string{
		headerStyle.Width(rankWidth).Render("RANK"),
		headerStyle.Width(idWidth).Render("PATCH"),
		headerStyle.Width(typeWidth).Render("TYPE"),
		headerStyle.Width(probWidth).Render("PROB"),
		headerStyle.Width(costWidth).Render("COST"),
		headerStyle.Width(scoreWidth).Render("SCORE"),
	}
	fmt.Println(strings.Join(headers, borderStyle.Render("│")))

	// Print separator line - create separator sections and join with ┼
	separatorParts := []string{
		strings.Repeat("─", rankWidth),
		strings.Repeat("─", idWidth),
		strings.Repeat("─", typeWidth),
		strings.Repeat("─", probWidth),
		strings.Repeat("─", costWidth),
		strings.Repeat("─", scoreWidth),
	}
	fmt.Println(borderStyle.Render(strings.Join(separatorParts, "┼")))

	// Print data rows - no alternating backgrounds
	for _, entry := range report.Entries {
		rankStyle := lipgloss.NewStyle().
			Foreground(numberColor).
			Padding(0, 1).
			Width(rankWidth).
			Align(lipgloss.Right)

		idStyle := lipgloss.NewStyle().
			Foreground(patchColor).
			Padding(0, 1).
			Width(idWidth)

		typeStyle := lipgloss.NewStyle().
			Foreground(typeColor).
			Padding(0, 1).
			Width(typeWidth)

		numStyle := lipgloss.NewStyle().
			Foreground(numberColor).
			Padding(0, 1).
			Width(probWidth).
			Align(lipgloss.Right)

		scoreStyle := lipgloss.NewStyle().
			Foreground(numberColor).
			Padding(0, 1).
			Width(scoreWidth).
			Align(lipgloss.Right)

		id := entry.Candidate.ID
		if entry.Candidate.ID == report.TopPickID {
			id = "★ " + id
		}

		cells := []string{
			rankStyle.Render(fmt.Sprintf("%d", entry.Score.Rank)),
			idStyle.Render(id),
			typeStyle.Render(string(entry.Candidate.Type)),
			numStyle.Render(fmt.Sprintf("%.2f", entry.Score.Probability)),
			numStyle.Width(costWidth).Render(fmt.Sprintf("%.2f", entry.Score.NormalizedCost)),
			scoreStyle.Render(fmt.Sprintf("%.3f", entry.Score.CombinedScore)),
		}
		fmt.Println(strings.Join(cells, borderStyle.Render("│")))
	}

	// Print summary
	fmt.Println()

	summaryStyle := lipgloss.NewStyle().
		Foreground(summaryColor).
		Italic(true)

	fmt.Println(summaryStyle.Render(report.Summary))

	if len(report.Excluded) > 0 {
		fmt.Println(summaryStyle.Render(
			fmt.Sprintf("%d candidates excluded from ranking", len(report.Excluded))))
	}
	if report.GreedyFallback {
		fmt.Println(summaryStyle.Render("Large candidate set: greedy ranking used, scores are approximate"))
	}

	return nil
}
