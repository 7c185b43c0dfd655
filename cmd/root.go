package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "patchrank",
	Short: "Patchrank - Patch optimization and ranking tool",
	Long: `Patchrank analyzes candidate patches for a file and ranks them.

It embeds each patch, detects code smells, estimates success probability
and integration cost, and presents the candidates as an ordered ranking
with a single recommended patch.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
