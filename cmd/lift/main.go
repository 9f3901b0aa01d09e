// Package main implements the lift CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lift/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "lift",
	Short: "Loop-invariant code motion optimizer",
	Long:  `lift reads textual IR, hoists loop-invariant code, and writes the optimized program back out`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(optCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
