package main

import (
	"fmt"
	"io"

	"lift/internal/licm"
)

// printStatsTable writes the counter table in the order counters were
// registered, matching the .stats artifact.
func printStatsTable(w io.Writer, pass *licm.Pass) {
	fmt.Fprintln(w, "counters:")
	for _, name := range pass.Stats.Names() {
		fmt.Fprintf(w, "  %-20s %d\n", name, pass.Stats.Get(name))
	}
}
