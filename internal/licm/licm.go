// Package licm implements loop-invariant code motion: loads and pure
// computations proven safe are moved out of loops into the loop
// preheader.
package licm

import (
	"lift/internal/analysis"
	"lift/internal/stats"
)

// Counter names, in the order they appear in the stats artifact.
const (
	StatFunctions     = "Functions"
	StatInstructions  = "Instructions"
	StatLoads         = "Loads"
	StatStores        = "Stores"
	StatNumLoops      = "NumLoops"
	StatLoopsWithCall = "NumLoopsWithCall"
	StatLoopsNoLoads  = "NumLoopsNoLoads"
	StatLoopsNoStores = "NumLoopsNoStores"
	StatBasic         = "LICMBasic"
	StatLoadHoist     = "LICMLoadHoist"
	StatNoPreheader   = "LICMNoPreheader"
)

// Pass is one LICM invocation over a module. A Pass carries its own
// counters and per-loop dedup state; create a fresh one per run.
type Pass struct {
	Stats *stats.Set

	// prevCallLoop and prevStoreLoop dedup the per-loop counters
	// across fixpoint reruns of the same loop.
	prevCallLoop  *analysis.Loop
	prevStoreLoop *analysis.Loop
}

// New returns a pass with all counters registered.
func New() *Pass {
	s := stats.NewSet()
	s.Register(
		StatFunctions,
		StatInstructions,
		StatLoads,
		StatStores,
		StatNumLoops,
		StatLoopsWithCall,
		StatLoopsNoLoads,
		StatLoopsNoStores,
		StatBasic,
		StatLoadHoist,
		StatNoPreheader,
	)
	return &Pass{Stats: s}
}
