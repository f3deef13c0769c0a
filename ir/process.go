package ir

import "github.com/sarchlab/aionhdl/common"

// ProcessID is a handle into a Module's process arena.
type ProcessID int

// ProcessKind classifies a process by how the simulation kernel and the
// synthesis lowerer schedule and synthesize it.
type ProcessKind uint8

const (
	// ProcessCombinational has a sensitivity list covering every signal it
	// reads (`always @*` / VHDL process with the full read set); lowers to
	// pure combinational cells.
	ProcessCombinational ProcessKind = iota
	// ProcessSequential is edge-sensitive on one or more clock/reset
	// signals; lowers to Dff cells.
	ProcessSequential
	// ProcessLatched has a partial sensitivity list and at least one
	// incompletely-assigned branch; lowers to Latch cells, with a
	// diagnostic warning.
	ProcessLatched
	// ProcessInitial runs once at simulation start and contributes nothing
	// to a synthesized netlist (a diagnostic warning is emitted instead).
	ProcessInitial
)

// Edge is the triggering edge of one sensitivity-list entry.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgePosedge
	EdgeNegedge
	EdgeBoth
)

// SensitivityEntry is one signal/edge pair in a process's sensitivity
// list.
type SensitivityEntry struct {
	Signal SignalID
	Edge   Edge
}

// Process is one behavioural block: an `always`/`always_ff`/`always_comb`
// block, an `initial` block, or a VHDL `process`.
type Process struct {
	Name        string
	Kind        ProcessKind
	Body        StmtID
	Sensitivity []SensitivityEntry

	Span common.Span
}
