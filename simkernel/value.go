package simkernel

import "github.com/sarchlab/aionhdl/fourval"

// SimSignalID is a flat signal handle within a running kernel, distinct
// from ir.SignalID. Only the top module is flattened, so each SimSignalID
// stands for one signal of the top module.
type SimSignalID int

// SimSignalState is one flattened signal's live simulation state.
type SimSignalState struct {
	Name     string
	Value    fourval.Vec
	Previous fourval.Vec
}

// SignalInfo is a lightweight summary of one flattened signal, returned by
// Kernel.AllSignals for listing/matching without exposing live state.
type SignalInfo struct {
	ID    SimSignalID
	Name  string
	Width int
}
