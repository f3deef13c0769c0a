// Package waveform records simulation signal changes to the FST (Fast
// Signal Trace) binary format used by GTKWave: a compact, block-structured
// format with GZip-compressed hierarchy and ZLib-compressed value-change
// data, in place of the much larger plaintext VCD format.
package waveform

import "github.com/sarchlab/aionhdl/fourval"

// Recorder is the interface the simulation kernel drives every time a
// signal changes value. A kernel with no recorder attached simply never
// calls one.
type Recorder interface {
	// RegisterSignal declares a signal that will later be recorded,
	// returning an error if id is registered twice.
	RegisterSignal(id int, name string, width int) error

	// BeginScope opens a hierarchy scope (a module instance); every
	// RegisterSignal call until the matching EndScope nests under it.
	BeginScope(name string) error

	// EndScope closes the innermost open scope.
	EndScope() error

	// RecordChange records that signal id took on value at timeFS. Calls
	// for a given signal must arrive in non-decreasing time order.
	RecordChange(timeFS uint64, id int, value fourval.Vec) error

	// Finalize writes the complete FST file. No further RecordChange
	// calls are valid afterwards.
	Finalize() error
}
