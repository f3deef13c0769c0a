package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/aionhdl/common"
)

// ModuleID is a handle into a Design's module arena.
type ModuleID int

// Param is one elaboration-time parameter/generic declared by a module.
// Default is nil for parameters that must be overridden by every
// instantiation (VHDL generics with no default). LowerModule records only
// Name and leaves Default nil for every parameter.
type Param struct {
	Name    string
	Default *ExprID
}

// ConcurrentAssign is a continuous assignment at module scope (Verilog
// `assign`, VHDL concurrent signal assignment). Unlike a process body
// statement, it has no sensitivity list of its own: the kernel derives one
// from the expression's read set.
type ConcurrentAssign struct {
	Target SignalRef
	Value  ExprID
	Span   common.Span
}

// Module is one elaborated or pre-elaboration module/entity definition:
// its own signal, cell, process, and expression/statement arenas, plus its
// port list and parameters.
//
// A child module never holds a back-pointer to its parent or to any
// instantiating Cell — instantiation is recorded one-directionally, via
// the CellInstance cell in the *parent*, so a Module can be shared
// (instance-cached) across many call sites without aliasing concerns.
type Module struct {
	Name   string
	Params []Param
	Ports  []SignalID // subset of Signals with Kind == SignalPort, in declaration order

	Signals   Arena[SignalID, Signal]
	Cells     Arena[CellID, Cell]
	Processes Arena[ProcessID, Process]
	Exprs     Arena[ExprID, Expr]
	Stmts     Arena[StmtID, Statement]

	Concurrent []ConcurrentAssign

	// IsBlackBox marks a module that elaboration could not resolve (an
	// unknown module name, or a cycle caught by the in-progress stack).
	// It has no ports and empty arenas; the instantiating CellInstance in
	// the parent keeps its own Inputs and Outputs.
	IsBlackBox bool

	Span common.Span
}

// NewModule creates an empty module definition.
func NewModule(name string, span common.Span) *Module {
	return &Module{Name: name, Span: span}
}

// ContentHash returns a stable digest of m's structural content (ports,
// signals, cells, processes — not its name). The elaborator does not use
// it: its instance cache is keyed by module name plus the normalised
// override list.
func (m *Module) ContentHash() [32]byte {
	h := sha256.New()
	writeU64(h, uint64(len(m.Ports)))
	for _, p := range m.Ports {
		writeU64(h, uint64(p))
	}
	writeU64(h, uint64(m.Signals.Len()))
	for _, s := range m.Signals.Items() {
		fmt.Fprintf(h, "%s|%d|%d|%d;", s.Name, s.Kind, s.Type, s.Dir)
	}
	writeU64(h, uint64(m.Cells.Len()))
	for _, c := range m.Cells.Items() {
		fmt.Fprintf(h, "%s|%d|%v|%v;", c.Name, c.Kind, c.Inputs, c.Outputs)
	}
	writeU64(h, uint64(m.Processes.Len()))
	for _, p := range m.Processes.Items() {
		fmt.Fprintf(h, "%s|%d|%d;", p.Name, p.Kind, p.Body)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeU64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}
