package ir

import "github.com/sarchlab/aionhdl/common"

// SignalID is a handle into a Module's signal arena.
type SignalID int

// SignalKind distinguishes how a signal is driven and where it sits in a
// module's port list.
type SignalKind uint8

const (
	// SignalWire is driven by at most one continuous assignment or
	// combinational process and holds no state across delta cycles.
	SignalWire SignalKind = iota
	// SignalReg is driven by a sequential (clocked) process; retains its
	// value until the next active edge.
	SignalReg
	// SignalPort is an input, output, or inout at module scope.
	SignalPort
	// SignalConst is bound once at elaboration time and never reassigned.
	SignalConst
	// SignalLatch is driven by a latched process (no full sensitivity
	// list), transparent while its enable condition holds.
	SignalLatch
)

// PortDirection is only meaningful when Kind == SignalPort.
type PortDirection uint8

const (
	PortNone PortDirection = iota
	PortInput
	PortOutput
	PortInout
)

// Signal is a single named value slot within a Module: a net, register,
// port, constant, or latch output.
type Signal struct {
	Name string
	Type TypeID
	Kind SignalKind
	Dir  PortDirection

	// Initial, if non-nil, is the signal's elaboration-time initial value
	// (an 'initial'/'initial' assignment or a VHDL default expression).
	// Left nil for signals with no explicit initialiser.
	Initial *ExprID

	// ClockDomain names the clock signal this register/latch is
	// synchronous to, if known. Empty for wires, ports, and constants.
	ClockDomain string

	Span common.Span
}

// CellID is a handle into a Module's cell arena.
type CellID int

// CellKind enumerates the primitive operations a synthesized netlist is
// built from. Every non-BlackBox kind has a semantics fixed by this
// package; BlackBox defers meaning to metadata carried on the Cell.
type CellKind uint8

const (
	CellConst CellKind = iota
	CellNot
	CellAnd
	CellOr
	CellXor
	CellAdd
	CellSub
	CellMul
	CellEq
	CellLt
	CellShl
	CellShr
	CellMux
	CellDff
	CellLatch
	CellSlice
	CellConcat
	CellRepeat
	CellInstance
	CellBlackBox
)

// Cell is one node of a synthesized netlist: a primitive operation (or a
// sub-module instance, or an opaque black box) connected to input and
// output signals.
type Cell struct {
	Name string
	Kind CellKind

	// Inputs/Outputs name the signals this cell reads from and drives,
	// respectively, in an operation-specific order (e.g. CellMux is
	// [select, whenTrue, whenFalse] -> [out]).
	Inputs  []SignalID
	Outputs []SignalID

	// InstanceOf is the module this cell instantiates, when Kind ==
	// CellInstance. Resolved by the elaborator from InstanceModuleName;
	// zero until then.
	InstanceOf ModuleID

	// InstanceModuleName is the source-level module name a CellInstance
	// cell names before elaboration resolves it to an InstanceOf handle.
	InstanceModuleName string

	// InstanceOverrides carries the per-instantiation parameter overrides
	// (e.g. `#(.WIDTH(16))`) the elaborator binds against the
	// instantiated module's Params.
	InstanceOverrides ConstEnv

	// Params carries CellSlice's [high, low] bounds, CellRepeat's count,
	// or a black box's opaque attribute list, depending on Kind.
	Params []int64

	// BlackBoxTag names the unrecognised construct a CellBlackBox stands
	// in for (e.g. "unresolved-instance:foo", "unsynthesizable-division"),
	// used only for diagnostics and waveform annotation.
	BlackBoxTag string

	Span common.Span
}
