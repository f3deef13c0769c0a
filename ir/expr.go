package ir

import (
	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/fourval"
)

// ExprID is a handle into a Module's expression arena.
type ExprID int

// ExprKind enumerates the shapes an Expr node can take.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprSignal
	ExprUnary
	ExprBinary
	ExprTernary
	ExprConcat
	ExprRepeat
	ExprIndex
	ExprSlice
	ExprFuncCall
)

// UnaryOp enumerates the unary operators a Verilog/SV/VHDL expression can
// lower to.
type UnaryOp uint8

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
	UnaryReduceAnd
	UnaryReduceOr
	UnaryReduceXor
	UnaryReduceNand
	UnaryReduceNor
	UnaryReduceXnor
)

// BinaryOp enumerates the binary operators a Verilog/SV/VHDL expression can
// lower to.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinPow
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinAShr
	BinEq
	BinNeq
	BinCaseEq
	BinCaseNeq
	BinLt
	BinLe
	BinGt
	BinGe
	BinLogicalAnd
	BinLogicalOr
)

// Expr is one node of a module's expression tree. Expressions are
// immutable once built: an ExprID never changes what it points to.
type Expr struct {
	Kind ExprKind

	// ExprLiteral
	Literal fourval.Vec

	// ExprSignal
	Signal SignalID

	// ExprUnary
	UnaryOp  UnaryOp
	Operand  ExprID

	// ExprBinary
	BinOp BinaryOp
	Lhs   ExprID
	Rhs   ExprID

	// ExprTernary
	Cond, WhenTrue, WhenFalse ExprID

	// ExprConcat / ExprRepeat
	Parts []ExprID
	Count ExprID

	// ExprIndex / ExprSlice
	Base     ExprID
	High, Low ExprID

	// ExprFuncCall
	FuncName string
	Args     []ExprID

	Span common.Span
}

// SignalRefKind distinguishes the shapes an assignment target can take.
type SignalRefKind uint8

const (
	RefSignal SignalRefKind = iota
	RefSlice
	RefConcat
)

// SignalRef is an l-value: something a Statement's Assign can drive.
// Constant references never appear as a SignalRef — driving a constant is
// rejected during lowering.
type SignalRef struct {
	Kind SignalRefKind

	// RefSignal
	Signal SignalID

	// RefSlice
	Base      SignalID
	High, Low ExprID

	// RefConcat
	Parts []SignalRef

	Span common.Span
}
