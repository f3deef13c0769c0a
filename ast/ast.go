// Package ast defines the minimal surface syntax tree that the three
// dialect front ends (Verilog-2005, SystemVerilog-2017, VHDL-2008) are
// expected to hand to the lower package. Parsing itself is out of scope —
// this package only fixes the shape that a real parser would produce, so
// lower/elaborate/consteval have something concrete to consume and test
// against.
package ast

import "github.com/sarchlab/aionhdl/common"

// Dialect identifies which of the three source languages an AST node came
// from. A handful of lowering and const-eval decisions are dialect
// specific (VHDL integer literals have no Verilog-style sizing syntax;
// SystemVerilog adds always_comb/always_ff and package-scoped names).
type Dialect uint8

const (
	DialectVerilog Dialect = iota
	DialectSystemVerilog
	DialectVHDL
)

// ExprKind enumerates the surface-syntax expression shapes lower and
// consteval accept as input, before anything has been resolved to an
// ir.ExprID.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprIdent
	ExprScopedIdent
	ExprUnary
	ExprBinary
	ExprTernary
	ExprConcat
	ExprReplicate
	ExprIndex
	ExprSlice
	ExprSystemCall
	ExprParen
)

// UnaryOp mirrors the unary operators the three front ends can produce.
type UnaryOp uint8

const (
	UnaryMinus UnaryOp = iota
	UnaryNot
	UnaryLogicalNot
	UnaryReduceAnd
	UnaryReduceOr
	UnaryReduceXor
)

// BinaryOp mirrors the binary operators the three front ends can produce.
// consteval's constant folder switches on this enum directly instead of
// matching raw operator strings.
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
	BinEq
	BinNeq
	BinLt
	BinLe
	BinGt
	BinGe
	BinLogicalAnd
	BinLogicalOr
)

// Expr is a surface-syntax expression node, tagged by Kind. Only the
// fields relevant to Kind are populated.
type Expr struct {
	Kind ExprKind
	Span common.Span

	// ExprLiteral: raw source text, e.g. "4'b1010", "42", "X\"FF\"".
	LiteralText string

	// ExprIdent / ExprScopedIdent
	Name  common.Ident
	Scope common.Ident // ExprScopedIdent only

	// ExprUnary
	UnaryOp UnaryOp
	Operand *Expr

	// ExprBinary
	BinOp BinaryOp
	Lhs   *Expr
	Rhs   *Expr

	// ExprTernary
	Cond, Then, Else *Expr

	// ExprConcat
	Parts []*Expr

	// ExprReplicate
	Count *Expr
	Value *Expr

	// ExprIndex / ExprSlice
	Base      *Expr
	High, Low *Expr

	// ExprSystemCall: name includes the leading '$' (e.g. "$clog2").
	CallName common.Ident
	Args     []*Expr

	// ExprParen
	Inner *Expr
}

// StmtKind enumerates surface-syntax statement shapes.
type StmtKind uint8

const (
	StmtBlockingAssign StmtKind = iota
	StmtNonBlockingAssign
	StmtConcurrentAssign
	StmtIf
	StmtCase
	StmtBlock
	StmtInitial
	StmtDisplay
	StmtFinish
)

// Stmt is a surface-syntax statement node.
type Stmt struct {
	Kind StmtKind
	Span common.Span

	Target *Expr
	Value  *Expr

	Cond       *Expr
	Then, Else *Stmt

	Selector *Expr
	CaseArms []CaseArm

	Body []*Stmt

	Format string
	Args   []*Expr
}

// CaseArm is one branch of a surface-syntax case statement. An empty
// Values slice denotes the default arm.
type CaseArm struct {
	Values []*Expr
	Body   *Stmt
}

// SensItem is one sensitivity-list entry in a surface-syntax process.
type SensItem struct {
	Edge EdgeKind
	Name common.Ident
}

// EdgeKind mirrors ir.Edge at the surface-syntax level.
type EdgeKind uint8

const (
	EdgeNone EdgeKind = iota
	EdgePosedge
	EdgeNegedge
	EdgeBoth
)

// Process is a surface-syntax behavioural block (always/always_comb/
// always_ff/initial, or a VHDL process).
type Process struct {
	Name        string
	Sensitivity []SensItem
	Body        *Stmt
	IsInitial   bool
	Span        common.Span
}

// Port is a surface-syntax module port declaration.
type Port struct {
	Name      string
	Dir       PortDir
	Width     *Expr // nil means implicit 1-bit
	Signed    bool
	Span      common.Span
}

// PortDir mirrors ir.PortDirection at the surface-syntax level.
type PortDir uint8

const (
	DirInput PortDir = iota
	DirOutput
	DirInout
)

// ParamDecl is a surface-syntax parameter/generic declaration.
type ParamDecl struct {
	Name    string
	Default *Expr // nil for generics with no default
	Span    common.Span
}

// Module is a surface-syntax module/entity+architecture definition, the
// unit lower.Lower takes as input.
type Module struct {
	Dialect    Dialect
	Name       string
	Params     []ParamDecl
	Ports      []Port
	Concurrent []Stmt // StmtConcurrentAssign entries
	Processes  []Process
	Span       common.Span
}
