package ir

import "github.com/sarchlab/aionhdl/common"

// StmtID is a handle into a Module's statement arena.
type StmtID int

// AssignKind distinguishes blocking from non-blocking assignment, which
// the simulation kernel and synthesis lowering treat very differently:
// non-blocking assignments batch into PendingUpdates and commit at the end
// of the current delta cycle, blocking assignments take effect
// immediately.
type AssignKind uint8

const (
	AssignBlocking AssignKind = iota
	AssignNonBlocking
)

// StmtKind enumerates the statement shapes a process body is built from.
type StmtKind uint8

const (
	StmtAssign StmtKind = iota
	StmtIf
	StmtCase
	StmtBlock
	StmtWait
	StmtDelay
	StmtForever
	StmtAssertion
	StmtDisplay
	StmtFinish
	StmtNop
)

// CaseArm pairs a set of match values (empty means "default") with a body.
type CaseArm struct {
	Values []ExprID
	Body   StmtID
}

// Statement is one node of a process body.
type Statement struct {
	Kind StmtKind

	// StmtAssign
	AssignKind AssignKind
	Target     SignalRef
	Value      ExprID

	// StmtIf
	Cond       ExprID
	Then, Else StmtID
	HasElse    bool

	// StmtCase
	Selector ExprID
	Arms     []CaseArm

	// StmtBlock
	Stmts []StmtID

	// StmtWait / StmtDelay
	WaitCond  ExprID
	DelayTime uint64

	// StmtForever
	Body StmtID

	// StmtAssertion
	AssertCond ExprID
	AssertMsg  string

	// StmtDisplay: Format is the raw format string (e.g. "%d %b\n"), Args
	// are evaluated and substituted left to right per %-directive.
	Format string
	Args   []ExprID

	Span common.Span
}
