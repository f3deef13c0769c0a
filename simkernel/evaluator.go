package simkernel

import (
	"fmt"
	"strings"

	"github.com/sarchlab/aionhdl/fourval"
	"github.com/sarchlab/aionhdl/ir"
)

// PendingUpdate is a deferred signal write collected while executing a
// process body. Updates are applied at the next delta cycle rather than
// immediately, so a process's reads within one execution always see the
// values from before that execution started (the standard non-blocking-
// assignment semantics, applied uniformly here since the kernel commits
// all writes — blocking or not — at delta boundaries; blocking-vs-
// non-blocking only changes whether a later statement in the *same*
// process body observes the write immediately, which execStatement
// handles by also updating a local shadow copy for AssignBlocking).
type PendingUpdate struct {
	Target SimSignalID
	Value  fourval.Vec
	// HasRange marks a partial (bit-slice) update: only bits [Low, High]
	// of Value are meaningful, and they must be merged into the target's
	// current value bit-for-bit rather than replacing it outright.
	HasRange  bool
	High, Low int
}

// ExecResult reports how a statement's execution affected control flow.
type ExecResult uint8

const (
	ExecContinue ExecResult = iota
	ExecFinish
)

// EvalContext holds everything expression/statement evaluation needs to
// resolve an ir.SignalID to its live value: the flattened signal table,
// this process's ir.SignalID -> SimSignalID map, and the shared type
// database.
type EvalContext struct {
	Signals   *ir.Arena[SimSignalID, SimSignalState]
	SignalMap map[ir.SignalID]SimSignalID
	Types     *ir.TypeDB
	Module    *ir.Module

	// blocking tracks same-execution writes from AssignBlocking
	// statements so later reads in the same process body observe them
	// immediately, without waiting for the next delta cycle.
	blocking map[SimSignalID]fourval.Vec
}

// newEvalContext wraps the shared context fields so each process
// execution gets its own blocking-write shadow map.
func newEvalContext(signals *ir.Arena[SimSignalID, SimSignalState], signalMap map[ir.SignalID]SimSignalID, types *ir.TypeDB, module *ir.Module) *EvalContext {
	return &EvalContext{Signals: signals, SignalMap: signalMap, Types: types, Module: module, blocking: make(map[SimSignalID]fourval.Vec)}
}

func (ctx *EvalContext) valueOf(sim SimSignalID) fourval.Vec {
	if v, ok := ctx.blocking[sim]; ok {
		return v
	}
	return ctx.Signals.Get(sim).Value
}

// EvalExpr evaluates expr to a four-valued vector under ctx.
func EvalExpr(ctx *EvalContext, exprID ir.ExprID) (fourval.Vec, error) {
	e := ctx.Module.Exprs.Get(exprID)
	switch e.Kind {
	case ir.ExprLiteral:
		return e.Literal, nil

	case ir.ExprSignal:
		sim, ok := ctx.SignalMap[e.Signal]
		if !ok {
			return fourval.AllX(1), nil
		}
		return ctx.valueOf(sim), nil

	case ir.ExprUnary:
		operand, err := EvalExpr(ctx, e.Operand)
		if err != nil {
			return fourval.Vec{}, err
		}
		return evalUnary(e.UnaryOp, operand), nil

	case ir.ExprBinary:
		lhs, err := EvalExpr(ctx, e.Lhs)
		if err != nil {
			return fourval.Vec{}, err
		}
		rhs, err := EvalExpr(ctx, e.Rhs)
		if err != nil {
			return fourval.Vec{}, err
		}
		return evalBinary(e.BinOp, lhs, rhs)

	case ir.ExprTernary:
		cond, err := EvalExpr(ctx, e.Cond)
		if err != nil {
			return fourval.Vec{}, err
		}
		if !cond.IsFullyKnown() {
			t, err := EvalExpr(ctx, e.WhenTrue)
			if err != nil {
				return fourval.Vec{}, err
			}
			return fourval.AllX(t.Width()), nil
		}
		v, _ := cond.ToU64()
		if v != 0 {
			return EvalExpr(ctx, e.WhenTrue)
		}
		return EvalExpr(ctx, e.WhenFalse)

	case ir.ExprConcat:
		parts := make([]fourval.Vec, len(e.Parts))
		for i, p := range e.Parts {
			v, err := EvalExpr(ctx, p)
			if err != nil {
				return fourval.Vec{}, err
			}
			parts[i] = v
		}
		return fourval.Concat(parts...), nil

	case ir.ExprRepeat:
		countVec, err := EvalExpr(ctx, e.Count)
		if err != nil {
			return fourval.Vec{}, err
		}
		n, _ := countVec.ToU64()
		val, err := EvalExpr(ctx, e.Parts[0])
		if err != nil {
			return fourval.Vec{}, err
		}
		return fourval.Repeat(val, int(n)), nil

	case ir.ExprIndex, ir.ExprSlice:
		base, err := EvalExpr(ctx, e.Base)
		if err != nil {
			return fourval.Vec{}, err
		}
		highVec, err := EvalExpr(ctx, e.High)
		if err != nil {
			return fourval.Vec{}, err
		}
		lowVec, err := EvalExpr(ctx, e.Low)
		if err != nil {
			return fourval.Vec{}, err
		}
		high, _ := highVec.ToU64()
		low, _ := lowVec.ToU64()
		if int(high) >= base.Width() || int(low) > int(high) {
			return fourval.AllX(1), nil
		}
		return base.Slice(int(high), int(low)), nil

	case ir.ExprFuncCall:
		return evalFuncCall(ctx, e)

	default:
		return fourval.AllX(1), nil
	}
}

func evalUnary(op ir.UnaryOp, v fourval.Vec) fourval.Vec {
	switch op {
	case ir.UnaryNot:
		return v.Not()
	case ir.UnaryNeg:
		n, ok := v.ToU64()
		if !ok {
			return fourval.AllX(v.Width())
		}
		return fourval.FromU64(v.Width(), uint64(-int64(n)))
	case ir.UnaryReduceAnd:
		return reduce(v, fourval.And, fourval.One)
	case ir.UnaryReduceOr:
		return reduce(v, fourval.Or, fourval.Zero)
	case ir.UnaryReduceXor:
		return reduce(v, fourval.Xor, fourval.Zero)
	case ir.UnaryReduceNand:
		return fourval.New(1).WithBit(0, fourval.Not(reduce(v, fourval.And, fourval.One).Bit(0)))
	case ir.UnaryReduceNor:
		return fourval.New(1).WithBit(0, fourval.Not(reduce(v, fourval.Or, fourval.Zero).Bit(0)))
	case ir.UnaryReduceXnor:
		return fourval.New(1).WithBit(0, fourval.Not(reduce(v, fourval.Xor, fourval.Zero).Bit(0)))
	default:
		return fourval.AllX(1)
	}
}

func reduce(v fourval.Vec, op func(a, b fourval.Logic) fourval.Logic, seed fourval.Logic) fourval.Vec {
	acc := seed
	for i := 0; i < v.Width(); i++ {
		acc = op(acc, v.Bit(i))
	}
	return fourval.New(1).WithBit(0, acc)
}

func evalBinary(op ir.BinaryOp, lhs, rhs fourval.Vec) (fourval.Vec, error) {
	switch op {
	case ir.BinAnd:
		return lhs.And(rhs), nil
	case ir.BinOr:
		return lhs.Or(rhs), nil
	case ir.BinXor:
		return lhs.Xor(rhs), nil
	case ir.BinCaseEq:
		return boolVec(lhs.Equal(rhs)), nil
	case ir.BinCaseNeq:
		return boolVec(!lhs.Equal(rhs)), nil
	case ir.BinEq, ir.BinNeq:
		return cmpEq(op, lhs, rhs), nil
	case ir.BinLogicalAnd:
		return boolVec(truthy(lhs) && truthy(rhs)), nil
	case ir.BinLogicalOr:
		return boolVec(truthy(lhs) || truthy(rhs)), nil
	}

	l, lok := lhs.ToU64()
	r, rok := rhs.ToU64()
	width := lhs.Width()
	if rhs.Width() > width {
		width = rhs.Width()
	}
	if !lok || !rok {
		return fourval.AllX(width), nil
	}

	switch op {
	case ir.BinAdd:
		return fourval.FromU64(width, l+r), nil
	case ir.BinSub:
		return fourval.FromU64(width, l-r), nil
	case ir.BinMul:
		return fourval.FromU64(width, l*r), nil
	case ir.BinDiv:
		if r == 0 {
			return fourval.Vec{}, ErrDivisionByZero
		}
		return fourval.FromU64(width, l/r), nil
	case ir.BinMod:
		if r == 0 {
			return fourval.Vec{}, ErrDivisionByZero
		}
		return fourval.FromU64(width, l%r), nil
	case ir.BinShl:
		return fourval.FromU64(width, l<<r), nil
	case ir.BinShr:
		return fourval.FromU64(width, l>>r), nil
	case ir.BinAShr:
		return fourval.FromU64(width, uint64(int64(l)>>r)), nil
	case ir.BinLt:
		return boolVec(l < r), nil
	case ir.BinLe:
		return boolVec(l <= r), nil
	case ir.BinGt:
		return boolVec(l > r), nil
	case ir.BinGe:
		return boolVec(l >= r), nil
	default:
		return fourval.AllX(width), nil
	}
}

func boolVec(b bool) fourval.Vec {
	if b {
		return fourval.FromU64(1, 1)
	}
	return fourval.FromU64(1, 0)
}

func truthy(v fourval.Vec) bool {
	n, ok := v.ToU64()
	return ok && n != 0
}

// cmpEq implements Eq/Neq (logical ==/!=, as opposed to the case-equality
// ===/!== operators): any X/Z bit on either side makes the comparison
// unknown, 1-bit X, rather than a definite false. Widths are matched by
// zero-extension before comparing, mirroring the original evaluator's
// match_widths/zero_extend helpers.
func cmpEq(op ir.BinaryOp, lhs, rhs fourval.Vec) fourval.Vec {
	width := lhs.Width()
	if rhs.Width() > width {
		width = rhs.Width()
	}
	l, lok := zeroExtend(lhs, width).ToU64()
	r, rok := zeroExtend(rhs, width).ToU64()
	if !lok || !rok {
		return fourval.AllX(1)
	}
	eq := l == r
	if op == ir.BinNeq {
		eq = !eq
	}
	return boolVec(eq)
}

// zeroExtend pads v with leading zero bits up to targetWidth, leaving it
// unchanged if it is already that wide.
func zeroExtend(v fourval.Vec, targetWidth int) fourval.Vec {
	if v.Width() == targetWidth {
		return v
	}
	out := fourval.New(targetWidth)
	for i := 0; i < v.Width(); i++ {
		out = out.WithBit(i, v.Bit(i))
	}
	return out
}

func evalFuncCall(ctx *EvalContext, e ir.Expr) (fourval.Vec, error) {
	switch e.FuncName {
	case "$clog2":
		if len(e.Args) != 1 {
			return fourval.AllX(1), nil
		}
		arg, err := EvalExpr(ctx, e.Args[0])
		if err != nil {
			return fourval.Vec{}, err
		}
		n, ok := arg.ToU64()
		if !ok {
			return fourval.AllX(32), nil
		}
		result := clog2(int64(n))
		return fourval.FromU64(32, uint64(result)), nil
	default:
		return fourval.AllX(1), nil
	}
}

func clog2(n int64) int64 {
	if n <= 1 {
		return 0
	}
	var result int64
	val := n - 1
	for val > 0 {
		result++
		val >>= 1
	}
	return result
}

// EvalSignalRef resolves an l-value to the SimSignalID (and, for a slice,
// the bit range) that a write should target. Concatenated targets return
// one entry per part, MSB-first, mirroring the target's syntactic order.
func EvalSignalRef(ctx *EvalContext, ref ir.SignalRef) ([]writeTarget, error) {
	switch ref.Kind {
	case ir.RefSignal:
		sim, ok := ctx.SignalMap[ref.Signal]
		if !ok {
			return nil, nil
		}
		return []writeTarget{{signal: sim}}, nil

	case ir.RefSlice:
		sim, ok := ctx.SignalMap[ref.Base]
		if !ok {
			return nil, nil
		}
		highVec, err := EvalExpr(ctx, ref.High)
		if err != nil {
			return nil, err
		}
		lowVec, err := EvalExpr(ctx, ref.Low)
		if err != nil {
			return nil, err
		}
		high, _ := highVec.ToU64()
		low, _ := lowVec.ToU64()
		return []writeTarget{{signal: sim, hasRange: true, high: int(high), low: int(low)}}, nil

	case ir.RefConcat:
		var out []writeTarget
		for _, p := range ref.Parts {
			targets, err := EvalSignalRef(ctx, p)
			if err != nil {
				return nil, err
			}
			out = append(out, targets...)
		}
		return out, nil

	default:
		return nil, nil
	}
}

type writeTarget struct {
	signal   SimSignalID
	hasRange bool
	high, low int
}

// ExecStatement executes a statement tree, collecting deferred writes
// into pending and $display output into display. Blocking assignments
// additionally update ctx's same-execution shadow map so later reads in
// the same body observe them immediately.
func ExecStatement(ctx *EvalContext, stmtID ir.StmtID, pending *[]PendingUpdate, display *[]string) (ExecResult, error) {
	s := ctx.Module.Stmts.Get(stmtID)
	switch s.Kind {
	case ir.StmtNop:
		return ExecContinue, nil

	case ir.StmtAssign:
		value, err := EvalExpr(ctx, s.Value)
		if err != nil {
			return ExecContinue, err
		}
		targets, err := EvalSignalRef(ctx, s.Target)
		if err != nil {
			return ExecContinue, err
		}
		applyWrite(ctx, targets, value, s.AssignKind, pending)
		return ExecContinue, nil

	case ir.StmtIf:
		cond, err := EvalExpr(ctx, s.Cond)
		if err != nil {
			return ExecContinue, err
		}
		if truthy(cond) {
			return ExecStatement(ctx, s.Then, pending, display)
		}
		if s.HasElse {
			return ExecStatement(ctx, s.Else, pending, display)
		}
		return ExecContinue, nil

	case ir.StmtCase:
		selector, err := EvalExpr(ctx, s.Selector)
		if err != nil {
			return ExecContinue, err
		}
		for _, arm := range s.Arms {
			if len(arm.Values) == 0 {
				continue // default arm handled last
			}
			for _, v := range arm.Values {
				val, err := EvalExpr(ctx, v)
				if err != nil {
					return ExecContinue, err
				}
				if val.Equal(selector) {
					return ExecStatement(ctx, arm.Body, pending, display)
				}
			}
		}
		for _, arm := range s.Arms {
			if len(arm.Values) == 0 {
				return ExecStatement(ctx, arm.Body, pending, display)
			}
		}
		return ExecContinue, nil

	case ir.StmtBlock:
		for _, inner := range s.Stmts {
			result, err := ExecStatement(ctx, inner, pending, display)
			if err != nil {
				return ExecContinue, err
			}
			if result == ExecFinish {
				return ExecFinish, nil
			}
		}
		return ExecContinue, nil

	case ir.StmtDisplay:
		args := make([]fourval.Vec, len(s.Args))
		for i, a := range s.Args {
			v, err := EvalExpr(ctx, a)
			if err != nil {
				return ExecContinue, err
			}
			args[i] = v
		}
		*display = append(*display, FormatDisplay(s.Format, args))
		return ExecContinue, nil

	case ir.StmtAssertion:
		cond, err := EvalExpr(ctx, s.AssertCond)
		if err != nil {
			return ExecContinue, err
		}
		if !truthy(cond) {
			msg := "ASSERTION FAILED: " + s.AssertMsg
			*display = append(*display, msg)
		}
		return ExecContinue, nil

	case ir.StmtFinish:
		return ExecFinish, nil

	default:
		return ExecContinue, nil
	}
}

func applyWrite(ctx *EvalContext, targets []writeTarget, value fourval.Vec, kind ir.AssignKind, pending *[]PendingUpdate) {
	offset := 0
	for i := len(targets) - 1; i >= 0; i-- {
		t := targets[i]
		width := 1
		if t.hasRange {
			width = t.high - t.low + 1
		} else {
			width = ctx.Signals.Get(t.signal).Value.Width()
		}
		if offset+width > value.Width() {
			width = value.Width() - offset
		}
		if width <= 0 {
			continue
		}
		slice := value.Slice(offset+width-1, offset)
		offset += width

		if kind == ir.AssignBlocking {
			ctx.blocking[t.signal] = mergeWrite(ctx.valueOf(t.signal), slice, t)
		}
		update := PendingUpdate{Target: t.signal, Value: slice}
		if t.hasRange {
			update.HasRange = true
			update.High, update.Low = t.high, t.low
		}
		*pending = append(*pending, update)
	}
}

func mergeWrite(current, value fourval.Vec, t writeTarget) fourval.Vec {
	if !t.hasRange {
		return value
	}
	merged := current
	for i := 0; i < value.Width(); i++ {
		merged = merged.WithBit(t.low+i, value.Bit(i))
	}
	return merged
}

// FormatDisplay implements $display-style formatting: %d (decimal),
// %b (binary), %h/%x (hex), %% (literal percent). Unrecognised
// directives are copied through verbatim.
func FormatDisplay(format string, args []fourval.Vec) string {
	var out strings.Builder
	argIdx := 0
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 >= len(runes) {
			out.WriteRune(runes[i])
			continue
		}
		directive := runes[i+1]
		switch directive {
		case '%':
			out.WriteByte('%')
			i++
		case 'd', 'D':
			out.WriteString(formatArg(args, &argIdx, 10))
			i++
		case 'b', 'B':
			out.WriteString(formatArgBits(args, &argIdx))
			i++
		case 'h', 'H', 'x', 'X':
			out.WriteString(formatArg(args, &argIdx, 16))
			i++
		default:
			out.WriteRune(runes[i])
		}
	}
	return out.String()
}

func formatArg(args []fourval.Vec, idx *int, base int) string {
	if *idx >= len(args) {
		return "?"
	}
	v := args[*idx]
	*idx++
	n, ok := v.ToU64()
	if !ok {
		return "x"
	}
	return fmt.Sprintf(baseFmt(base), n)
}

func baseFmt(base int) string {
	switch base {
	case 16:
		return "%x"
	default:
		return "%d"
	}
}

func formatArgBits(args []fourval.Vec, idx *int) string {
	if *idx >= len(args) {
		return "?"
	}
	v := args[*idx]
	*idx++
	return v.String()
}
