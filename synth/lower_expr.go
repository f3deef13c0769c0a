package synth

import (
	"github.com/sarchlab/aionhdl/fourval"
	"github.com/sarchlab/aionhdl/ir"
)

// lowerExpr walks an expression tree from the source (behavioural) module
// and emits the cells that compute it into the output netlist, returning
// the SignalID carrying the result.
func lowerExpr(ctx *lowerCtx, exprID ir.ExprID) ir.SignalID {
	e := ctx.src.Exprs.Get(exprID)
	switch e.Kind {
	case ir.ExprLiteral:
		width := e.Literal.Width()
		out := newWire(ctx, width, ir.SignalWire)
		addCell(ctx, "const", ir.CellConst, nil, []ir.SignalID{out}, literalParams(e.Literal))
		return out

	case ir.ExprSignal:
		return e.Signal

	case ir.ExprUnary:
		return lowerUnary(ctx, e)

	case ir.ExprBinary:
		return lowerBinary(ctx, e)

	case ir.ExprTernary:
		cond := lowerExpr(ctx, e.Cond)
		tVal := lowerExpr(ctx, e.WhenTrue)
		fVal := lowerExpr(ctx, e.WhenFalse)
		width := ctx.types.BitWidth(ctx.out.Signals.Get(tVal).Type)
		out := newWire(ctx, width, ir.SignalWire)
		addCell(ctx, "mux", ir.CellMux, []ir.SignalID{cond, tVal, fVal}, []ir.SignalID{out}, nil)
		return out

	case ir.ExprConcat:
		inputs := make([]ir.SignalID, len(e.Parts))
		total := 0
		for i, p := range e.Parts {
			inputs[i] = lowerExpr(ctx, p)
			total += ctx.types.BitWidth(ctx.out.Signals.Get(inputs[i]).Type)
		}
		out := newWire(ctx, total, ir.SignalWire)
		addCell(ctx, "concat", ir.CellConcat, inputs, []ir.SignalID{out}, nil)
		return out

	case ir.ExprRepeat:
		count, ok := constIntFromExpr(ctx.src, e.Count)
		if !ok {
			// No synthesizable meaning without a static repeat count.
			input := lowerExpr(ctx, e.Parts[0])
			out := newWire(ctx, 1, ir.SignalWire)
			addBlackBox(ctx, []ir.SignalID{input}, []ir.SignalID{out}, "unsynthesizable-dynamic-repeat")
			return out
		}
		input := lowerExpr(ctx, e.Parts[0])
		innerWidth := ctx.types.BitWidth(ctx.out.Signals.Get(input).Type)
		out := newWire(ctx, innerWidth*count, ir.SignalWire)
		addCell(ctx, "repeat", ir.CellRepeat, []ir.SignalID{input}, []ir.SignalID{out}, []int64{int64(count)})
		return out

	case ir.ExprIndex:
		return lowerSlice(ctx, e.Base, e.High, e.High)

	case ir.ExprSlice:
		return lowerSlice(ctx, e.Base, e.High, e.Low)

	case ir.ExprFuncCall:
		// Function calls have no synthesizable meaning in this cell
		// library; stub to a constant 0, same shape as an unresolved
		// elaboration value.
		out := newWire(ctx, 1, ir.SignalWire)
		addCell(ctx, "func_stub", ir.CellConst, nil, []ir.SignalID{out}, []int64{0})
		return out

	default:
		out := newWire(ctx, 1, ir.SignalWire)
		addBlackBox(ctx, nil, []ir.SignalID{out}, "unsynthesizable-expr")
		return out
	}
}

func lowerSlice(ctx *lowerCtx, base ir.SignalID, highExpr, lowExpr ir.ExprID) ir.SignalID {
	high, hok := constIntFromExpr(ctx.src, highExpr)
	low, lok := constIntFromExpr(ctx.src, lowExpr)
	if !hok || !lok {
		hSig := lowerExpr(ctx, highExpr)
		lSig := lowerExpr(ctx, lowExpr)
		out := newWire(ctx, 1, ir.SignalWire)
		addBlackBox(ctx, []ir.SignalID{base, hSig, lSig}, []ir.SignalID{out}, "unsynthesizable-dynamic-slice")
		return out
	}
	return sliceSignal(ctx, base, high, low)
}

func lowerUnary(ctx *lowerCtx, e ir.Expr) ir.SignalID {
	input := lowerExpr(ctx, e.Operand)
	width := ctx.types.BitWidth(ctx.out.Signals.Get(input).Type)

	switch e.UnaryOp {
	case ir.UnaryNot:
		out := newWire(ctx, width, ir.SignalWire)
		addCell(ctx, "not", ir.CellNot, []ir.SignalID{input}, []ir.SignalID{out}, nil)
		return out

	case ir.UnaryNeg:
		zero := newConstZero(ctx, width)
		out := newWire(ctx, width, ir.SignalWire)
		addCell(ctx, "neg", ir.CellSub, []ir.SignalID{zero, input}, []ir.SignalID{out}, nil)
		return out

	case ir.UnaryReduceAnd, ir.UnaryReduceOr, ir.UnaryReduceXor:
		out := newWire(ctx, 1, ir.SignalWire)
		addCell(ctx, "reduce", reduceCellKind(e.UnaryOp), []ir.SignalID{input}, []ir.SignalID{out}, nil)
		return out

	case ir.UnaryReduceNand, ir.UnaryReduceNor, ir.UnaryReduceXnor:
		reduced := newWire(ctx, 1, ir.SignalWire)
		addCell(ctx, "reduce", reduceCellKind(complementOf(e.UnaryOp)), []ir.SignalID{input}, []ir.SignalID{reduced}, nil)
		out := newWire(ctx, 1, ir.SignalWire)
		addCell(ctx, "reduce_inv", ir.CellNot, []ir.SignalID{reduced}, []ir.SignalID{out}, nil)
		return out

	default:
		out := newWire(ctx, width, ir.SignalWire)
		addBlackBox(ctx, []ir.SignalID{input}, []ir.SignalID{out}, "unsynthesizable-unary-op")
		return out
	}
}

func reduceCellKind(op ir.UnaryOp) ir.CellKind {
	switch op {
	case ir.UnaryReduceAnd:
		return ir.CellAnd
	case ir.UnaryReduceXor:
		return ir.CellXor
	default:
		return ir.CellOr
	}
}

func complementOf(op ir.UnaryOp) ir.UnaryOp {
	switch op {
	case ir.UnaryReduceNand:
		return ir.UnaryReduceAnd
	case ir.UnaryReduceXnor:
		return ir.UnaryReduceXor
	default:
		return ir.UnaryReduceOr
	}
}

func lowerBinary(ctx *lowerCtx, e ir.Expr) ir.SignalID {
	left := lowerExpr(ctx, e.Lhs)
	right := lowerExpr(ctx, e.Rhs)
	width := ctx.types.BitWidth(ctx.out.Signals.Get(left).Type)
	if rw := ctx.types.BitWidth(ctx.out.Signals.Get(right).Type); rw > width {
		width = rw
	}

	switch e.BinOp {
	case ir.BinLogicalAnd, ir.BinLogicalOr:
		la := newWire(ctx, 1, ir.SignalWire)
		lb := newWire(ctx, 1, ir.SignalWire)
		addCell(ctx, "logic_red_a", ir.CellOr, []ir.SignalID{left}, []ir.SignalID{la}, nil)
		addCell(ctx, "logic_red_b", ir.CellOr, []ir.SignalID{right}, []ir.SignalID{lb}, nil)
		gate := ir.CellAnd
		if e.BinOp == ir.BinLogicalOr {
			gate = ir.CellOr
		}
		out := newWire(ctx, 1, ir.SignalWire)
		addCell(ctx, "logic_comb", gate, []ir.SignalID{la, lb}, []ir.SignalID{out}, nil)
		return out

	case ir.BinDiv, ir.BinMod, ir.BinPow, ir.BinAShr:
		out := newWire(ctx, width, ir.SignalWire)
		addBlackBox(ctx, []ir.SignalID{left, right}, []ir.SignalID{out}, "unsynthesizable-"+binOpTag(e.BinOp))
		return out

	case ir.BinNeq, ir.BinCaseNeq:
		eqOut := newWire(ctx, 1, ir.SignalWire)
		addCell(ctx, "eq", ir.CellEq, []ir.SignalID{left, right}, []ir.SignalID{eqOut}, []int64{int64(width)})
		out := newWire(ctx, 1, ir.SignalWire)
		addCell(ctx, "ne_inv", ir.CellNot, []ir.SignalID{eqOut}, []ir.SignalID{out}, nil)
		return out
	}

	kind, params, ok := directBinaryCell(e.BinOp, width)
	if !ok {
		out := newWire(ctx, width, ir.SignalWire)
		addBlackBox(ctx, []ir.SignalID{left, right}, []ir.SignalID{out}, "unsynthesizable-"+binOpTag(e.BinOp))
		return out
	}

	outWidth := width
	if kind == ir.CellEq || kind == ir.CellLt {
		outWidth = 1
	}
	out := newWire(ctx, outWidth, ir.SignalWire)
	addCell(ctx, "binop", kind, []ir.SignalID{left, right}, []ir.SignalID{out}, params)
	return out
}

// directBinaryCell maps a BinaryOp onto a single cell with no follow-up
// inversion. Gt/Ge/Le all reuse the Lt cell verbatim — the comparison
// subset this cell library covers is Eq and Lt only.
func directBinaryCell(op ir.BinaryOp, width int) (ir.CellKind, []int64, bool) {
	switch op {
	case ir.BinAdd:
		return ir.CellAdd, []int64{int64(width)}, true
	case ir.BinSub:
		return ir.CellSub, []int64{int64(width)}, true
	case ir.BinMul:
		return ir.CellMul, []int64{int64(width)}, true
	case ir.BinAnd:
		return ir.CellAnd, []int64{int64(width)}, true
	case ir.BinOr:
		return ir.CellOr, []int64{int64(width)}, true
	case ir.BinXor:
		return ir.CellXor, []int64{int64(width)}, true
	case ir.BinShl:
		return ir.CellShl, []int64{int64(width)}, true
	case ir.BinShr:
		return ir.CellShr, []int64{int64(width)}, true
	case ir.BinEq, ir.BinCaseEq:
		return ir.CellEq, []int64{int64(width)}, true
	case ir.BinLt, ir.BinLe, ir.BinGt, ir.BinGe:
		return ir.CellLt, []int64{int64(width)}, true
	default:
		return 0, nil, false
	}
}

func binOpTag(op ir.BinaryOp) string {
	switch op {
	case ir.BinDiv:
		return "division"
	case ir.BinMod:
		return "modulo"
	case ir.BinPow:
		return "exponentiation"
	case ir.BinAShr:
		return "arithmetic-shift"
	default:
		return "binary-op"
	}
}

// literalParams encodes a literal's bits one Logic code (0-3) per int64,
// least-significant bit first, matching CellConst's Params convention.
func literalParams(v fourval.Vec) []int64 {
	w := v.Width()
	out := make([]int64, w)
	for i := 0; i < w; i++ {
		out[i] = int64(v.Bit(i))
	}
	return out
}
