package lower

import (
	"github.com/sarchlab/aionhdl/ast"
	"github.com/sarchlab/aionhdl/ir"
)

var unaryOpTable = map[ast.UnaryOp]ir.UnaryOp{
	ast.UnaryMinus:     ir.UnaryNeg,
	ast.UnaryNot:       ir.UnaryNot,
	ast.UnaryReduceAnd: ir.UnaryReduceAnd,
	ast.UnaryReduceOr:  ir.UnaryReduceOr,
	ast.UnaryReduceXor: ir.UnaryReduceXor,
}

var binaryOpTable = map[ast.BinaryOp]ir.BinaryOp{
	ast.BinAdd:        ir.BinAdd,
	ast.BinSub:        ir.BinSub,
	ast.BinMul:        ir.BinMul,
	ast.BinDiv:        ir.BinDiv,
	ast.BinMod:        ir.BinMod,
	ast.BinPow:        ir.BinPow,
	ast.BinAnd:        ir.BinAnd,
	ast.BinOr:         ir.BinOr,
	ast.BinXor:        ir.BinXor,
	ast.BinShl:        ir.BinShl,
	ast.BinShr:        ir.BinShr,
	ast.BinEq:         ir.BinEq,
	ast.BinNeq:        ir.BinNeq,
	ast.BinLt:         ir.BinLt,
	ast.BinLe:         ir.BinLe,
	ast.BinGt:         ir.BinGt,
	ast.BinGe:         ir.BinGe,
	ast.BinLogicalAnd: ir.BinLogicalAnd,
	ast.BinLogicalOr:  ir.BinLogicalOr,
}

// LowerExpr lowers a surface-syntax expression into the module under
// construction, returning the handle of the resulting ir.Expr node.
// Identifiers resolve against signals already declared in ctx; an
// unresolved identifier emits a diagnostic and lowers to an all-X poison
// literal of width 1 so the caller can keep going.
func LowerExpr(ctx *Context, d Dialect, e *ast.Expr) ir.ExprID {
	if e == nil {
		return poison(ctx, "nil expression")
	}

	switch e.Kind {
	case ast.ExprLiteral:
		return d.LowerLiteral(ctx, e.LiteralText, e.Span)

	case ast.ExprIdent:
		name := ctx.Interner.Resolve(e.Name)
		sig, ok := ctx.LookupSignal(name)
		if !ok {
			ctx.Sink.Error("E301", "unresolved identifier `"+name+"`", e.Span)
			return poison(ctx, name)
		}
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprSignal, Signal: sig, Span: e.Span})

	case ast.ExprScopedIdent:
		name := ctx.Interner.Resolve(e.Name)
		sig, ok := ctx.LookupSignal(name)
		if !ok {
			ctx.Sink.Error("E301", "unresolved scoped identifier `"+name+"`", e.Span)
			return poison(ctx, name)
		}
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprSignal, Signal: sig, Span: e.Span})

	case ast.ExprUnary:
		op, ok := unaryOpTable[e.UnaryOp]
		if !ok {
			ctx.Sink.Error("E302", "unsupported unary operator", e.Span)
			return poison(ctx, "unary")
		}
		operand := LowerExpr(ctx, d, e.Operand)
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprUnary, UnaryOp: op, Operand: operand, Span: e.Span})

	case ast.ExprBinary:
		op, ok := binaryOpTable[e.BinOp]
		if !ok {
			ctx.Sink.Error("E302", "unsupported binary operator", e.Span)
			return poison(ctx, "binary")
		}
		lhs := LowerExpr(ctx, d, e.Lhs)
		rhs := LowerExpr(ctx, d, e.Rhs)
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprBinary, BinOp: op, Lhs: lhs, Rhs: rhs, Span: e.Span})

	case ast.ExprTernary:
		cond := LowerExpr(ctx, d, e.Cond)
		t := LowerExpr(ctx, d, e.Then)
		f := LowerExpr(ctx, d, e.Else)
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprTernary, Cond: cond, WhenTrue: t, WhenFalse: f, Span: e.Span})

	case ast.ExprConcat:
		parts := make([]ir.ExprID, len(e.Parts))
		for i, p := range e.Parts {
			parts[i] = LowerExpr(ctx, d, p)
		}
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprConcat, Parts: parts, Span: e.Span})

	case ast.ExprReplicate:
		count := LowerExpr(ctx, d, e.Count)
		val := LowerExpr(ctx, d, e.Value)
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprRepeat, Count: count, Parts: []ir.ExprID{val}, Span: e.Span})

	case ast.ExprIndex:
		base := LowerExpr(ctx, d, e.Base)
		idx := LowerExpr(ctx, d, e.High)
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprIndex, Base: base, High: idx, Low: idx, Span: e.Span})

	case ast.ExprSlice:
		base := LowerExpr(ctx, d, e.Base)
		high := LowerExpr(ctx, d, e.High)
		low := LowerExpr(ctx, d, e.Low)
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprSlice, Base: base, High: high, Low: low, Span: e.Span})

	case ast.ExprSystemCall:
		name := ctx.Interner.Resolve(e.CallName)
		args := make([]ir.ExprID, len(e.Args))
		for i, a := range e.Args {
			args[i] = LowerExpr(ctx, d, a)
		}
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprFuncCall, FuncName: name, Args: args, Span: e.Span})

	case ast.ExprParen:
		return LowerExpr(ctx, d, e.Inner)

	default:
		ctx.Sink.Error("E302", "unsupported expression form", e.Span)
		return poison(ctx, "expr")
	}
}

// LowerLValue lowers a surface-syntax assignment target into a SignalRef.
// Only plain identifiers, bit/part-selects, and concatenations of those
// are valid l-values; anything else is a diagnostic.
func LowerLValue(ctx *Context, d Dialect, e *ast.Expr) ir.SignalRef {
	switch e.Kind {
	case ast.ExprIdent:
		name := ctx.Interner.Resolve(e.Name)
		sig, ok := ctx.LookupSignal(name)
		if !ok {
			ctx.Sink.Error("E301", "unresolved identifier `"+name+"`", e.Span)
			return ir.SignalRef{Span: e.Span}
		}
		return ir.SignalRef{Kind: ir.RefSignal, Signal: sig, Span: e.Span}

	case ast.ExprSlice:
		base := LowerLValue(ctx, d, e.Base)
		high := LowerExpr(ctx, d, e.High)
		low := LowerExpr(ctx, d, e.Low)
		return ir.SignalRef{Kind: ir.RefSlice, Base: base.Signal, High: high, Low: low, Span: e.Span}

	case ast.ExprIndex:
		base := LowerLValue(ctx, d, e.Base)
		idx := LowerExpr(ctx, d, e.High)
		return ir.SignalRef{Kind: ir.RefSlice, Base: base.Signal, High: idx, Low: idx, Span: e.Span}

	case ast.ExprConcat:
		parts := make([]ir.SignalRef, len(e.Parts))
		for i, p := range e.Parts {
			parts[i] = LowerLValue(ctx, d, p)
		}
		return ir.SignalRef{Kind: ir.RefConcat, Parts: parts, Span: e.Span}

	default:
		ctx.Sink.Error("E303", "invalid assignment target", e.Span)
		return ir.SignalRef{Span: e.Span}
	}
}

// poison records e as an unresolvable construct and lowers it to a
// 1-bit all-X literal so lowering can continue rather than abort on the
// first error.
func poison(ctx *Context, _ string) ir.ExprID {
	return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprLiteral, Literal: poisonVec()})
}
