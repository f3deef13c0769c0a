package lower

import (
	"github.com/sarchlab/aionhdl/ast"
	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/consteval"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/ir"
)

// verilogDialect implements Dialect for the Verilog-2005 subset: literals
// follow the classic sized-literal grammar with no '? don't-care' display
// operator beyond what consteval already folds as a digit.
type verilogDialect struct{}

// Verilog is the Dialect value LowerVerilogModule uses.
var Verilog Dialect = verilogDialect{}

func (verilogDialect) LowerLiteral(ctx *Context, text string, span common.Span) ir.ExprID {
	return lowerVerilogFamilyLiteral(ctx, text, span)
}

// LowerVerilogModule lowers a Verilog-2005 ast.Module into a fresh
// ir.Module.
func LowerVerilogModule(interner *common.Interner, types *ir.TypeDB, sink *diagnostics.Sink, m *ast.Module) *ir.Module {
	ctx := NewContext(interner, types, sink, m.Name, m.Span)
	LowerModule(ctx, m)
	lowerBody(ctx, Verilog, m)
	return ctx.Module
}

// lowerVerilogFamilyLiteral is shared by Verilog and SystemVerilog: both
// dialects use the same sized-literal grammar, so their literal lowering
// is identical once the raw text is in hand. It parses the literal's
// value via consteval.ParseVerilogLiteral and its width either from the
// explicit size prefix or, for an unsized literal, from
// fourval.MinWidthForValue.
func lowerVerilogFamilyLiteral(ctx *Context, text string, span common.Span) ir.ExprID {
	value, ok := consteval.ParseVerilogLiteral(text)
	if !ok {
		ctx.Sink.Error("E305", "malformed literal `"+text+"`", span)
		return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprLiteral, Literal: poisonVec(), Span: span})
	}

	width := literalWidth(text)
	var vec = vecFromSigned(value, width)
	return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprLiteral, Literal: vec, Span: span})
}
