package lower

import (
	"github.com/sarchlab/aionhdl/ast"
	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/ir"
)

// svDialect implements Dialect for the SystemVerilog-2017 subset in
// scope. Literal lowering is identical to Verilog-2005 (same sized-
// literal grammar), and processes go through the same classifyProcess,
// which reads only the surface ast.Process's IsInitial/Sensitivity
// fields; always_comb and always_ff get no handling of their own.
type svDialect struct{}

// SystemVerilog is the Dialect value LowerSVModule uses.
var SystemVerilog Dialect = svDialect{}

func (svDialect) LowerLiteral(ctx *Context, text string, span common.Span) ir.ExprID {
	return lowerVerilogFamilyLiteral(ctx, text, span)
}

// LowerSVModule lowers a SystemVerilog-2017 ast.Module into a fresh
// ir.Module.
func LowerSVModule(interner *common.Interner, types *ir.TypeDB, sink *diagnostics.Sink, m *ast.Module) *ir.Module {
	ctx := NewContext(interner, types, sink, m.Name, m.Span)
	LowerModule(ctx, m)
	lowerBody(ctx, SystemVerilog, m)
	return ctx.Module
}
