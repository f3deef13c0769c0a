// Package lower translates a surface-syntax ast.Module, in any of the
// three supported dialects, into the shared ir.Module the rest of the
// toolchain operates on. The three dialects monomorphically lower into
// the same IR types rather than through a generic Lowerer[D] abstraction:
// each dialect's quirks (VHDL's literal syntax and edge built-ins, the
// Verilog/SystemVerilog sized-literal grammar) are
// handled by small dialect-specific functions that all bottom out in the
// same ir.Module construction helpers in this file.
package lower

import (
	"github.com/sarchlab/aionhdl/ast"
	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/consteval"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/ir"
)

// Context carries the shared state every dialect lowerer needs: the
// interner and type database the resulting IR indexes into, the
// diagnostic sink to report unsupported constructs to, and the module
// currently under construction.
type Context struct {
	Interner *common.Interner
	Types    *ir.TypeDB
	Sink     *diagnostics.Sink
	Module   *ir.Module

	// names maps a surface-syntax signal name to its allocated SignalID,
	// so later statements/processes can resolve identifiers declared
	// earlier in the same module.
	names map[string]ir.SignalID
}

// NewContext creates a lowering context targeting a fresh, empty module.
func NewContext(interner *common.Interner, types *ir.TypeDB, sink *diagnostics.Sink, moduleName string, span common.Span) *Context {
	return &Context{
		Interner: interner,
		Types:    types,
		Sink:     sink,
		Module:   ir.NewModule(moduleName, span),
		names:    make(map[string]ir.SignalID),
	}
}

// DeclareSignal allocates a new signal in the module under construction
// and records its name for later lookup.
func (c *Context) DeclareSignal(sig ir.Signal) ir.SignalID {
	id := c.Module.Signals.Add(sig)
	c.names[sig.Name] = id
	return id
}

// LookupSignal resolves a surface-syntax name to its SignalID. The bool
// result is false for an undeclared name (implicit net inference, a
// construct the Verilog/SV subsets in scope do not support, is reported
// by the caller as a diagnostic rather than silently creating a wire).
func (c *Context) LookupSignal(name string) (ir.SignalID, bool) {
	id, ok := c.names[name]
	return id, ok
}

// Dialect abstracts the one piece of per-dialect behaviour literal
// lowering needs: how to parse a raw literal's source text into a sized
// four-valued vector.
type Dialect interface {
	LowerLiteral(ctx *Context, text string, span common.Span) ir.ExprID
}

// LowerModule lowers m's ports and parameters into ctx's module — the
// part of module construction that is identical across all three
// dialects. Dialect-specific functions (LowerVerilogModule,
// LowerSVModule, LowerVHDLModule) call this first, then lower their
// dialect's statement/process/concurrent-assignment forms on top.
// Parameters are recorded by name only: their default expressions are not
// lowered, so every ir.Param.Default is nil.
func LowerModule(ctx *Context, m *ast.Module) {
	for _, p := range m.Params {
		ctx.Module.Params = append(ctx.Module.Params, ir.Param{Name: p.Name})
	}

	for _, port := range m.Ports {
		width := 1
		if port.Width != nil {
			if val, ok := evalWidth(ctx, port.Width, m.Dialect); ok {
				width = val
			}
		}
		typ := ctx.Types.BitVec(width, port.Signed)
		if width == 1 {
			typ = ctx.Types.LogicType()
		}
		id := ctx.DeclareSignal(ir.Signal{
			Name: port.Name,
			Type: typ,
			Kind: ir.SignalPort,
			Dir:  lowerDir(port.Dir),
			Span: port.Span,
		})
		ctx.Module.Ports = append(ctx.Module.Ports, id)
	}
}

func lowerDir(d ast.PortDir) ir.PortDirection {
	switch d {
	case ast.DirInput:
		return ir.PortInput
	case ast.DirOutput:
		return ir.PortOutput
	case ast.DirInout:
		return ir.PortInout
	default:
		return ir.PortNone
	}
}

func evalWidth(ctx *Context, expr *ast.Expr, dialect ast.Dialect) (int, bool) {
	val, ok := consteval.Eval(expr, dialect, ctx.Interner, consteval.Env{}, ctx.Sink)
	if !ok {
		return 0, false
	}
	n, ok := val.ToInt64()
	if !ok || n <= 0 {
		return 0, false
	}
	return int(n), true
}
