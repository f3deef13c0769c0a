package lower

import (
	"strings"

	"github.com/sarchlab/aionhdl/ast"
	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/ir"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// vhdlDialect implements Dialect for the VHDL-2008 subset in scope.
type vhdlDialect struct{}

// VHDL is the Dialect value LowerVHDLModule uses.
var VHDL Dialect = vhdlDialect{}

// titleCaser normalises a VHDL identifier to Title case before a
// case-insensitive allow-list lookup, using the same
// cases.Title(language.English) idiom as toTitleCase for matching
// direction names regardless of how the source spelled them (VHDL
// identifiers are themselves case-insensitive).
var titleCaser = cases.Title(language.English)

// titleCase title-cases each underscore-separated segment, so
// "rising_edge" and "RISING_EDGE" both become "Rising_Edge".
func titleCase(s string) string {
	parts := strings.Split(s, "_")
	for i := range parts {
		parts[i] = titleCaser.String(parts[i])
	}
	return strings.Join(parts, "_")
}

// vhdlBuiltins is the case-insensitive allow-list of VHDL built-in
// function names, looked up through isVHDLBuiltin. Expression lowering
// does not consult it: every system call, listed here or not, lowers to
// an ExprFuncCall.
var vhdlBuiltins = map[string]struct{}{
	"Rising_Edge":  {},
	"Falling_Edge": {},
	"To_Integer":   {},
	"Unsigned":     {},
	"Signed":       {},
	"Std_Logic_Vector": {},
	"Clog2":        {},
}

func isVHDLBuiltin(name string) bool {
	_, ok := vhdlBuiltins[titleCase(name)]
	return ok
}

func (vhdlDialect) LowerLiteral(ctx *Context, text string, span common.Span) ir.ExprID {
	vec, ok := parseVHDLLiteral(text)
	if !ok {
		ctx.Sink.Error("E305", "malformed literal `"+text+"`", span)
		vec = poisonVec()
	}
	return ctx.Module.Exprs.Add(ir.Expr{Kind: ir.ExprLiteral, Literal: vec, Span: span})
}

// LowerVHDLModule lowers a VHDL-2008 ast.Module into a fresh ir.Module.
// Edge detection is dialect specific: VHDL carries no posedge/negedge
// qualifier in its sensitivity list the way Verilog does — instead, a
// process reads clk unconditionally and calls rising_edge(clk)/
// falling_edge(clk) inside the body, so this lowerer scans each
// process's top-level `if` conditions for a recognised edge-detection
// call before handing the sensitivity list to LowerSensitivity.
func LowerVHDLModule(interner *common.Interner, types *ir.TypeDB, sink *diagnostics.Sink, m *ast.Module) *ir.Module {
	ctx := NewContext(interner, types, sink, m.Name, m.Span)
	LowerModule(ctx, m)

	for i := range m.Concurrent {
		s := &m.Concurrent[i]
		target := LowerLValue(ctx, VHDL, s.Target)
		value := LowerExpr(ctx, VHDL, s.Value)
		ctx.Module.Concurrent = append(ctx.Module.Concurrent, ir.ConcurrentAssign{
			Target: target, Value: value, Span: s.Span,
		})
	}

	for i := range m.Processes {
		p := &m.Processes[i]
		edges := detectVHDLEdges(interner, p)
		body := LowerStmt(ctx, VHDL, p.Body)

		sens := make([]ir.SensitivityEntry, 0, len(p.Sensitivity))
		for _, item := range p.Sensitivity {
			name := interner.Resolve(item.Name)
			sig, ok := ctx.LookupSignal(name)
			if !ok {
				continue
			}
			edge := ir.EdgeNone
			if e, found := edges[name]; found {
				edge = e
			}
			sens = append(sens, ir.SensitivityEntry{Signal: sig, Edge: edge})
		}

		kind := ir.ProcessCombinational
		if p.IsInitial {
			kind = ir.ProcessInitial
		} else if len(edges) > 0 {
			kind = ir.ProcessSequential
		}

		ctx.Module.Processes.Add(ir.Process{
			Name:        p.Name,
			Kind:        kind,
			Body:        body,
			Sensitivity: sens,
			Span:        p.Span,
		})
	}

	return ctx.Module
}

// detectVHDLEdges walks a process's top-level `if` conditions looking for
// rising_edge(x)/falling_edge(x) system calls, returning the edge kind
// keyed by the signal name x. Only top-level conditions are inspected,
// matching the idiomatic `if rising_edge(clk) then ... end if;` shape;
// edge qualifiers buried inside unrelated nested expressions are not a
// construct the VHDL subset in scope needs to support.
func detectVHDLEdges(interner *common.Interner, p *ast.Process) map[string]ir.Edge {
	edges := make(map[string]ir.Edge)
	var walk func(s *ast.Stmt)
	walk = func(s *ast.Stmt) {
		if s == nil {
			return
		}
		if s.Kind == ast.StmtIf {
			if name, edge, ok := edgeCallTarget(interner, s.Cond); ok {
				edges[name] = edge
			}
			walk(s.Then)
			walk(s.Else)
		}
		if s.Kind == ast.StmtBlock {
			for _, inner := range s.Body {
				walk(inner)
			}
		}
	}
	walk(p.Body)
	return edges
}

func edgeCallTarget(interner *common.Interner, e *ast.Expr) (string, ir.Edge, bool) {
	if e == nil || e.Kind != ast.ExprSystemCall || len(e.Args) != 1 {
		return "", ir.EdgeNone, false
	}
	callName := titleCase(interner.Resolve(e.CallName))
	var edge ir.Edge
	switch callName {
	case "Rising_Edge":
		edge = ir.EdgePosedge
	case "Falling_Edge":
		edge = ir.EdgeNegedge
	default:
		return "", ir.EdgeNone, false
	}
	arg := e.Args[0]
	if arg.Kind != ast.ExprIdent {
		return "", ir.EdgeNone, false
	}
	return interner.Resolve(arg.Name), edge, true
}
