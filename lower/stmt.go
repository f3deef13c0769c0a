package lower

import (
	"github.com/sarchlab/aionhdl/ast"
	"github.com/sarchlab/aionhdl/ir"
)

// LowerStmt lowers a surface-syntax statement tree into the module under
// construction, returning the handle of the resulting ir.Statement node.
func LowerStmt(ctx *Context, d Dialect, s *ast.Stmt) ir.StmtID {
	if s == nil {
		return ctx.Module.Stmts.Add(ir.Statement{Kind: ir.StmtNop})
	}

	switch s.Kind {
	case ast.StmtBlockingAssign, ast.StmtNonBlockingAssign, ast.StmtConcurrentAssign:
		target := LowerLValue(ctx, d, s.Target)
		value := LowerExpr(ctx, d, s.Value)
		kind := ir.AssignBlocking
		if s.Kind == ast.StmtNonBlockingAssign {
			kind = ir.AssignNonBlocking
		}
		return ctx.Module.Stmts.Add(ir.Statement{
			Kind:       ir.StmtAssign,
			AssignKind: kind,
			Target:     target,
			Value:      value,
			Span:       s.Span,
		})

	case ast.StmtIf:
		cond := LowerExpr(ctx, d, s.Cond)
		then := LowerStmt(ctx, d, s.Then)
		stmt := ir.Statement{Kind: ir.StmtIf, Cond: cond, Then: then, Span: s.Span}
		if s.Else != nil {
			stmt.Else = LowerStmt(ctx, d, s.Else)
			stmt.HasElse = true
		}
		return ctx.Module.Stmts.Add(stmt)

	case ast.StmtCase:
		selector := LowerExpr(ctx, d, s.Selector)
		arms := make([]ir.CaseArm, len(s.CaseArms))
		for i, arm := range s.CaseArms {
			values := make([]ir.ExprID, len(arm.Values))
			for j, v := range arm.Values {
				values[j] = LowerExpr(ctx, d, v)
			}
			arms[i] = ir.CaseArm{Values: values, Body: LowerStmt(ctx, d, arm.Body)}
		}
		return ctx.Module.Stmts.Add(ir.Statement{Kind: ir.StmtCase, Selector: selector, Arms: arms, Span: s.Span})

	case ast.StmtBlock:
		stmts := make([]ir.StmtID, len(s.Body))
		for i, inner := range s.Body {
			stmts[i] = LowerStmt(ctx, d, inner)
		}
		return ctx.Module.Stmts.Add(ir.Statement{Kind: ir.StmtBlock, Stmts: stmts, Span: s.Span})

	case ast.StmtDisplay:
		args := make([]ir.ExprID, len(s.Args))
		for i, a := range s.Args {
			args[i] = LowerExpr(ctx, d, a)
		}
		return ctx.Module.Stmts.Add(ir.Statement{Kind: ir.StmtDisplay, Format: s.Format, Args: args, Span: s.Span})

	case ast.StmtFinish:
		return ctx.Module.Stmts.Add(ir.Statement{Kind: ir.StmtFinish, Span: s.Span})

	case ast.StmtInitial:
		return LowerStmt(ctx, d, s.Then)

	default:
		ctx.Sink.Error("E304", "unsupported statement form", s.Span)
		return ctx.Module.Stmts.Add(ir.Statement{Kind: ir.StmtNop, Span: s.Span})
	}
}

// LowerSensitivity lowers a surface-syntax sensitivity list.
func LowerSensitivity(ctx *Context, items []ast.SensItem) []ir.SensitivityEntry {
	out := make([]ir.SensitivityEntry, 0, len(items))
	for _, it := range items {
		name := ctx.Interner.Resolve(it.Name)
		sig, ok := ctx.LookupSignal(name)
		if !ok {
			continue
		}
		out = append(out, ir.SensitivityEntry{Signal: sig, Edge: lowerEdge(it.Edge)})
	}
	return out
}

func lowerEdge(e ast.EdgeKind) ir.Edge {
	switch e {
	case ast.EdgePosedge:
		return ir.EdgePosedge
	case ast.EdgeNegedge:
		return ir.EdgeNegedge
	case ast.EdgeBoth:
		return ir.EdgeBoth
	default:
		return ir.EdgeNone
	}
}

// classifyProcess decides a process's ProcessKind from its sensitivity
// list: any edge-qualified entry marks it Sequential, an initial block is
// ProcessInitial, and everything else is Combinational. No later pass
// changes the kind: synthesis lowering reports an incompletely-assigned
// branch of a Combinational process by inferring a latch cell instead.
func classifyProcess(p *ast.Process) ir.ProcessKind {
	if p.IsInitial {
		return ir.ProcessInitial
	}
	for _, s := range p.Sensitivity {
		if s.Edge != ast.EdgeNone {
			return ir.ProcessSequential
		}
	}
	return ir.ProcessCombinational
}
