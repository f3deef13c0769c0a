package synth_test

import (
	"strings"
	"testing"

	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/ir"
	"github.com/sarchlab/aionhdl/synth"
)

func TestDumpNetlistRendersCellTable(t *testing.T) {
	types := ir.NewTypeDB()
	m := ir.NewModule("inv", common.NoSpan)
	a := m.Signals.Add(ir.Signal{Name: "a", Type: types.Bit(), Kind: ir.SignalWire})
	y := m.Signals.Add(ir.Signal{Name: "y", Type: types.Bit(), Kind: ir.SignalWire})
	aExpr := m.Exprs.Add(ir.Expr{Kind: ir.ExprSignal, Signal: a})
	notExpr := m.Exprs.Add(ir.Expr{Kind: ir.ExprUnary, UnaryOp: ir.UnaryNot, Operand: aExpr})

	m.Concurrent = append(m.Concurrent, ir.ConcurrentAssign{
		Target: ir.SignalRef{Kind: ir.RefSignal, Signal: y}, Value: notExpr,
	})

	sink := diagnostics.NewSink()
	out := synth.LowerModule(m, types, sink)

	rendered := synth.DumpNetlist(out)
	if !strings.Contains(rendered, "not") {
		t.Fatalf("expected the rendered netlist to mention the not cell, got:\n%s", rendered)
	}
	if !strings.Contains(rendered, "Netlist: inv") {
		t.Fatalf("expected the table title to name the module, got:\n%s", rendered)
	}
}
