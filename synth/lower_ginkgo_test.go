package synth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/fourval"
	"github.com/sarchlab/aionhdl/ir"
	"github.com/sarchlab/aionhdl/synth"
)

var _ = Describe("LowerModule", func() {
	It("merges a partial-width slice write into the base signal via Concat", func() {
		types := ir.NewTypeDB()
		m := ir.NewModule("sliced", common.NoSpan)
		base := m.Signals.Add(ir.Signal{Name: "base", Type: types.BitVec(8, false), Kind: ir.SignalWire})
		src := m.Signals.Add(ir.Signal{Name: "src", Type: types.BitVec(4, false), Kind: ir.SignalWire})

		srcExpr := m.Exprs.Add(ir.Expr{Kind: ir.ExprSignal, Signal: src})
		highLit := m.Exprs.Add(ir.Expr{Kind: ir.ExprLiteral, Literal: fourval.FromU64(8, 7)})
		lowLit := m.Exprs.Add(ir.Expr{Kind: ir.ExprLiteral, Literal: fourval.FromU64(8, 4)})

		m.Concurrent = append(m.Concurrent, ir.ConcurrentAssign{
			Target: ir.SignalRef{Kind: ir.RefSlice, Base: base, High: highLit, Low: lowLit},
			Value:  srcExpr,
		})

		sink := diagnostics.NewSink()
		out := synth.LowerModule(m, types, sink)

		Expect(sink.HasErrors()).To(BeFalse())

		foundConcat := false
		out.Cells.All(func(_ ir.CellID, c ir.Cell) bool {
			if c.Kind == ir.CellConcat {
				foundConcat = true
				return false
			}
			return true
		})
		Expect(foundConcat).To(BeTrue(), "expected a partial-width slice write to merge via a Concat cell")
	})

	It("leaves the source module's Processes and Concurrent assigns untouched", func() {
		types := ir.NewTypeDB()
		m := ir.NewModule("untouched", common.NoSpan)
		a := m.Signals.Add(ir.Signal{Name: "a", Type: types.Bit(), Kind: ir.SignalWire})
		b := m.Signals.Add(ir.Signal{Name: "b", Type: types.Bit(), Kind: ir.SignalWire})
		aExpr := m.Exprs.Add(ir.Expr{Kind: ir.ExprSignal, Signal: a})
		m.Concurrent = append(m.Concurrent, ir.ConcurrentAssign{
			Target: ir.SignalRef{Kind: ir.RefSignal, Signal: b}, Value: aExpr,
		})

		sink := diagnostics.NewSink()
		synth.LowerModule(m, types, sink)

		Expect(m.Concurrent).To(HaveLen(1))
		Expect(m.Cells.Len()).To(Equal(0))
	})
})
