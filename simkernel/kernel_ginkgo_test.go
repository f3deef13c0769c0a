package simkernel_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/fourval"
	"github.com/sarchlab/aionhdl/ir"
	"github.com/sarchlab/aionhdl/simkernel"
)

func buildOscillatingInverter() *ir.Design {
	m := ir.NewModule("top", common.NoSpan)
	a := m.Signals.Add(ir.Signal{Name: "a", Kind: ir.SignalWire})
	aExpr := m.Exprs.Add(ir.Expr{Kind: ir.ExprSignal, Signal: a})
	notExpr := m.Exprs.Add(ir.Expr{Kind: ir.ExprUnary, UnaryOp: ir.UnaryNot, Operand: aExpr})
	m.Concurrent = append(m.Concurrent, ir.ConcurrentAssign{
		Target: ir.SignalRef{Kind: ir.RefSignal, Signal: a}, Value: notExpr,
	})

	design := ir.NewDesign(nil)
	design.Top = design.AddModule(m)
	return design
}

var _ = Describe("Kernel", func() {
	It("reports a delta cycle limit error on a combinational loop", func() {
		k, err := simkernel.New(buildOscillatingInverter())
		Expect(err).NotTo(HaveOccurred())
		k.SetMaxDelta(16)

		_, err = k.RunToCompletion()
		Expect(err).To(HaveOccurred())
		var limitErr *simkernel.DeltaCycleLimitError
		Expect(errorsAs(err, &limitErr)).To(BeTrue())
	})

	It("records waveform changes through an attached recorder", func() {
		m := ir.NewModule("top", common.NoSpan)
		a := m.Signals.Add(ir.Signal{Name: "a", Kind: ir.SignalWire})
		lit := m.Exprs.Add(ir.Expr{Kind: ir.ExprLiteral, Literal: fourval.FromU64(1, 1)})
		body := m.Stmts.Add(ir.Statement{Kind: ir.StmtAssign, AssignKind: ir.AssignBlocking,
			Target: ir.SignalRef{Kind: ir.RefSignal, Signal: a}, Value: lit})
		m.Processes.Add(ir.Process{Name: "init", Kind: ir.ProcessInitial, Body: body})

		design := ir.NewDesign(nil)
		design.Top = design.AddModule(m)

		k, err := simkernel.New(design)
		Expect(err).NotTo(HaveOccurred())

		rec := &stubRecorder{}
		Expect(k.SetRecorder(rec)).To(Succeed())

		_, err = k.RunToCompletion()
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.finalized).To(BeTrue())
	})
})

type stubRecorder struct {
	finalized bool
}

func (s *stubRecorder) RegisterSignal(id int, name string, width int) error { return nil }
func (s *stubRecorder) BeginScope(name string) error                       { return nil }
func (s *stubRecorder) EndScope() error                                    { return nil }
func (s *stubRecorder) RecordChange(timeFS uint64, id int, value fourval.Vec) error {
	return nil
}
func (s *stubRecorder) Finalize() error {
	s.finalized = true
	return nil
}

func errorsAs(err error, target **simkernel.DeltaCycleLimitError) bool {
	le, ok := err.(*simkernel.DeltaCycleLimitError)
	if !ok {
		return false
	}
	*target = le
	return true
}
