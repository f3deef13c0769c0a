package interactive_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/fourval"
	"github.com/sarchlab/aionhdl/interactive"
	"github.com/sarchlab/aionhdl/ir"
)

// fakeRecorder is a minimal waveform.Recorder that counts Finalize calls,
// just enough to exercise Driver.Close's once-only finalization.
type fakeRecorder struct {
	finalizeCalls int
}

func (f *fakeRecorder) RegisterSignal(int, string, int) error { return nil }
func (f *fakeRecorder) BeginScope(string) error                { return nil }
func (f *fakeRecorder) EndScope() error                        { return nil }

func (f *fakeRecorder) RecordChange(uint64, int, fourval.Vec) error {
	return nil
}

func (f *fakeRecorder) Finalize() error {
	f.finalizeCalls++
	return nil
}

// buildCounterDesign builds a one-signal design whose only process is an
// initial block setting `a` to 1, so the driver's step/run commands have
// something to observe without needing external stimulus wiring.
func buildCounterDesign() *ir.Design {
	m := ir.NewModule("top", common.NoSpan)
	a := m.Signals.Add(ir.Signal{Name: "a", Kind: ir.SignalWire})
	lit := m.Exprs.Add(ir.Expr{Kind: ir.ExprLiteral, Literal: fourval.FromU64(1, 1)})
	body := m.Stmts.Add(ir.Statement{Kind: ir.StmtAssign, AssignKind: ir.AssignBlocking,
		Target: ir.SignalRef{Kind: ir.RefSignal, Signal: a}, Value: lit})
	m.Processes.Add(ir.Process{Name: "init", Kind: ir.ProcessInitial, Body: body})

	design := ir.NewDesign(nil)
	design.Top = design.AddModule(m)
	return design
}

var _ = Describe("Driver", func() {
	var driver *interactive.Driver

	BeforeEach(func() {
		var err error
		driver, err = interactive.NewDriverBuilder().WithDesign(buildCounterDesign()).Build("driver")
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports signal values through Inspect", func() {
		values := driver.Inspect("top.sig0")
		Expect(values).To(HaveKeyWithValue("top.sig0", "1"))
	})

	It("adds and removes watches", func() {
		driver.Watch("top.sig0")
		Expect(driver.Watches()).To(ConsistOf("top.sig0"))
		Expect(driver.WatchedValues()).To(HaveKeyWithValue("top.sig0", "1"))

		removed := driver.Unwatch("top.sig0")
		Expect(removed).To(BeTrue())
		Expect(driver.Watches()).To(BeEmpty())
	})

	It("sets breakpoints and reports status", func() {
		driver.AddBreakpoint(0)

		status := driver.Status()
		Expect(status.Breakpoints).To(Equal(1))
	})

	It("steps and reports finished once no events remain", func() {
		Expect(driver.Initialize()).To(Succeed())

		outcome, err := driver.Step()
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Kind).To(Equal(interactive.Finished))
	})

	It("finalizes the attached recorder exactly once on Close", func() {
		rec := &fakeRecorder{}
		Expect(driver.Kernel().SetRecorder(rec)).To(Succeed())

		Expect(driver.Close()).To(Succeed())
		Expect(driver.Close()).To(Succeed())
		Expect(rec.finalizeCalls).To(Equal(1))
	})
})
