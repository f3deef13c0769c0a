package simkernel_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/golang/mock/gomock"

	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/ir"
	"github.com/sarchlab/aionhdl/simkernel"
)

var errBoom = errors.New("boom")

var _ = Describe("Kernel SetRecorder", func() {
	It("registers every flattened signal with the attached recorder", func() {
		m := ir.NewModule("top", common.NoSpan)
		m.Signals.Add(ir.Signal{Name: "a", Kind: ir.SignalWire})
		m.Signals.Add(ir.Signal{Name: "b", Kind: ir.SignalWire})
		design := ir.NewDesign(nil)
		design.Top = design.AddModule(m)

		k, err := simkernel.New(design)
		Expect(err).NotTo(HaveOccurred())

		ctrl := gomock.NewController(GinkgoT())
		rec := NewMockRecorder(ctrl)
		rec.EXPECT().RegisterSignal(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

		Expect(k.SetRecorder(rec)).To(Succeed())
	})

	It("propagates a RegisterSignal failure", func() {
		m := ir.NewModule("top", common.NoSpan)
		m.Signals.Add(ir.Signal{Name: "a", Kind: ir.SignalWire})
		design := ir.NewDesign(nil)
		design.Top = design.AddModule(m)

		k, err := simkernel.New(design)
		Expect(err).NotTo(HaveOccurred())

		ctrl := gomock.NewController(GinkgoT())
		rec := NewMockRecorder(ctrl)
		rec.EXPECT().RegisterSignal(gomock.Any(), gomock.Any(), gomock.Any()).Return(errBoom)

		Expect(k.SetRecorder(rec)).To(MatchError(errBoom))
	})
})
