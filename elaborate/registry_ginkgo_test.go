package elaborate_test

import (
	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/elaborate"
	"github.com/sarchlab/aionhdl/ir"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	It("returns modules by name and reports misses", func() {
		r := elaborate.NewRegistry()
		alu := ir.NewModule("alu", common.NoSpan)
		r.Register(alu)

		got, ok := r.Lookup("alu")
		Expect(ok).To(BeTrue())
		Expect(got.Name).To(Equal("alu"))

		_, ok = r.Lookup("missing")
		Expect(ok).To(BeFalse())
	})

	It("lets a later registration of the same name replace the earlier one", func() {
		r := elaborate.NewRegistry()
		r.Register(ir.NewModule("top", common.NoSpan))
		replacement := ir.NewModule("top", common.NoSpan)
		replacement.IsBlackBox = true
		r.Register(replacement)

		got, _ := r.Lookup("top")
		Expect(got.IsBlackBox).To(BeTrue())
	})
})
