package elaborate_test

import (
	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/diagnostics"
	"github.com/sarchlab/aionhdl/elaborate"
	"github.com/sarchlab/aionhdl/ir"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("YAML fixtures", func() {
	It("builds a registry from a registry fixture and elaborates it", func() {
		interner := common.NewInterner()
		registry, err := elaborate.LoadRegistryFromYAML("testdata/registry.yaml", interner)
		Expect(err).NotTo(HaveOccurred())

		leaf, ok := registry.Lookup("leaf")
		Expect(ok).To(BeTrue())
		Expect(leaf.Ports).To(HaveLen(2))

		types := ir.NewTypeDB()
		sink := diagnostics.NewSink()
		design := elaborate.NewBuilder(registry, types, sink).Build("top", nil)

		top := design.TopModule()
		Expect(top.Cells.Len()).To(Equal(2))

		u0 := top.Cells.Get(0).InstanceOf
		u1 := top.Cells.Get(1).InstanceOf
		Expect(u0).NotTo(Equal(u1), "differently-overridden instances of leaf must not share a cache entry")
	})

	It("loads named override sets from an overrides fixture", func() {
		interner := common.NewInterner()
		sets, err := elaborate.LoadOverridesFromYAML("testdata/overrides.yaml", interner)
		Expect(err).NotTo(HaveOccurred())
		Expect(sets).To(HaveKey("narrow"))
		Expect(sets).To(HaveKey("wide"))

		width := interner.GetOrIntern("WIDTH")
		depth := interner.GetOrIntern("DEPTH")

		n, ok := sets["narrow"][width].ToInt64()
		Expect(ok).To(BeTrue())
		Expect(n).To(Equal(int64(8)))

		_, ok = sets["narrow"][depth]
		Expect(ok).To(BeFalse())

		d, ok := sets["wide"][depth].ToInt64()
		Expect(ok).To(BeTrue())
		Expect(d).To(Equal(int64(4)))
	})

	It("reports a read error for a missing fixture file", func() {
		_, err := elaborate.LoadRegistryFromYAML("testdata/does-not-exist.yaml", common.NewInterner())
		Expect(err).To(HaveOccurred())
	})
})
