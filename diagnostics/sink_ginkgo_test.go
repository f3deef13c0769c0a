package diagnostics_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/aionhdl/common"
	"github.com/sarchlab/aionhdl/diagnostics"
)

var _ = Describe("Sink", func() {
	var sink *diagnostics.Sink

	BeforeEach(func() {
		sink = diagnostics.NewSink()
	})

	It("starts empty with no errors", func() {
		Expect(sink.HasErrors()).To(BeFalse())
		Expect(sink.ErrorCount()).To(Equal(0))
	})

	It("tracks error-severity diagnostics separately from warnings", func() {
		sink.Warn("W101", "inferred latch", common.NoSpan)
		Expect(sink.HasErrors()).To(BeFalse())

		sink.Error("E209", "unknown identifier `WIDTH`", common.NoSpan)
		Expect(sink.HasErrors()).To(BeTrue())
		Expect(sink.ErrorCount()).To(Equal(1))
	})

	It("preserves emission order and clears on TakeAll", func() {
		sink.Warn("W101", "first", common.NoSpan)
		sink.Error("E209", "second", common.NoSpan)

		all := sink.TakeAll()
		Expect(all).To(HaveLen(2))
		Expect(all[0].Message).To(Equal("first"))
		Expect(all[1].Message).To(Equal("second"))

		Expect(sink.TakeAll()).To(BeEmpty())
	})

	It("renders a diagnostic the way a CLI driver would print it", func() {
		d := diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     "E209",
			Message:  "unknown identifier `WIDTH`",
		}
		Expect(d.String()).To(Equal("error[E209]: unknown identifier `WIDTH`"))
	})

	It("is safe for concurrent Emit from multiple goroutines", func() {
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sink.Warn("W101", "concurrent", common.NoSpan)
			}()
		}
		wg.Wait()
		Expect(sink.TakeAll()).To(HaveLen(32))
	})
})
