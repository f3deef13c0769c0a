package waveform_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/aionhdl/fourval"
	"github.com/sarchlab/aionhdl/waveform"
)

var _ = Describe("FSTRecorder", func() {
	var buf bytes.Buffer
	var rec *waveform.FSTRecorder

	BeforeEach(func() {
		buf = bytes.Buffer{}
		rec = waveform.NewFSTRecorder(&buf)
	})

	It("produces a non-empty FST file once finalized", func() {
		Expect(rec.RegisterSignal(1, "top.clk", 1)).To(Succeed())
		Expect(rec.RecordChange(0, 1, fourval.FromU64(1, 1))).To(Succeed())
		Expect(rec.Finalize()).To(Succeed())
		Expect(buf.Len()).To(BeNumerically(">", 0))
	})

	It("nests scopes without error", func() {
		Expect(rec.BeginScope("top")).To(Succeed())
		Expect(rec.RegisterSignal(1, "clk", 1)).To(Succeed())
		Expect(rec.BeginScope("child")).To(Succeed())
		Expect(rec.RegisterSignal(2, "data", 8)).To(Succeed())
		Expect(rec.EndScope()).To(Succeed())
		Expect(rec.EndScope()).To(Succeed())
		Expect(rec.Finalize()).To(Succeed())
	})
})
