package clock

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mmiosim/nrf52"
	"github.com/sarchlab/mmiosim/regspace"
)

var _ = Describe("Clock", func() {
	var (
		space *regspace.Space
		clk   *Clock
	)

	BeforeEach(func() {
		space = regspace.NewSpace()
		clk = New(space, nil)
	})

	It("should start the crystal", func() {
		space.SetValueAt(LFCLKStat, StatRunning|uint32(SourceXTAL))

		Expect(clk.Request(SourceXTAL)).To(Succeed())

		Expect(space.OpCountAt(regspace.OpWrite32, LFCLKSrc)).To(Equal(1))
		Expect(space.ValueAt(LFCLKSrc)).To(Equal(uint32(1)))
		Expect(space.Journal()[:2]).To(Equal([]regspace.JournalEntry{
			{Op: regspace.OpWrite32, Addr: LFCLKSrc, Value: 1},
			{Op: regspace.OpWrite32, Addr: nrf52.ClockBase + 8, Value: 1},
		}))
		Expect(clk.IsLFRunning()).To(BeTrue())
		Expect(clk.LFSource()).To(Equal(SourceXTAL))
	})

	It("should poll until the clock reports running", func() {
		status := &regspace.ReadSequenceHandler{}
		status.Push(0, 0, 0)
		Expect(space.SetAddrIOHandler(LFCLKStat, status)).To(Succeed())
		space.SetValueAt(LFCLKStat, StatRunning)

		Expect(clk.Request(SourceRC)).To(Succeed())

		Expect(status.Len()).To(Equal(0))
		Expect(space.OpCountAt(regspace.OpRead32, LFCLKStat)).To(Equal(4))
		Expect(space.ValueAt(LFCLKSrc)).To(Equal(uint32(0)))
	})

	It("should accept the synthesized source", func() {
		space.SetValueAt(LFCLKStat, StatRunning)

		Expect(clk.Request(SourceSynth)).To(Succeed())

		Expect(space.ValueAt(LFCLKSrc)).To(Equal(uint32(2)))
	})

	It("should reject unknown sources without touching registers", func() {
		Expect(clk.Request(Source(3))).To(MatchError(ErrUnknownSource))
		Expect(clk.Request(Source(-1))).To(MatchError(ErrUnknownSource))

		Expect(space.OpCountAt(regspace.OpWrite32, LFCLKSrc)).To(Equal(0))
		Expect(space.JournalLen()).To(Equal(0))
	})

	It("should start the high-frequency clock on the started event", func() {
		space.SetValueAt(nrf52.EventAddr(nrf52.ClockBase, EventHFCLKStarted), 1)

		clk.StartHF()

		Expect(space.ValueAt(nrf52.ClockBase)).To(Equal(uint32(1)))
		Expect(space.ValueAt(
			nrf52.EventAddr(nrf52.ClockBase, EventHFCLKStarted))).
			To(Equal(uint32(0)))
	})

	It("should stop the clocks", func() {
		clk.StopLF()
		clk.StopHF()

		Expect(space.OpCountAt(regspace.OpWrite32,
			nrf52.ClockBase+4*TaskLFCLKStop)).To(Equal(1))
		Expect(space.OpCountAt(regspace.OpWrite32,
			nrf52.ClockBase+4*TaskHFCLKStop)).To(Equal(1))
	})
})

var _ = Describe("Source", func() {
	It("should parse names", func() {
		src, err := ParseSource("XTAL")
		Expect(err).NotTo(HaveOccurred())
		Expect(src).To(Equal(SourceXTAL))
		Expect(src.String()).To(Equal("xtal"))

		_, err = ParseSource("pll")
		Expect(err).To(MatchError(ErrUnknownSource))
		Expect(Source(9).String()).To(Equal("Source(9)"))
	})
})
