package peripheral

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/mmiosim/hooking"
	"github.com/sarchlab/mmiosim/nvic"
	"github.com/sarchlab/mmiosim/regspace"
)

const testBase = uint32(0x40001000)

// stubFlags reports event 1 as always active, like a peripheral whose
// status line is stuck high.
type stubFlags struct {
	cleared []int
}

func (f *stubFlags) IsEventActive(evt int) bool {
	return evt == 1
}

func (f *stubFlags) ClearEvent(evt int) {
	f.cleared = append(f.cleared, evt)
}

// latchFlags keeps raised events until they are cleared.
type latchFlags struct {
	active map[int]bool
}

func (f *latchFlags) IsEventActive(evt int) bool {
	return f.active[evt]
}

func (f *latchFlags) ClearEvent(evt int) {
	delete(f.active, evt)
}

var _ = Describe("Peripheral", func() {
	var (
		mockCtrl *gomock.Controller
		space    *regspace.Space
		flags    *MockEventFlags
		table    []EventSlot
		p        *Peripheral
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		space = regspace.NewSpace()
		flags = NewMockEventFlags(mockCtrl)
		table = make([]EventSlot, 3)

		p = MakeBuilder().
			WithBus(space).
			WithBaseAddress(testBase).
			WithNumEvents(3).
			WithIRQ(nvic.IRQ(1)).
			WithEventFlags(flags).
			WithHandlerTable(table).
			Build("TestPeriph")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should expose its configuration", func() {
		Expect(p.Name()).To(Equal("TestPeriph"))
		Expect(p.BaseAddress()).To(Equal(testBase))
		Expect(p.IRQ()).To(Equal(nvic.IRQ(1)))
		Expect(p.NumEvents()).To(Equal(3))
		Expect(p.Bus()).To(BeIdenticalTo(space))
	})

	It("should trigger tasks by writing 1 to the task register", func() {
		p.TriggerTask(0)
		p.TriggerTask(2)

		Expect(space.Journal()).To(Equal([]regspace.JournalEntry{
			{Op: regspace.OpWrite32, Addr: testBase, Value: 1},
			{Op: regspace.OpWrite32, Addr: testBase + 8, Value: 1},
		}))
	})

	It("should register handlers in the caller's table", func() {
		h := func(int) {}

		Expect(p.AddEventHandler(2, h, 7)).To(Succeed())

		Expect(table[2].Handler).NotTo(BeNil())
		Expect(table[2].Arg).To(Equal(7))

		slot, err := p.Slot(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(slot.Arg).To(Equal(7))
	})

	It("should reject out-of-range event indices", func() {
		Expect(p.AddEventHandler(3, func(int) {}, 0)).
			To(MatchError(ErrEventOutOfRange))
		Expect(p.AddEventHandler(-1, func(int) {}, 0)).
			To(MatchError(ErrEventOutOfRange))
		Expect(p.RemoveEventHandler(3)).To(MatchError(ErrEventOutOfRange))

		_, err := p.Slot(5)
		Expect(err).To(MatchError(ErrEventOutOfRange))
		Expect(table).To(Equal(make([]EventSlot, 3)))
	})

	It("should handle only active events, invoking before clearing", func() {
		var order []string
		Expect(p.AddEventHandler(0, func(int) {
			order = append(order, "handler0")
		}, 0)).To(Succeed())
		Expect(p.AddEventHandler(1, func(arg int) {
			order = append(order, "handler1")
			Expect(arg).To(Equal(11))
		}, 11)).To(Succeed())

		gomock.InOrder(
			flags.EXPECT().IsEventActive(0).Return(false),
			flags.EXPECT().IsEventActive(1).Return(true),
			flags.EXPECT().ClearEvent(1).Do(func(int) {
				order = append(order, "clear1")
			}),
			flags.EXPECT().IsEventActive(2).Return(false),
		)

		p.HandleEvents()

		Expect(order).To(Equal([]string{"handler1", "clear1"}))
	})

	It("should clear active events without a handler", func() {
		flags.EXPECT().IsEventActive(0).Return(true)
		flags.EXPECT().IsEventActive(1).Return(false)
		flags.EXPECT().IsEventActive(2).Return(false)
		flags.EXPECT().ClearEvent(0)

		p.HandleEvents()
	})

	It("should skip removed handlers", func() {
		calls := 0
		Expect(p.AddEventHandler(0, func(int) { calls++ }, 0)).To(Succeed())
		Expect(p.RemoveEventHandler(0)).To(Succeed())

		flags.EXPECT().IsEventActive(gomock.Any()).Return(true).Times(3)
		flags.EXPECT().ClearEvent(gomock.Any()).Times(3)

		p.HandleEvents()

		Expect(calls).To(Equal(0))
	})

	It("should drop an event its own handler raises again", func() {
		latch := &latchFlags{active: map[int]bool{1: true}}
		p = MakeBuilder().
			WithBus(space).
			WithNumEvents(3).
			WithEventFlags(latch).
			Build("Latched")

		calls := 0
		Expect(p.AddEventHandler(1, func(int) {
			calls++
			latch.active[1] = true
		}, 0)).To(Succeed())

		p.HandleEvents()
		p.HandleEvents()

		Expect(calls).To(Equal(1))
		Expect(latch.IsEventActive(1)).To(BeFalse())
	})

	It("should busy wait for the event and then clear it", func() {
		gomock.InOrder(
			flags.EXPECT().IsEventActive(1).Return(false).Times(2),
			flags.EXPECT().IsEventActive(1).Return(true),
			flags.EXPECT().ClearEvent(1),
		)

		p.BusyWaitAndClearEvent(1)
	})

	It("should notify hooks of handled events", func() {
		var handled []int
		p.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosEventHandled))
			handled = append(handled, ctx.Item.(int))
		}))

		flags.EXPECT().IsEventActive(0).Return(false)
		flags.EXPECT().IsEventActive(1).Return(true)
		flags.EXPECT().IsEventActive(2).Return(true)
		flags.EXPECT().ClearEvent(1)
		flags.EXPECT().ClearEvent(2)

		p.HandleEvents()

		Expect(handled).To(Equal([]int{1, 2}))
	})

	It("should notify hooks of handler changes", func() {
		var changed []EventSlot
		p.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosHandlerChanged))
			Expect(ctx.Item).To(Equal(2))
			changed = append(changed, ctx.Detail.(EventSlot))
		}))

		Expect(p.AddEventHandler(2, func(int) {}, 5)).To(Succeed())
		Expect(p.RemoveEventHandler(2)).To(Succeed())
		Expect(p.AddEventHandler(3, func(int) {}, 5)).
			To(MatchError(ErrEventOutOfRange))

		Expect(changed).To(HaveLen(2))
		Expect(changed[0].Handler).NotTo(BeNil())
		Expect(changed[0].Arg).To(Equal(5))
		Expect(changed[1]).To(Equal(EventSlot{}))
	})

	It("should delegate interrupt control", func() {
		ic := NewMockInterruptControl(mockCtrl)
		p = MakeBuilder().
			WithBus(space).
			WithNumEvents(1).
			WithEventFlags(flags).
			WithInterruptControl(ic).
			Build("WithInterrupts")

		ic.EXPECT().Enable(uint32(0x3))
		ic.EXPECT().Disable(uint32(0x1))

		p.EnableInterrupts(0x3)
		p.DisableInterrupts(0x1)
	})

	It("should ignore interrupt control when none is configured", func() {
		p.EnableInterrupts(0x1)
		p.DisableInterrupts(0x1)
	})
})

var _ = Describe("Peripheral IRQ binding", func() {
	It("should dispatch events through the vector table", func() {
		flags := &stubFlags{}
		p := MakeBuilder().
			WithBus(regspace.NewSpace()).
			WithBaseAddress(testBase).
			WithNumEvents(3).
			WithIRQ(nvic.IRQ(1)).
			WithEventFlags(flags).
			Build("TestPeriph")
		vt := nvic.NewVectorTable()
		counter := 0

		Expect(p.BindIRQ(vt)).To(Succeed())
		Expect(p.AddEventHandler(1, func(int) { counter++ }, 0)).To(Succeed())
		Expect(counter).To(Equal(0))

		vt.Dispatch(p.IRQ())

		Expect(counter).To(Equal(1))
		Expect(flags.cleared).To(Equal([]int{1}))
	})
})

var _ = Describe("Builder", func() {
	It("should allocate a table when none is given", func() {
		p := MakeBuilder().
			WithBus(regspace.NewSpace()).
			WithNumEvents(4).
			WithEventFlags(&stubFlags{}).
			Build("P")

		Expect(p.NumEvents()).To(Equal(4))
	})

	It("should only use the first numEvents slots of a longer table", func() {
		p := MakeBuilder().
			WithBus(regspace.NewSpace()).
			WithNumEvents(2).
			WithEventFlags(&stubFlags{}).
			WithHandlerTable(make([]EventSlot, 8)).
			Build("P")

		Expect(p.NumEvents()).To(Equal(2))
		Expect(p.AddEventHandler(2, func(int) {}, 0)).
			To(MatchError(ErrEventOutOfRange))
	})

	It("should panic on a short table", func() {
		b := MakeBuilder().
			WithBus(regspace.NewSpace()).
			WithNumEvents(3).
			WithEventFlags(&stubFlags{}).
			WithHandlerTable(make([]EventSlot, 2))

		Expect(func() { b.Build("P") }).To(Panic())
	})

	It("should panic without a bus or event flags", func() {
		Expect(func() {
			MakeBuilder().WithEventFlags(&stubFlags{}).Build("P")
		}).To(Panic())
		Expect(func() {
			MakeBuilder().WithBus(regspace.NewSpace()).Build("P")
		}).To(Panic())
	})

	It("should panic on a name that breaks the convention", func() {
		b := MakeBuilder().
			WithBus(regspace.NewSpace()).
			WithEventFlags(&stubFlags{})

		Expect(func() { b.Build("lf_clock") }).To(Panic())
		Expect(func() { b.Build("Board.RTC[1]") }).ToNot(Panic())
	})
})
