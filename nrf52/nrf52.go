// Package nrf52 implements the register conventions shared by the
// peripherals of the nRF52 family.
//
// Tasks occupy the bottom of a peripheral's register window, one word per
// task. Events start at EventsOffset, one word per event; an event is active
// while its word is non-zero and is cleared by writing 0 to it.
package nrf52

import (
	"github.com/sarchlab/mmiosim/mmio"
	"github.com/sarchlab/mmiosim/nvic"
	"github.com/sarchlab/mmiosim/peripheral"
)

// Register offsets common to every peripheral.
const (
	EventsOffset   = uint32(0x100)
	IntenOffset    = uint32(0x300)
	IntenSetOffset = uint32(0x304)
	IntenClrOffset = uint32(0x308)
)

// Peripheral base addresses.
const (
	ClockBase  = uint32(0x40000000)
	UARTE0Base = uint32(0x40002000)
	Timer0Base = uint32(0x40008000)
	RTC0Base   = uint32(0x4000B000)
	RTC1Base   = uint32(0x40011000)
	GPIOP0Base = uint32(0x50000000)
)

// Interrupt lines.
var (
	PowerClockIRQ = nvic.IRQ(0)
	UARTE0IRQ     = nvic.IRQ(2)
	Timer0IRQ     = nvic.IRQ(8)
	RTC0IRQ       = nvic.IRQ(11)
	RTC1IRQ       = nvic.IRQ(17)
)

// EventAddr returns the address of event evt of the peripheral at base.
func EventAddr(base uint32, evt int) uint32 {
	return base + EventsOffset + uint32(evt)*4
}

// EventRegisters detects and clears events using the nRF52 layout.
type EventRegisters struct {
	Bus  mmio.Bus
	Base uint32
}

// IsEventActive reports whether the event word is non-zero.
func (r EventRegisters) IsEventActive(evt int) bool {
	return r.Bus.Read32(EventAddr(r.Base, evt)) != 0
}

// ClearEvent writes 0 to the event word.
func (r EventRegisters) ClearEvent(evt int) {
	r.Bus.Write32(EventAddr(r.Base, evt), 0)
}

// InterruptEnable drives the INTEN, INTENSET and INTENCLR registers.
type InterruptEnable struct {
	Bus  mmio.Bus
	Base uint32
}

// Enable enables the interrupts in mask.
func (ie InterruptEnable) Enable(mask uint32) {
	ie.Bus.Write32(ie.Base+IntenSetOffset, mask)
}

// Disable disables the interrupts in mask.
func (ie InterruptEnable) Disable(mask uint32) {
	ie.Bus.Write32(ie.Base+IntenClrOffset, mask)
}

// Enabled returns the enabled interrupt mask.
func (ie InterruptEnable) Enabled() uint32 {
	return ie.Bus.Read32(ie.Base + IntenOffset)
}

// NewPeripheral builds a peripheral with the nRF52 event and interrupt
// enable layout. table may be nil.
func NewPeripheral(
	name string,
	bus mmio.Bus,
	base uint32,
	numEvents int,
	irq nvic.Vector,
	table []peripheral.EventSlot,
) *peripheral.Peripheral {
	return peripheral.MakeBuilder().
		WithBus(bus).
		WithBaseAddress(base).
		WithNumEvents(numEvents).
		WithIRQ(irq).
		WithEventFlags(EventRegisters{Bus: bus, Base: base}).
		WithInterruptControl(InterruptEnable{Bus: bus, Base: base}).
		WithHandlerTable(table).
		Build(name)
}
