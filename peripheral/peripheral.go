// Package peripheral provides the base every peripheral driver is built on.
//
// A Peripheral owns a window of registers starting at its base address, a
// table of event handlers and an interrupt vector. How an event is detected
// and acknowledged differs between chip families, so it is supplied as an
// EventFlags capability rather than implemented here.
package peripheral

import (
	"errors"
	"fmt"

	"github.com/sarchlab/mmiosim/hooking"
	"github.com/sarchlab/mmiosim/mmio"
	"github.com/sarchlab/mmiosim/nvic"
)

// EventFlags detects and clears the hardware events of one peripheral.
type EventFlags interface {
	IsEventActive(evt int) bool
	ClearEvent(evt int)
}

// InterruptControl enables and disables the interrupts a peripheral raises
// for its events.
type InterruptControl interface {
	Enable(mask uint32)
	Disable(mask uint32)
}

// An EventHandler reacts to one event. It receives the argument stored with
// it at registration.
type EventHandler func(arg int)

// EventSlot is one entry of a handler table. A slot without a handler is
// skipped during dispatch.
type EventSlot struct {
	Handler EventHandler
	Arg     int
}

// ErrEventOutOfRange is returned when an event index is not below the
// peripheral's event count.
var ErrEventOutOfRange = errors.New("event index out of range")

// HookPosEventHandled triggers after an active event has been handled and
// cleared. The hook item is the event index and the detail the EventSlot.
var HookPosEventHandled = &hooking.HookPos{Name: "EventHandled"}

// HookPosHandlerChanged triggers after an event slot is bound or unbound. The
// hook item is the event index and the detail the new EventSlot.
var HookPosHandlerChanged = &hooking.HookPos{Name: "HandlerChanged"}

// TaskStride is the distance between two task registers.
const TaskStride = 4

// Peripheral is the base of a peripheral driver.
type Peripheral struct {
	hooking.HookableBase

	name       string
	bus        mmio.Bus
	base       uint32
	irq        nvic.Vector
	flags      EventFlags
	interrupts InterruptControl
	slots      []EventSlot
}

// Name returns the name of the peripheral.
func (p *Peripheral) Name() string {
	return p.name
}

// BaseAddress returns the first address of the register window.
func (p *Peripheral) BaseAddress() uint32 {
	return p.base
}

// IRQ returns the interrupt vector of the peripheral.
func (p *Peripheral) IRQ() nvic.Vector {
	return p.irq
}

// NumEvents returns the number of event slots.
func (p *Peripheral) NumEvents() int {
	return len(p.slots)
}

// Bus returns the bus the peripheral accesses its registers through.
func (p *Peripheral) Bus() mmio.Bus {
	return p.bus
}

// TriggerTask starts the hardware action of task register i.
func (p *Peripheral) TriggerTask(i int) {
	p.bus.Write32(p.base+uint32(i)*TaskStride, 1)
}

// BusyWaitAndClearEvent spins until evt becomes active and then clears it.
//
// There is no timeout. A peripheral that never raises the event hangs the
// caller; on the target that is a fatal condition.
func (p *Peripheral) BusyWaitAndClearEvent(evt int) {
	for !p.flags.IsEventActive(evt) {
	}

	p.flags.ClearEvent(evt)
}

// IsEventActive reports whether evt is raised.
func (p *Peripheral) IsEventActive(evt int) bool {
	return p.flags.IsEventActive(evt)
}

// ClearEvent acknowledges evt.
func (p *Peripheral) ClearEvent(evt int) {
	p.flags.ClearEvent(evt)
}

// AddEventHandler binds h and arg to event slot i. Nothing is registered if
// i is out of range.
func (p *Peripheral) AddEventHandler(i int, h EventHandler, arg int) error {
	if err := p.checkEvent(i); err != nil {
		return err
	}

	p.slots[i] = EventSlot{Handler: h, Arg: arg}
	p.slotChanged(i)

	return nil
}

// RemoveEventHandler unbinds event slot i.
func (p *Peripheral) RemoveEventHandler(i int) error {
	if err := p.checkEvent(i); err != nil {
		return err
	}

	p.slots[i] = EventSlot{}
	p.slotChanged(i)

	return nil
}

func (p *Peripheral) slotChanged(i int) {
	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    HookPosHandlerChanged,
		Item:   i,
		Detail: p.slots[i],
	})
}

// Slot returns the content of event slot i.
func (p *Peripheral) Slot(i int) (EventSlot, error) {
	if err := p.checkEvent(i); err != nil {
		return EventSlot{}, err
	}

	return p.slots[i], nil
}

func (p *Peripheral) checkEvent(i int) error {
	if i < 0 || i >= len(p.slots) {
		return fmt.Errorf("%w: %s event %d, have %d",
			ErrEventOutOfRange, p.name, i, len(p.slots))
	}

	return nil
}

// HandleEvents is the interrupt-context dispatch pass. Each active event is
// passed to its handler and cleared once the handler returns, so an event
// raised again while its own handler runs is cleared in the same pass and
// never dispatched. Handlers must not call HandleEvents.
func (p *Peripheral) HandleEvents() {
	for evt := range p.slots {
		if !p.flags.IsEventActive(evt) {
			continue
		}

		slot := p.slots[evt]
		if slot.Handler != nil {
			slot.Handler(slot.Arg)
		}

		p.flags.ClearEvent(evt)

		p.InvokeHook(hooking.HookCtx{
			Domain: p,
			Pos:    HookPosEventHandled,
			Item:   evt,
			Detail: slot,
		})
	}
}

// BindIRQ installs HandleEvents as the handler of the peripheral's vector.
func (p *Peripheral) BindIRQ(vt *nvic.VectorTable) error {
	return vt.SetHandler(p.irq, p.HandleEvents)
}

// EnableInterrupts enables the interrupts selected by mask. It does nothing
// if the peripheral was built without interrupt control.
func (p *Peripheral) EnableInterrupts(mask uint32) {
	if p.interrupts != nil {
		p.interrupts.Enable(mask)
	}
}

// DisableInterrupts disables the interrupts selected by mask.
func (p *Peripheral) DisableInterrupts(mask uint32) {
	if p.interrupts != nil {
		p.interrupts.Disable(mask)
	}
}
