package peripheral

import (
	"github.com/sarchlab/mmiosim/mmio"
	"github.com/sarchlab/mmiosim/naming"
	"github.com/sarchlab/mmiosim/nvic"
)

// Builder can build peripherals.
type Builder struct {
	bus        mmio.Bus
	base       uint32
	numEvents  int
	irq        nvic.Vector
	flags      EventFlags
	interrupts InterruptControl
	table      []EventSlot
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithBus sets the bus the peripheral's registers are reached through.
func (b Builder) WithBus(bus mmio.Bus) Builder {
	b.bus = bus
	return b
}

// WithBaseAddress sets the first address of the register window.
func (b Builder) WithBaseAddress(base uint32) Builder {
	b.base = base
	return b
}

// WithNumEvents sets the number of event slots.
func (b Builder) WithNumEvents(n int) Builder {
	b.numEvents = n
	return b
}

// WithIRQ sets the interrupt vector.
func (b Builder) WithIRQ(irq nvic.Vector) Builder {
	b.irq = irq
	return b
}

// WithEventFlags sets the capability that detects and clears events.
func (b Builder) WithEventFlags(flags EventFlags) Builder {
	b.flags = flags
	return b
}

// WithInterruptControl sets the capability that enables and disables
// interrupts.
func (b Builder) WithInterruptControl(ic InterruptControl) Builder {
	b.interrupts = ic
	return b
}

// WithHandlerTable sets the handler table. The table must hold at least as
// many slots as there are events; the peripheral takes it over. Without a
// table the builder allocates one.
func (b Builder) WithHandlerTable(table []EventSlot) Builder {
	b.table = table
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.bus == nil {
		panic("peripheral requires a bus")
	}

	if b.flags == nil {
		panic("peripheral requires event flags")
	}

	if b.numEvents < 0 {
		panic("number of events must not be negative")
	}

	if b.table != nil && len(b.table) < b.numEvents {
		panic("handler table is shorter than the number of events")
	}
}

// Build creates a peripheral with the given name. The name must follow the
// naming convention, for example "CLOCK" or "Board.RTC[1]".
func (b Builder) Build(name string) *Peripheral {
	b.parametersMustBeValid()
	naming.MustBeValid(name)

	table := b.table
	if table == nil {
		table = make([]EventSlot, b.numEvents)
	}

	return &Peripheral{
		name:       name,
		bus:        b.bus,
		base:       b.base,
		irq:        b.irq,
		flags:      b.flags,
		interrupts: b.interrupts,
		slots:      table[:b.numEvents],
	}
}
