package nvic

import (
	"github.com/sarchlab/mmiosim/mmio"
	"github.com/sarchlab/mmiosim/regspace"
)

// NVIC register block addresses.
const (
	ISERBase = uint32(0xE000E100)
	ICERBase = uint32(0xE000E180)
	ISPRBase = uint32(0xE000E200)
	ICPRBase = uint32(0xE000E280)
	IPRBase  = uint32(0xE000E400)
)

// Controller drives the NVIC enable, pending and priority registers of
// external interrupt lines.
type Controller struct {
	bus mmio.Bus
}

// NewController creates a Controller that accesses the NVIC through bus.
func NewController(bus mmio.Bus) *Controller {
	return &Controller{bus: bus}
}

func wordAndBit(irq int) (offset, bit uint32) {
	return uint32(irq>>5) * 4, 1 << uint(irq&0x1f)
}

// Enable enables external interrupt line irq.
func (c *Controller) Enable(irq int) {
	offset, bit := wordAndBit(irq)
	c.bus.Write32(ISERBase+offset, bit)
}

// Disable disables external interrupt line irq.
func (c *Controller) Disable(irq int) {
	offset, bit := wordAndBit(irq)
	c.bus.Write32(ICERBase+offset, bit)
}

// IsEnabled reports whether irq is enabled.
func (c *Controller) IsEnabled(irq int) bool {
	offset, bit := wordAndBit(irq)
	return c.bus.Read32(ISERBase+offset)&bit != 0
}

// SetPending marks irq as pending.
func (c *Controller) SetPending(irq int) {
	offset, bit := wordAndBit(irq)
	c.bus.Write32(ISPRBase+offset, bit)
}

// ClearPending clears the pending state of irq.
func (c *Controller) ClearPending(irq int) {
	offset, bit := wordAndBit(irq)
	c.bus.Write32(ICPRBase+offset, bit)
}

// SetPriority writes the priority byte of irq.
func (c *Controller) SetPriority(irq int, priority uint8) {
	c.bus.Write8(IPRBase+uint32(irq), priority)
}

// SimulateRegisters binds set/clear handlers to the enable and pending
// words of s so that a simulated NVIC behaves like the real one: writing 1
// to ISER/ISPR sets a bit, writing 1 to ICER/ICPR clears it and both
// addresses read back the current state.
func SimulateRegisters(s *regspace.Space) error {
	words := uint32((NumIRQs + 31) / 32)

	for w := uint32(0); w < words; w++ {
		offset := w * 4

		_, err := regspace.BindSetClear(s,
			ISERBase+offset, ISERBase+offset, ICERBase+offset)
		if err != nil {
			return err
		}

		_, err = regspace.BindSetClear(s,
			ISPRBase+offset, ISPRBase+offset, ICPRBase+offset)
		if err != nil {
			return err
		}
	}

	return nil
}
