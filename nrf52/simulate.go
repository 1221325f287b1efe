package nrf52

import "github.com/sarchlab/mmiosim/regspace"

// GPIO register offsets.
const (
	GPIOOutOffset    = uint32(0x504)
	GPIOOutSetOffset = uint32(0x508)
	GPIOOutClrOffset = uint32(0x50C)
	GPIOInOffset     = uint32(0x510)
	GPIODirOffset    = uint32(0x514)
	GPIODirSetOffset = uint32(0x518)
	GPIODirClrOffset = uint32(0x51C)
)

// SimulateInterruptEnable makes the INTEN triple of the peripheral at base
// behave like hardware in s.
func SimulateInterruptEnable(s *regspace.Space, base uint32) error {
	_, err := regspace.BindSetClear(s,
		base+IntenOffset, base+IntenSetOffset, base+IntenClrOffset)

	return err
}

// SimulateGPIO makes the OUT and DIR triples of the GPIO port at base
// behave like hardware in s and turns IN into a read-only register.
func SimulateGPIO(s *regspace.Space, base uint32) error {
	_, err := regspace.BindSetClear(s,
		base+GPIOOutOffset, base+GPIOOutSetOffset, base+GPIOOutClrOffset)
	if err != nil {
		return err
	}

	_, err = regspace.BindSetClear(s,
		base+GPIODirOffset, base+GPIODirSetOffset, base+GPIODirClrOffset)
	if err != nil {
		return err
	}

	return s.SetAddrIOHandler(base+GPIOInOffset, &regspace.IgnoreWritesHandler{})
}
