// Package mmio defines the register access contract shared by driver code,
// the simulated register space and real memory-mapped hardware.
package mmio

// A Bus reads and writes fixed-width hardware registers. Addresses are
// identities only; a Bus implementation decides what they map to.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32

	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
}

// SetBits32 performs a read-modify-write that sets mask in the register.
func SetBits32(b Bus, addr, mask uint32) {
	b.Write32(addr, b.Read32(addr)|mask)
}

// ClearBits32 performs a read-modify-write that clears mask in the register.
func ClearBits32(b Bus, addr, mask uint32) {
	b.Write32(addr, b.Read32(addr)&^mask)
}

// WaitForBits32 spins until all bits in mask read back as set. It never
// times out.
func WaitForBits32(b Bus, addr, mask uint32) {
	for b.Read32(addr)&mask != mask {
	}
}
