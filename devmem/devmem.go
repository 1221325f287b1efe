// Package devmem reaches real memory-mapped registers from a Linux user
// space process by mapping a window of /dev/mem (or any file that stands in
// for it).
package devmem

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/sarchlab/mmiosim/mmio"
)

// DefaultPath is the physical memory device.
const DefaultPath = "/dev/mem"

// Mapping is a window of physical memory mapped into the process. It
// implements mmio.Bus with addresses in the physical address space.
type Mapping struct {
	base   uint32
	size   uint32
	region []byte
	window []byte
}

var _ mmio.Bus = (*Mapping)(nil)

// Open maps size bytes of path starting at physical address base.
func Open(path string, base, size uint32) (*Mapping, error) {
	if size == 0 {
		return nil, errors.New("devmem: empty window")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "devmem: open %s", path)
	}
	defer f.Close()

	pageSize := uint32(os.Getpagesize())
	pageBase := base &^ (pageSize - 1)
	lead := base - pageBase

	region, err := unix.Mmap(int(f.Fd()), int64(pageBase), int(lead+size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err,
			"devmem: map 0x%08x+0x%x of %s", base, size, path)
	}

	return &Mapping{
		base:   base,
		size:   size,
		region: region,
		window: region[lead : lead+size],
	}, nil
}

// Close unmaps the window. The Mapping must not be used afterwards.
func (m *Mapping) Close() error {
	if m.region == nil {
		return nil
	}

	err := unix.Munmap(m.region)
	m.region = nil
	m.window = nil

	return errors.Wrap(err, "devmem: unmap")
}

// Base returns the first mapped physical address.
func (m *Mapping) Base() uint32 {
	return m.base
}

// Size returns the size of the window in bytes.
func (m *Mapping) Size() uint32 {
	return m.size
}

func (m *Mapping) ptr(addr, width uint32) unsafe.Pointer {
	if addr < m.base || uint64(addr-m.base)+uint64(width) > uint64(m.size) {
		panic(fmt.Sprintf("devmem: address 0x%08x outside window 0x%08x+0x%x",
			addr, m.base, m.size))
	}

	if addr%width != 0 {
		panic(fmt.Sprintf("devmem: unaligned %d-byte access at 0x%08x",
			width, addr))
	}

	return unsafe.Pointer(&m.window[addr-m.base])
}

// Read8 reads a byte register.
func (m *Mapping) Read8(addr uint32) uint8 {
	return *(*uint8)(m.ptr(addr, 1))
}

// Read16 reads a half-word register.
func (m *Mapping) Read16(addr uint32) uint16 {
	return *(*uint16)(m.ptr(addr, 2))
}

// Read32 reads a word register.
func (m *Mapping) Read32(addr uint32) uint32 {
	return atomic.LoadUint32((*uint32)(m.ptr(addr, 4)))
}

// Write8 writes a byte register.
func (m *Mapping) Write8(addr uint32, value uint8) {
	*(*uint8)(m.ptr(addr, 1)) = value
}

// Write16 writes a half-word register.
func (m *Mapping) Write16(addr uint32, value uint16) {
	*(*uint16)(m.ptr(addr, 2)) = value
}

// Write32 writes a word register.
func (m *Mapping) Write32(addr uint32, value uint32) {
	atomic.StoreUint32((*uint32)(m.ptr(addr, 4)), value)
}
