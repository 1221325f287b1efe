// Package regspace provides a simulated register space.
//
// A Space stores one value per address, lets IOHandlers intercept accesses to
// model hardware register quirks, and journals every access made through its
// mmio.Bus methods. Tests build one Space each; production code that runs
// against simulated hardware builds one at startup and passes it around.
//
// A Space is not safe for concurrent use.
package regspace

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/mmiosim/hooking"
	"github.com/sarchlab/mmiosim/mmio"
)

// HookPosRead triggers after every journaled read. The hook item is the
// JournalEntry and the detail its sequence number in the journal.
var HookPosRead = &hooking.HookPos{Name: "RegRead"}

// HookPosWrite triggers after every journaled write.
var HookPosWrite = &hooking.HookPos{Name: "RegWrite"}

var (
	// ErrHandlerOverlap is returned when a handler binding would cover an
	// address that already has a handler.
	ErrHandlerOverlap = errors.New("io handler already bound in range")

	// ErrInvalidRange is returned for an empty or inverted address range.
	ErrInvalidRange = errors.New("invalid address range")
)

type rangeBinding struct {
	start, end uint32
	handler    IOHandler
}

func (r rangeBinding) contains(addr uint32) bool {
	return addr >= r.start && addr < r.end
}

// Space is a simulated register space.
type Space struct {
	hooking.HookableBase

	values   map[uint32]uint32
	ptrs     map[uint32]any
	handlers map[uint32]IOHandler
	ranges   []rangeBinding
	journal  []JournalEntry
}

var _ mmio.Bus = (*Space)(nil)

// NewSpace creates an empty register space.
func NewSpace() *Space {
	s := &Space{}
	s.Reset()

	return s
}

// Reset drops all stored values, pointer slots, handler bindings and the
// journal. Registered hooks are kept.
func (s *Space) Reset() {
	s.values = make(map[uint32]uint32)
	s.ptrs = make(map[uint32]any)
	s.handlers = make(map[uint32]IOHandler)
	s.ranges = nil
	s.journal = nil
}

// Read8 reads an 8-bit register.
func (s *Space) Read8(addr uint32) uint8 {
	v := uint8(s.read(addr))
	s.record(OpRead8, addr, uint32(v))

	return v
}

// Read16 reads a 16-bit register.
func (s *Space) Read16(addr uint32) uint16 {
	v := uint16(s.read(addr))
	s.record(OpRead16, addr, uint32(v))

	return v
}

// Read32 reads a 32-bit register.
func (s *Space) Read32(addr uint32) uint32 {
	v := s.read(addr)
	s.record(OpRead32, addr, v)

	return v
}

// Write8 writes an 8-bit register.
func (s *Space) Write8(addr uint32, value uint8) {
	s.write(OpWrite8, addr, uint32(value))
}

// Write16 writes a 16-bit register.
func (s *Space) Write16(addr uint32, value uint16) {
	s.write(OpWrite16, addr, uint32(value))
}

// Write32 writes a 32-bit register.
func (s *Space) Write32(addr uint32, value uint32) {
	s.write(OpWrite32, addr, value)
}

// ReadPtr reads a pointer slot. Pointer slots let test fixtures pass host
// objects through the simulated memory; IOHandlers do not apply to them.
func (s *Space) ReadPtr(addr uint32) any {
	p := s.ptrs[addr]
	s.record(OpReadPtr, addr, ptrPresence(p))

	return p
}

// WritePtr writes a pointer slot.
func (s *Space) WritePtr(addr uint32, p any) {
	s.ptrs[addr] = p
	s.record(OpWritePtr, addr, ptrPresence(p))
}

func ptrPresence(p any) uint32 {
	if p == nil {
		return 0
	}

	return 1
}

func (s *Space) read(addr uint32) uint32 {
	v := s.values[addr]

	if h := s.handlerAt(addr); h != nil {
		v = h.ReadReg(addr, v)
	}

	return v
}

func (s *Space) write(op Op, addr, value uint32) {
	if h := s.handlerAt(addr); h != nil {
		value = h.WriteReg(addr, s.values[addr], value)
	}

	s.values[addr] = value
	s.record(op, addr, value)
}

func (s *Space) record(op Op, addr, value uint32) {
	entry := JournalEntry{Op: op, Addr: addr, Value: value}
	s.journal = append(s.journal, entry)

	if s.NumHooks() == 0 {
		return
	}

	pos := HookPosRead
	if op.IsWrite() {
		pos = HookPosWrite
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   entry,
		Detail: len(s.journal) - 1,
	})
}

// ValueAt returns the stored value, bypassing handlers and the journal.
func (s *Space) ValueAt(addr uint32) uint32 {
	return s.values[addr]
}

// ValueAtOr returns the stored value, or def if nothing was ever stored at
// addr.
func (s *Space) ValueAtOr(addr, def uint32) uint32 {
	v, ok := s.values[addr]
	if !ok {
		return def
	}

	return v
}

// SetValueAt stores a value, bypassing handlers and the journal.
func (s *Space) SetValueAt(addr, value uint32) {
	s.values[addr] = value
}

// PtrAt returns a pointer slot, bypassing the journal.
func (s *Space) PtrAt(addr uint32) any {
	return s.ptrs[addr]
}

// SetPtrAt sets a pointer slot, bypassing the journal.
func (s *Space) SetPtrAt(addr uint32, p any) {
	s.ptrs[addr] = p
}

// SetAddrIOHandler binds h to a single address.
func (s *Space) SetAddrIOHandler(addr uint32, h IOHandler) error {
	mustNotBeNil(h)

	if s.handlerAt(addr) != nil {
		return fmt.Errorf("%w: 0x%08x", ErrHandlerOverlap, addr)
	}

	s.handlers[addr] = h

	return nil
}

// SetRangeIOHandler binds h to every address in [start, end). The binding
// is rejected if any address of the range already has a handler.
func (s *Space) SetRangeIOHandler(start, end uint32, h IOHandler) error {
	mustNotBeNil(h)

	if start >= end {
		return fmt.Errorf("%w: [0x%08x, 0x%08x)", ErrInvalidRange, start, end)
	}

	for _, r := range s.ranges {
		if r.start < end && start < r.end {
			return fmt.Errorf("%w: [0x%08x, 0x%08x) overlaps [0x%08x, 0x%08x)",
				ErrHandlerOverlap, start, end, r.start, r.end)
		}
	}

	for addr := range s.handlers {
		if addr >= start && addr < end {
			return fmt.Errorf("%w: 0x%08x", ErrHandlerOverlap, addr)
		}
	}

	s.ranges = append(s.ranges, rangeBinding{start: start, end: end, handler: h})

	return nil
}

// RemoveIOHandler removes the binding that covers addr. For a range binding
// the whole range is released. It reports whether a binding was removed.
func (s *Space) RemoveIOHandler(addr uint32) bool {
	if _, ok := s.handlers[addr]; ok {
		delete(s.handlers, addr)
		return true
	}

	for i, r := range s.ranges {
		if r.contains(addr) {
			s.ranges = append(s.ranges[:i], s.ranges[i+1:]...)
			return true
		}
	}

	return false
}

// IOHandlerAt returns the handler bound to addr, or nil.
func (s *Space) IOHandlerAt(addr uint32) IOHandler {
	return s.handlerAt(addr)
}

func (s *Space) handlerAt(addr uint32) IOHandler {
	if h, ok := s.handlers[addr]; ok {
		return h
	}

	for _, r := range s.ranges {
		if r.contains(addr) {
			return r.handler
		}
	}

	return nil
}

func mustNotBeNil(h IOHandler) {
	if h == nil {
		panic("io handler must not be nil")
	}
}

// Journal returns a copy of the access journal in call order.
func (s *Space) Journal() []JournalEntry {
	journal := make([]JournalEntry, len(s.journal))
	copy(journal, s.journal)

	return journal
}

// JournalLen returns the number of journaled accesses.
func (s *Space) JournalLen() int {
	return len(s.journal)
}

// OpCount returns how many journaled accesses are of kind op.
func (s *Space) OpCount(op Op) int {
	n := 0

	for _, e := range s.journal {
		if e.Op == op {
			n++
		}
	}

	return n
}

// OpCountAt returns how many journaled accesses of kind op targeted addr.
func (s *Space) OpCountAt(op Op, addr uint32) int {
	n := 0

	for _, e := range s.journal {
		if e.Op == op && e.Addr == addr {
			n++
		}
	}

	return n
}

// PrintJournal writes one "(OP, ADDR, VALUE)" line per journaled access.
func (s *Space) PrintJournal(w io.Writer) error {
	for _, e := range s.journal {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return err
		}
	}

	return nil
}
