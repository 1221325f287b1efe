package regspace

import (
	"fmt"
	"slices"
)

// An IOHandler intercepts the accesses made to the addresses it is bound to.
//
// WriteReg receives the value currently stored and the value being written
// and returns the value that should be stored. ReadReg receives the stored
// value and returns the value the reader observes.
type IOHandler interface {
	WriteReg(addr, oldValue, newValue uint32) uint32
	ReadReg(addr, value uint32) uint32
}

// Backdoor gives handlers access to stored values without going through the
// journal or through other handlers.
type Backdoor interface {
	ValueAt(addr uint32) uint32
	SetValueAt(addr, value uint32)
}

// PassthroughHandler stores what is written and returns what is stored. It
// is meant to be embedded by handlers that only override one direction.
type PassthroughHandler struct{}

// WriteReg returns newValue.
func (PassthroughHandler) WriteReg(_, _, newValue uint32) uint32 {
	return newValue
}

// ReadReg returns value.
func (PassthroughHandler) ReadReg(_, value uint32) uint32 {
	return value
}

// SetClearHandler models a register that is also reachable through a SET
// alias, which ORs the written bits in, and a CLR alias, which clears them.
// After a write through an alias all three addresses hold the same value.
type SetClearHandler struct {
	mem     Backdoor
	rwAddr  uint32
	setAddr uint32
	clrAddr uint32
}

// NewSetClearHandler creates a handler for the rw/set/clr triple. The handler
// still has to be bound to each of the three addresses; BindSetClear does
// both steps.
func NewSetClearHandler(mem Backdoor, rw, set, clr uint32) *SetClearHandler {
	return &SetClearHandler{
		mem:     mem,
		rwAddr:  rw,
		setAddr: set,
		clrAddr: clr,
	}
}

// BindSetClear creates a SetClearHandler and binds it to all three
// addresses of s. rw may equal set, as for registers such as the NVIC ISER
// that read back the state and set bits on write. If any of the addresses
// already has a handler, nothing is bound.
func BindSetClear(s *Space, rw, set, clr uint32) (*SetClearHandler, error) {
	addrs := []uint32{rw}
	for _, addr := range []uint32{set, clr} {
		if !slices.Contains(addrs, addr) {
			addrs = append(addrs, addr)
		}
	}

	for _, addr := range addrs {
		if s.IOHandlerAt(addr) != nil {
			return nil, fmt.Errorf("%w: 0x%08x", ErrHandlerOverlap, addr)
		}
	}

	h := NewSetClearHandler(s, rw, set, clr)

	for _, addr := range addrs {
		if err := s.SetAddrIOHandler(addr, h); err != nil {
			panic(err)
		}
	}

	return h, nil
}

// WriteReg applies the SET/CLR semantics. Alias writes operate on the
// plain register's value, which a plain write may have changed since the
// aliases were last mirrored.
func (h *SetClearHandler) WriteReg(addr, _, newValue uint32) uint32 {
	value := newValue

	switch addr {
	case h.setAddr:
		value = h.mem.ValueAt(h.rwAddr) | newValue
	case h.clrAddr:
		value = h.mem.ValueAt(h.rwAddr) &^ newValue
	}

	if addr == h.setAddr || addr == h.clrAddr {
		h.mem.SetValueAt(h.rwAddr, value)
		h.mem.SetValueAt(h.setAddr, value)
		h.mem.SetValueAt(h.clrAddr, value)
	}

	return value
}

// ReadReg returns the plain register's value for reads through an alias.
func (h *SetClearHandler) ReadReg(addr, value uint32) uint32 {
	if addr == h.setAddr || addr == h.clrAddr {
		return h.mem.ValueAt(h.rwAddr)
	}

	return value
}

// IgnoreWritesHandler models a read-only or hardware-latched register. Every
// write is dropped and the stored value is kept.
type IgnoreWritesHandler struct {
	PassthroughHandler

	ignored []uint32
}

// WriteReg records the dropped value and returns oldValue.
func (h *IgnoreWritesHandler) WriteReg(_, oldValue, newValue uint32) uint32 {
	h.ignored = append(h.ignored, newValue)
	return oldValue
}

// Ignored returns the values that were written and dropped, in order.
func (h *IgnoreWritesHandler) Ignored() []uint32 {
	return h.ignored
}

// ReadSequenceHandler replays a scripted sequence of values, one per read.
// Once the sequence is exhausted reads observe the stored value again.
type ReadSequenceHandler struct {
	PassthroughHandler

	seq []uint32
}

// Push appends values to the sequence.
func (h *ReadSequenceHandler) Push(values ...uint32) {
	h.seq = append(h.seq, values...)
}

// Len returns the number of values not yet read.
func (h *ReadSequenceHandler) Len() int {
	return len(h.seq)
}

// ReadReg pops the next scripted value, if any.
func (h *ReadSequenceHandler) ReadReg(_, value uint32) uint32 {
	if len(h.seq) == 0 {
		return value
	}

	value = h.seq[0]
	h.seq = h.seq[1:]

	return value
}

// Value is the set of register widths a WriteSink can capture.
type Value interface {
	~uint8 | ~uint16 | ~uint32
}

// WriteSink captures every value written, narrowed to T. Written values are
// passed through unchanged, so it suits output-only registers such as a
// transmit buffer.
type WriteSink[T Value] struct {
	PassthroughHandler

	data []T
}

// NewWriteSink creates an empty sink.
func NewWriteSink[T Value]() *WriteSink[T] {
	return &WriteSink[T]{}
}

// WriteReg appends the narrowed value.
func (s *WriteSink[T]) WriteReg(_, _, newValue uint32) uint32 {
	s.data = append(s.data, T(newValue))
	return newValue
}

// Data returns the captured values in write order.
func (s *WriteSink[T]) Data() []T {
	return s.data
}

// Clear drops the captured values.
func (s *WriteSink[T]) Clear() {
	s.data = nil
}
