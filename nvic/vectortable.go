// Package nvic provides interrupt dispatch for Cortex-M style interrupt
// controllers.
//
// A VectorTable maps vector numbers to handlers. Real trap entry and test
// code both reach a handler through VectorTable.Dispatch, so the handler
// runs to completion before Dispatch returns in either case.
package nvic

import (
	"errors"
	"fmt"
)

// Vector is an interrupt vector number. Vectors below NumExceptions are
// Cortex-M system exceptions; external interrupt line n is IRQ(n).
type Vector int

// NumExceptions is the number of system exception vectors that precede the
// external interrupt lines.
const NumExceptions = 16

// NumIRQs is the number of external interrupt lines.
const NumIRQs = 48

// NumVectors is the size of the vector table.
const NumVectors = NumExceptions + NumIRQs

// System exception vectors.
const (
	Reset      Vector = 1
	NMI        Vector = 2
	HardFault  Vector = 3
	MemManage  Vector = 4
	BusFault   Vector = 5
	UsageFault Vector = 6
	SVCall     Vector = 11
	DebugMon   Vector = 12
	PendSV     Vector = 14
	SysTick    Vector = 15
)

// IRQ returns the vector of external interrupt line n.
func IRQ(n int) Vector {
	return Vector(NumExceptions + n)
}

// IRQNumber returns the external interrupt line of v, or -1 for a system
// exception.
func (v Vector) IRQNumber() int {
	if v < NumExceptions {
		return -1
	}

	return int(v) - NumExceptions
}

func (v Vector) String() string {
	if v >= NumExceptions {
		return fmt.Sprintf("IRQ%d", v.IRQNumber())
	}

	return fmt.Sprintf("EXC%d", int(v))
}

// ErrVectorOutOfRange is returned when a vector does not fit the table.
var ErrVectorOutOfRange = errors.New("vector out of range")

// A Handler services one interrupt vector.
type Handler func()

func noop() {}

// VectorTable maps every vector to a handler.
type VectorTable struct {
	handlers [NumVectors]Handler
}

// NewVectorTable creates a table where every vector is bound to a no-op.
func NewVectorTable() *VectorTable {
	t := &VectorTable{}
	t.Init()

	return t
}

// Init rebinds every vector to a no-op.
func (t *VectorTable) Init() {
	for i := range t.handlers {
		t.handlers[i] = noop
	}
}

// SetHandler binds fn to v, replacing any previous binding. A nil fn
// unbinds the vector.
func (t *VectorTable) SetHandler(v Vector, fn Handler) error {
	if !inRange(v) {
		return fmt.Errorf("%w: %d", ErrVectorOutOfRange, int(v))
	}

	if fn == nil {
		fn = noop
	}

	t.handlers[v] = fn

	return nil
}

// Dispatch runs the handler bound to v. Dispatching an unbound or
// out-of-range vector does nothing.
func (t *VectorTable) Dispatch(v Vector) {
	if !inRange(v) {
		return
	}

	fn := t.handlers[v]
	if fn == nil {
		return
	}

	fn()
}

func inRange(v Vector) bool {
	return v >= 0 && v < NumVectors
}
