package tracing

import (
	"sync"

	"github.com/sarchlab/mmiosim/regspace"
)

// CountTracer counts accesses per op and handled events per peripheral. It
// can be read from another goroutine, such as the monitoring server.
type CountTracer struct {
	lock        sync.Mutex
	opCount     map[regspace.Op]uint64
	eventCount  map[string]uint64
	lastAccess  Access
	numAccesses uint64
}

// NewCountTracer creates a CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{
		opCount:    make(map[regspace.Op]uint64),
		eventCount: make(map[string]uint64),
	}
}

// TraceAccess counts the access.
func (t *CountTracer) TraceAccess(a Access) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.opCount[a.Entry.Op]++
	t.numAccesses++
	t.lastAccess = a
}

// TraceEvent counts the event.
func (t *CountTracer) TraceEvent(e Event) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.eventCount[e.Peripheral]++
}

// OpCount returns the number of accesses of kind op.
func (t *CountTracer) OpCount(op regspace.Op) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.opCount[op]
}

// EventCount returns the number of events the named peripheral handled.
func (t *CountTracer) EventCount(peripheral string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.eventCount[peripheral]
}

// NumAccesses returns the total number of accesses and the last one seen.
func (t *CountTracer) NumAccesses() (uint64, Access) {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.numAccesses, t.lastAccess
}
