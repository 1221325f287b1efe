// Package tracing turns register-level hook notifications into traces.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/mmiosim/hooking"
	"github.com/sarchlab/mmiosim/peripheral"
	"github.com/sarchlab/mmiosim/regspace"
)

// Access is one journaled register access.
type Access struct {
	Seq   int
	Entry regspace.JournalEntry
}

// Event is one event handled by a peripheral's dispatch pass.
type Event struct {
	Peripheral string
	Index      int
	Arg        int
	Handled    bool
}

// A Tracer receives accesses and events.
type Tracer interface {
	TraceAccess(a Access)
	TraceEvent(e Event)
}

// CollectTrace lets the tracer collect traces from a register space or a
// peripheral.
func CollectTrace(domain hooking.Hookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf("domain already has tracer %s",
				reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

type named interface {
	Name() string
}

// A traceHook forwards hook invocations to a tracer.
type traceHook struct {
	t Tracer
}

func (h *traceHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case regspace.HookPosRead, regspace.HookPosWrite:
		h.t.TraceAccess(Access{
			Seq:   ctx.Detail.(int),
			Entry: ctx.Item.(regspace.JournalEntry),
		})
	case peripheral.HookPosEventHandled:
		slot := ctx.Detail.(peripheral.EventSlot)
		e := Event{
			Index:   ctx.Item.(int),
			Arg:     slot.Arg,
			Handled: slot.Handler != nil,
		}

		if n, ok := ctx.Domain.(named); ok {
			e.Peripheral = n.Name()
		}

		h.t.TraceEvent(e)
	}
}
