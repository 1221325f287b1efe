package tracing

import "log"

// LogTracer prints every access and event through a logger.
type LogTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a LogTracer.
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

// TraceAccess prints the access as a journal triple.
func (t *LogTracer) TraceAccess(a Access) {
	t.logger.Printf("access, %d, %s\n", a.Seq, a.Entry)
}

// TraceEvent prints the handled event.
func (t *LogTracer) TraceEvent(e Event) {
	t.logger.Printf("event, %s, %d, %d, %t\n",
		e.Peripheral, e.Index, e.Arg, e.Handled)
}
