package tracing

import (
	"context"

	"github.com/sarchlab/mmiosim/datarecording"
	"github.com/sarchlab/mmiosim/regspace"
)

// Table names used by DBTracer.
const (
	AccessTable = "register_access"
	EventTable  = "event_dispatch"
)

type accessEntry struct {
	Seq   int
	Op    string
	Addr  uint32
	Value uint32
}

type eventEntry struct {
	Seq         int
	AfterAccess int
	Peripheral  string
	Event       int
	Arg         int
	Handled     bool
}

// DBTracer records accesses and events into a data recorder.
type DBTracer struct {
	dataRecorder datarecording.DataRecorder
	numAccesses  int
	numEvents    int
}

// NewDBTracer creates a DBTracer and the tables it writes to.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{dataRecorder: dataRecorder}

	t.dataRecorder.CreateTable(AccessTable, accessEntry{})
	t.dataRecorder.CreateTable(EventTable, eventEntry{})

	return t
}

// TraceAccess records the access. Accesses are numbered by the tracer rather
// than by their journal position, which restarts when the space is reset.
func (t *DBTracer) TraceAccess(a Access) {
	t.dataRecorder.InsertData(AccessTable, accessEntry{
		Seq:   t.numAccesses,
		Op:    a.Entry.Op.String(),
		Addr:  a.Entry.Addr,
		Value: a.Entry.Value,
	})

	t.numAccesses++
}

// TraceEvent records the event together with the number of accesses
// recorded before it.
func (t *DBTracer) TraceEvent(e Event) {
	t.dataRecorder.InsertData(EventTable, eventEntry{
		Seq:         t.numEvents,
		AfterAccess: t.numAccesses,
		Peripheral:  e.Peripheral,
		Event:       e.Index,
		Arg:         e.Arg,
		Handled:     e.Handled,
	})

	t.numEvents++
}

// Flush writes buffered records to the database.
func (t *DBTracer) Flush() {
	t.dataRecorder.Flush()
}

// ReadJournal loads the accesses recorded by a DBTracer, in journal order.
func ReadJournal(
	ctx context.Context,
	reader datarecording.DataReader,
) ([]regspace.JournalEntry, error) {
	reader.MapTable(AccessTable, accessEntry{})

	results, _, err := reader.Query(ctx, AccessTable,
		datarecording.QueryParams{OrderBy: "Seq"})
	if err != nil {
		return nil, err
	}

	journal := make([]regspace.JournalEntry, 0, len(results))

	for _, r := range results {
		entry := r.(*accessEntry)

		op, err := regspace.ParseOp(entry.Op)
		if err != nil {
			return nil, err
		}

		journal = append(journal, regspace.JournalEntry{
			Op:    op,
			Addr:  entry.Addr,
			Value: entry.Value,
		})
	}

	return journal, nil
}

// ReadEvents loads the events recorded by a DBTracer, in the order they were
// dispatched.
func ReadEvents(
	ctx context.Context,
	reader datarecording.DataReader,
) ([]Event, error) {
	reader.MapTable(EventTable, eventEntry{})

	results, _, err := reader.Query(ctx, EventTable,
		datarecording.QueryParams{OrderBy: "Seq"})
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(results))

	for _, r := range results {
		entry := r.(*eventEntry)
		events = append(events, Event{
			Peripheral: entry.Peripheral,
			Index:      entry.Event,
			Arg:        entry.Arg,
			Handled:    entry.Handled,
		})
	}

	return events, nil
}
