// Package monitoring serves the state of a simulated register space over
// HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/mmiosim/hooking"
	"github.com/sarchlab/mmiosim/monitoring/web"
	"github.com/sarchlab/mmiosim/nvic"
	"github.com/sarchlab/mmiosim/peripheral"
	"github.com/sarchlab/mmiosim/regspace"
)

// DispatchQueueSize is the number of dispatch requests that can wait for
// the simulation to pick them up.
const DispatchQueueSize = 16

type registerState struct {
	Addr   uint32 `json:"addr"`
	Value  uint32 `json:"value"`
	Reads  uint64 `json:"reads"`
	Writes uint64 `json:"writes"`
}

type slotView struct {
	Event int
	Bound bool
	Arg   int
}

// peripheralView is the monitor's copy of a peripheral. It is updated from
// hooks, which run on the goroutine that owns the peripheral.
type peripheralView struct {
	Name      string
	Base      uint32
	IRQ       string
	NumEvents int
	Handled   uint64
	Slots     []slotView
}

func viewOf(p *peripheral.Peripheral) *peripheralView {
	v := &peripheralView{
		Name:      p.Name(),
		Base:      p.BaseAddress(),
		IRQ:       p.IRQ().String(),
		NumEvents: p.NumEvents(),
		Slots:     make([]slotView, p.NumEvents()),
	}

	for i := range v.Slots {
		slot, _ := p.Slot(i)
		v.Slots[i] = slotView{Event: i, Bound: slot.Handler != nil, Arg: slot.Arg}
	}

	return v
}

func (v *peripheralView) clone() *peripheralView {
	c := *v
	c.Slots = slices.Clone(v.Slots)

	return &c
}

func (v *peripheralView) boundSlots() int {
	n := 0

	for _, s := range v.Slots {
		if s.Bound {
			n++
		}
	}

	return n
}

// Monitor mirrors the accesses of a register space and exposes them, together
// with the registered peripherals, through a web server. The mirror is fed by
// hooks, so the server never reads the space or the peripherals directly.
type Monitor struct {
	lock sync.Mutex

	portNumber  int
	openBrowser bool

	journal     []regspace.JournalEntry
	registers   map[uint32]*registerState
	peripherals []*peripheralView
	vectorTable *nvic.VectorTable
	dispatches  chan nvic.Vector
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		registers:  make(map[uint32]*registerState),
		dispatches: make(chan nvic.Vector, DispatchQueueSize),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the dashboard in the default browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterSpace starts mirroring the accesses of the space.
func (m *Monitor) RegisterSpace(s *regspace.Space) {
	s.AcceptHook(m)
}

// RegisterVectorTable enables dispatch requests for the table's vectors.
func (m *Monitor) RegisterVectorTable(vt *nvic.VectorTable) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.vectorTable = vt
}

// RegisterPeripheral registers a peripheral to be monitored. It must be
// called from the goroutine that owns the peripheral.
func (m *Monitor) RegisterPeripheral(p *peripheral.Peripheral) {
	m.lock.Lock()
	m.peripherals = append(m.peripherals, viewOf(p))
	m.lock.Unlock()

	p.AcceptHook(m)
}

// DispatchRequests returns the vectors requested through the web interface.
// The owner of the vector table is expected to dispatch them.
func (m *Monitor) DispatchRequests() <-chan nvic.Vector {
	return m.dispatches
}

// Func updates the mirror from the hooks of the space and the peripherals.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	m.lock.Lock()
	defer m.lock.Unlock()

	switch ctx.Pos {
	case regspace.HookPosRead, regspace.HookPosWrite:
		m.recordAccess(ctx.Item.(regspace.JournalEntry))
	case peripheral.HookPosEventHandled:
		if v := m.viewOfDomain(ctx.Domain); v != nil {
			v.Handled++
		}
	case peripheral.HookPosHandlerChanged:
		v := m.viewOfDomain(ctx.Domain)
		if v == nil {
			return
		}

		i := ctx.Item.(int)
		slot := ctx.Detail.(peripheral.EventSlot)
		v.Slots[i] = slotView{Event: i, Bound: slot.Handler != nil, Arg: slot.Arg}
	}
}

func (m *Monitor) viewOfDomain(domain hooking.Hookable) *peripheralView {
	p, ok := domain.(*peripheral.Peripheral)
	if !ok {
		return nil
	}

	for _, v := range m.peripherals {
		if v.Name == p.Name() {
			return v
		}
	}

	return nil
}

func (m *Monitor) recordAccess(entry regspace.JournalEntry) {
	m.journal = append(m.journal, entry)

	reg, ok := m.registers[entry.Addr]
	if !ok {
		reg = &registerState{Addr: entry.Addr}
		m.registers[entry.Addr] = reg
	}

	reg.Value = entry.Value

	if entry.Op.IsWrite() {
		reg.Writes++
	} else {
		reg.Reads++
	}
}

// Router returns the router that serves the monitoring API.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/journal", m.listJournal)
	r.HandleFunc("/api/register/{addr}", m.registerDetails)
	r.HandleFunc("/api/dispatch/{vector}", m.requestDispatch)
	r.HandleFunc("/api/peripherals", m.listPeripherals)
	r.HandleFunc("/api/peripheral/{name}", m.peripheralDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(web.Handler())

	return r
}

// StartServer starts the monitor as a web server and returns the URL it
// listens on.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	r := m.Router()

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	if m.openBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return url
}

type journalEntryRsp struct {
	Seq   int    `json:"seq"`
	Op    string `json:"op"`
	Addr  uint32 `json:"addr"`
	Value uint32 `json:"value"`
}

func (m *Monitor) listJournal(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := parsePage(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	m.lock.Lock()

	end := len(m.journal)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	rsp := make([]journalEntryRsp, 0)
	for i := offset; i < end; i++ {
		e := m.journal[i]
		rsp = append(rsp, journalEntryRsp{
			Seq:   i,
			Op:    e.Op.String(),
			Addr:  e.Addr,
			Value: e.Value,
		})
	}

	m.lock.Unlock()

	writeJSON(w, rsp)
}

func parsePage(r *http.Request) (offset, limit int, err error) {
	offsetStr := r.URL.Query().Get("offset")
	if offsetStr == "" {
		offsetStr = "0"
	}

	offset, err = strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset %q", offsetStr)
	}

	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "0"
	}

	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 0 {
		return 0, 0, fmt.Errorf("invalid limit %q", limitStr)
	}

	return offset, limit, nil
}

func (m *Monitor) registerDetails(w http.ResponseWriter, r *http.Request) {
	addrStr := mux.Vars(r)["addr"]

	addr, err := strconv.ParseUint(addrStr, 0, 32)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: invalid address %s", addrStr)

		return
	}

	m.lock.Lock()
	reg, ok := m.registers[uint32(addr)]

	var rsp registerState
	if ok {
		rsp = *reg
	}
	m.lock.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Register never accessed"))
		dieOnErr(err)

		return
	}

	writeJSON(w, rsp)
}

func (m *Monitor) requestDispatch(w http.ResponseWriter, r *http.Request) {
	vectorStr := mux.Vars(r)["vector"]

	n, err := strconv.Atoi(vectorStr)
	if err != nil || n < 0 || n >= nvic.NumVectors {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: invalid vector %s", vectorStr)

		return
	}

	m.lock.Lock()
	hasTable := m.vectorTable != nil
	m.lock.Unlock()

	if !hasTable {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "Error: no vector table registered")

		return
	}

	select {
	case m.dispatches <- nvic.Vector(n):
		w.WriteHeader(http.StatusAccepted)
	default:
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "Error: too many pending dispatch requests")
	}
}

type peripheralRsp struct {
	Name      string `json:"name"`
	Base      uint32 `json:"base"`
	IRQ       string `json:"irq"`
	NumEvents int    `json:"num_events"`
	Handlers  int    `json:"handlers"`
	Handled   uint64 `json:"handled"`
}

func (m *Monitor) listPeripherals(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()

	rsp := make([]peripheralRsp, 0, len(m.peripherals))
	for _, v := range m.peripherals {
		rsp = append(rsp, peripheralRsp{
			Name:      v.Name,
			Base:      v.Base,
			IRQ:       v.IRQ,
			NumEvents: v.NumEvents,
			Handlers:  v.boundSlots(),
			Handled:   v.Handled,
		})
	}

	m.lock.Unlock()

	writeJSON(w, rsp)
}

func (m *Monitor) peripheralDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	p := m.findPeripheralOr404(w, name)
	if p == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(p)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	Peripheral string `json:"peripheral,omitempty"`
	FieldName  string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	p := m.findPeripheralOr404(w, req.Peripheral)
	if p == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(p)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

// findPeripheralOr404 returns a copy of the named peripheral's view, which
// can be serialized without holding the lock.
func (m *Monitor) findPeripheralOr404(
	w http.ResponseWriter,
	name string,
) *peripheralView {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, v := range m.peripherals {
		if v.Name == name {
			return v.clone()
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Peripheral not found"))
	dieOnErr(err)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
