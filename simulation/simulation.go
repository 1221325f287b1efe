// Package simulation assembles a simulated register space, its vector table
// and the optional recording and monitoring services.
package simulation

import (
	"context"

	"github.com/sarchlab/mmiosim/datarecording"
	"github.com/sarchlab/mmiosim/monitoring"
	"github.com/sarchlab/mmiosim/nvic"
	"github.com/sarchlab/mmiosim/peripheral"
	"github.com/sarchlab/mmiosim/regspace"
	"github.com/sarchlab/mmiosim/tracing"
)

// A Simulation owns a register space and the services attached to it.
type Simulation struct {
	id          string
	space       *regspace.Space
	vectorTable *nvic.VectorTable

	dataRecorder datarecording.DataRecorder
	dbTracer     *tracing.DBTracer
	monitor      *monitoring.Monitor
	monitorURL   string

	peripherals     []*peripheral.Peripheral
	periphNameIndex map[string]int

	binders []BindFunc
}

// A BindFunc installs IOHandlers on a space.
type BindFunc func(s *regspace.Space) error

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Space returns the simulated register space.
//
// Space().Reset drops every IOHandler binding, including the simulated NVIC
// registers. Use Simulation.Reset to keep the bindings made through Bind.
func (s *Simulation) Space() *regspace.Space {
	return s.space
}

// Bind runs f on the space and remembers it, so that Reset can install the
// same handlers again.
func (s *Simulation) Bind(f BindFunc) error {
	if err := f(s.space); err != nil {
		return err
	}

	s.binders = append(s.binders, f)

	return nil
}

// Reset clears the register space and then repeats every Bind in the order
// the binds were made. Hooks on the space and the peripherals are kept.
func (s *Simulation) Reset() error {
	s.space.Reset()

	for _, f := range s.binders {
		if err := f(s.space); err != nil {
			return err
		}
	}

	return nil
}

// VectorTable returns the vector table of the simulation.
func (s *Simulation) VectorTable() *nvic.VectorTable {
	return s.vectorTable
}

// GetDataRecorder returns the data recorder, or nil if recording is off.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetDBTracer returns the tracer that records accesses, or nil if recording is
// off.
func (s *Simulation) GetDBTracer() *tracing.DBTracer {
	return s.dbTracer
}

// GetMonitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// RegisterPeripheral registers a peripheral with the simulation. Its events
// are recorded and monitored, and its IRQ is bound to the vector table.
func (s *Simulation) RegisterPeripheral(p *peripheral.Peripheral) error {
	name := p.Name()
	if _, ok := s.periphNameIndex[name]; ok {
		panic("peripheral " + name + " already registered")
	}

	err := p.BindIRQ(s.vectorTable)
	if err != nil {
		return err
	}

	s.peripherals = append(s.peripherals, p)
	s.periphNameIndex[name] = len(s.peripherals) - 1

	if s.dbTracer != nil {
		tracing.CollectTrace(p, s.dbTracer)
	}

	if s.monitor != nil {
		s.monitor.RegisterPeripheral(p)
	}

	return nil
}

// GetPeripheralByName returns the peripheral with the given name, or nil.
func (s *Simulation) GetPeripheralByName(name string) *peripheral.Peripheral {
	i, ok := s.periphNameIndex[name]
	if !ok {
		return nil
	}

	return s.peripherals[i]
}

// Peripherals returns all registered peripherals.
func (s *Simulation) Peripherals() []*peripheral.Peripheral {
	return append([]*peripheral.Peripheral(nil), s.peripherals...)
}

// DispatchPending dispatches the vectors requested through the monitor
// without blocking and returns how many were dispatched.
func (s *Simulation) DispatchPending() int {
	if s.monitor == nil {
		return 0
	}

	n := 0

	for {
		select {
		case v := <-s.monitor.DispatchRequests():
			s.vectorTable.Dispatch(v)
			n++
		default:
			return n
		}
	}
}

// Serve dispatches monitor requests on the calling goroutine until ctx is
// done.
func (s *Simulation) Serve(ctx context.Context) error {
	if s.monitor == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v := <-s.monitor.DispatchRequests():
			s.vectorTable.Dispatch(v)
		}
	}
}

// Terminate flushes and closes the data recorder.
func (s *Simulation) Terminate() error {
	if s.dataRecorder == nil {
		return nil
	}

	return s.dataRecorder.Close()
}
