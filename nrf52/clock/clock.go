// Package clock drives the nRF52 CLOCK peripheral.
package clock

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/mmiosim/mmio"
	"github.com/sarchlab/mmiosim/nrf52"
	"github.com/sarchlab/mmiosim/peripheral"
)

// Register addresses.
const (
	HFCLKStat = nrf52.ClockBase + 0x40C
	LFCLKStat = nrf52.ClockBase + 0x418
	LFCLKSrc  = nrf52.ClockBase + 0x518
)

// StatRunning is set in HFCLKSTAT and LFCLKSTAT while the clock runs.
const StatRunning = uint32(1 << 16)

const statSrcMask = uint32(0x3)

// Tasks.
const (
	TaskHFCLKStart = iota
	TaskHFCLKStop
	TaskLFCLKStart
	TaskLFCLKStop
	TaskCal
	TaskCTStart
	TaskCTStop
)

// Events.
const (
	EventHFCLKStarted = 0
	EventLFCLKStarted = 1
	EventDone         = 3
	EventCTTO         = 4

	numEvents = 5
)

// Source selects the low-frequency clock source.
type Source int

// Low-frequency clock sources, encoded as in LFCLKSRC.
const (
	SourceRC Source = iota
	SourceXTAL
	SourceSynth
)

var sourceNames = [...]string{
	SourceRC:    "rc",
	SourceXTAL:  "xtal",
	SourceSynth: "synth",
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	return s >= SourceRC && s <= SourceSynth
}

func (s Source) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Source(%d)", int(s))
	}

	return sourceNames[s]
}

// ParseSource parses "rc", "xtal" or "synth".
func ParseSource(name string) (Source, error) {
	for i, n := range sourceNames {
		if strings.EqualFold(n, name) {
			return Source(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// ErrUnknownSource is returned for a clock source that is not supported.
var ErrUnknownSource = errors.New("unknown clock source")

// Clock is the CLOCK peripheral.
type Clock struct {
	*peripheral.Peripheral
}

// New creates the CLOCK peripheral on bus. table may be nil.
func New(bus mmio.Bus, table []peripheral.EventSlot) *Clock {
	return &Clock{
		Peripheral: nrf52.NewPeripheral(
			"CLOCK", bus, nrf52.ClockBase, numEvents,
			nrf52.PowerClockIRQ, table),
	}
}

// Request selects src as the low-frequency clock source and starts the
// clock. It returns once LFCLKSTAT reports the clock running and never
// times out. An unknown source is rejected before any register is touched.
func (c *Clock) Request(src Source) error {
	if !src.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSource, int(src))
	}

	c.Bus().Write32(LFCLKSrc, uint32(src))
	c.TriggerTask(TaskLFCLKStart)
	mmio.WaitForBits32(c.Bus(), LFCLKStat, StatRunning)

	return nil
}

// StopLF stops the low-frequency clock.
func (c *Clock) StopLF() {
	c.TriggerTask(TaskLFCLKStop)
}

// IsLFRunning reports whether the low-frequency clock runs.
func (c *Clock) IsLFRunning() bool {
	return c.Bus().Read32(LFCLKStat)&StatRunning != 0
}

// LFSource returns the source the running low-frequency clock uses.
func (c *Clock) LFSource() Source {
	return Source(c.Bus().Read32(LFCLKStat) & statSrcMask)
}

// StartHF starts the high-frequency crystal oscillator and waits for the
// HFCLKSTARTED event.
func (c *Clock) StartHF() {
	c.TriggerTask(TaskHFCLKStart)
	c.BusyWaitAndClearEvent(EventHFCLKStarted)
}

// StopHF stops the high-frequency crystal oscillator.
func (c *Clock) StopHF() {
	c.TriggerTask(TaskHFCLKStop)
}
