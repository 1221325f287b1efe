package clock

import (
	"github.com/sarchlab/mmiosim/nrf52"
	"github.com/sarchlab/mmiosim/peripheral"
	"github.com/sarchlab/mmiosim/regspace"
)

const hfclkSrcXTAL = uint32(1)

func taskAddr(task int) uint32 {
	return nrf52.ClockBase + uint32(task)*peripheral.TaskStride
}

// Model reacts to writes of the CLOCK tasks the way the hardware does:
// starting a clock sets its status register and raises its started event at
// once, stopping it clears the status.
type Model struct {
	regspace.PassthroughHandler

	mem regspace.Backdoor
}

// Simulate binds a Model to the CLOCK task registers of s and the INTEN
// triple of the peripheral.
func Simulate(s *regspace.Space) (*Model, error) {
	m := &Model{mem: s}

	for _, task := range []int{
		TaskHFCLKStart, TaskHFCLKStop, TaskLFCLKStart, TaskLFCLKStop,
	} {
		err := s.SetAddrIOHandler(taskAddr(task), m)
		if err != nil {
			return nil, err
		}
	}

	err := nrf52.SimulateInterruptEnable(s, nrf52.ClockBase)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// WriteReg applies the task and stores the written value.
func (m *Model) WriteReg(addr, _, value uint32) uint32 {
	if value == 0 {
		return value
	}

	switch addr {
	case taskAddr(TaskHFCLKStart):
		m.mem.SetValueAt(HFCLKStat, StatRunning|hfclkSrcXTAL)
		m.raise(EventHFCLKStarted)
	case taskAddr(TaskHFCLKStop):
		m.mem.SetValueAt(HFCLKStat, 0)
	case taskAddr(TaskLFCLKStart):
		src := m.mem.ValueAt(LFCLKSrc) & statSrcMask
		m.mem.SetValueAt(LFCLKStat, StatRunning|src)
		m.raise(EventLFCLKStarted)
	case taskAddr(TaskLFCLKStop):
		m.mem.SetValueAt(LFCLKStat, m.mem.ValueAt(LFCLKStat)&^StatRunning)
	}

	return value
}

func (m *Model) raise(evt int) {
	m.mem.SetValueAt(nrf52.EventAddr(nrf52.ClockBase, evt), 1)
}
