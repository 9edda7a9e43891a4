// sim/driver.go
package sim

import (
	"github.com/sirupsen/logrus"
)

// StopReason records which termination condition ended a run.
type StopReason int

const (
	StopNone StopReason = iota
	// StopInterrupted: the interrupt latch was set.
	StopInterrupted
	// StopFinished: the model reported completion.
	StopFinished
	// StopCeiling: simulation time reached ClockConfig.MaxTime.
	StopCeiling
)

func (r StopReason) String() string {
	switch r {
	case StopInterrupted:
		return "interrupted"
	case StopFinished:
		return "finished"
	case StopCeiling:
		return "ceiling"
	default:
		return "none"
	}
}

// Dumper receives one timestamp per clock half-cycle while tracing.
type Dumper interface {
	Dump(ts uint64) error
}

// Driver advances a Model through two-phase clock cycles.
//
// Each cycle is a rising half (clock=1, Eval, Dump, time++) followed by a
// falling half (clock=0, Eval, Dump, time++). Stop conditions are only
// checked between full cycles, so the model is never left mid-cycle.
type Driver struct {
	model Model
	time  *SimTime
	sink  Dumper // nil when tracing is disabled
	latch *InterruptLatch
	cfg   ClockConfig

	dumpErrors int
}

// NewDriver wires a Driver. sink may be nil; latch may be nil when the run
// cannot be interrupted.
func NewDriver(model Model, time *SimTime, sink Dumper, latch *InterruptLatch, cfg ClockConfig) *Driver {
	if latch == nil {
		latch = &InterruptLatch{}
	}
	return &Driver{model: model, time: time, sink: sink, latch: latch, cfg: cfg}
}

// Run steps full clock cycles until a stop condition holds and returns it.
func (d *Driver) Run() StopReason {
	for {
		if reason := d.stopReason(); reason != StopNone {
			logrus.Infof("[time %010d] Driver stopped: %s", d.time.Now(), reason)
			return reason
		}
		d.cycle()
	}
}

// DumpErrors returns how many trace dumps failed during Run.
func (d *Driver) DumpErrors() int { return d.dumpErrors }

// stopReason evaluates the termination conditions in priority order.
func (d *Driver) stopReason() StopReason {
	switch {
	case d.latch.IsSet():
		return StopInterrupted
	case d.model.GotFinish():
		return StopFinished
	case d.time.Now() >= d.cfg.MaxTime:
		return StopCeiling
	}
	return StopNone
}

func (d *Driver) cycle() {
	if d.cfg.ResetInput != "" {
		var rst uint64
		if d.time.Now() < 2*d.cfg.ResetCycles {
			rst = 1
		}
		d.model.SetInput(d.cfg.ResetInput, rst)
	}
	d.halfCycle(1) // rising
	d.halfCycle(0) // falling
}

func (d *Driver) halfCycle(level uint64) {
	d.model.SetInput(d.cfg.Input, level)
	d.model.Eval()
	if d.sink != nil {
		if err := d.sink.Dump(d.time.Now()); err != nil {
			if d.dumpErrors == 0 {
				logrus.Warnf("[time %010d] trace dump failed: %v", d.time.Now(), err)
			}
			d.dumpErrors++
		}
	}
	d.time.Advance()
}
