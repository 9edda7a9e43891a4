// Package design holds reference designs the driver can run without an
// externally generated model. Designs register themselves with the sim
// package from init().
package design

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vsim-dev/vsim/sim"
	"github.com/vsim-dev/vsim/sim/trace"
)

// ExampleTopName is the registry name of ExampleTop.
const ExampleTopName = "example_top"

const (
	clockInput = "gpio_20"
	resetInput = "reset_i"
)

// ExampleTop is a board-blinky design: a free-running counter clocked by
// gpio_20 whose top three bits drive an RGB LED.
//
// The counter increments on each rising clock edge and is held at zero while
// reset_i is high. With +finish=N the design finishes after N rising edges.
type ExampleTop struct {
	time  sim.TimeSource
	width int
	mask  uint64

	clk, prevClk uint64
	reset        uint64
	counter      uint64
	edges        uint64

	finishAt  uint64 // 0 = never
	finished  bool
	finalized int
}

// NewExampleTop builds the design. Recognised plusargs:
//
//	+finish=N  finish after N rising clock edges
//	+width=N   counter width in bits (3..32, default 24)
//
// Other arguments are ignored.
func NewExampleTop(opts sim.ModelOptions) (*ExampleTop, error) {
	d := &ExampleTop{time: opts.Time, width: 24}
	for _, arg := range opts.Args {
		key, val, ok := plusarg(arg)
		if !ok {
			continue
		}
		switch key {
		case "finish":
			n, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "plusarg %s", arg)
			}
			d.finishAt = n
		case "width":
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, errors.Wrapf(err, "plusarg %s", arg)
			}
			if n < 3 || n > 32 {
				return nil, errors.Errorf("plusarg %s: width must be 3..32", arg)
			}
			d.width = n
		}
	}
	d.mask = 1<<uint(d.width) - 1
	return d, nil
}

// plusarg splits "+key=value"; a bare "+key" yields an empty value.
func plusarg(arg string) (key, val string, ok bool) {
	if !strings.HasPrefix(arg, "+") {
		return "", "", false
	}
	key, val, _ = strings.Cut(arg[1:], "=")
	return key, val, key != ""
}

func (d *ExampleTop) Name() string { return ExampleTopName }

func (d *ExampleTop) Inputs() []string { return []string{clockInput, resetInput} }

func (d *ExampleTop) SetInput(name string, value uint64) {
	switch name {
	case clockInput:
		d.clk = value & 1
	case resetInput:
		d.reset = value & 1
	}
}

// Eval samples the clock. A 0->1 transition is a rising edge.
func (d *ExampleTop) Eval() {
	rising := d.prevClk == 0 && d.clk == 1
	d.prevClk = d.clk
	if !rising {
		return
	}
	d.edges++
	if d.reset == 1 {
		d.counter = 0
	} else {
		d.counter = (d.counter + 1) & d.mask
	}
	if d.finishAt != 0 && d.edges >= d.finishAt && !d.finished {
		d.finished = true
		logrus.Debugf("[time %010d] %s: $finish after %d edges", d.now(), ExampleTopName, d.edges)
	}
}

func (d *ExampleTop) GotFinish() bool { return d.finished }

func (d *ExampleTop) Final() {
	d.finalized++
	logrus.Debugf("[time %010d] %s: final, counter=%#x", d.now(), ExampleTopName, d.counter)
}

// Counter returns the counter register.
func (d *ExampleTop) Counter() uint64 { return d.counter }

// LED returns the (red, green, blue) outputs.
func (d *ExampleTop) LED() (r, g, b uint64) {
	top := uint(d.width - 1)
	return d.counter >> top & 1, d.counter >> (top - 1) & 1, d.counter >> (top - 2) & 1
}

func (d *ExampleTop) now() uint64 {
	if d.time == nil {
		return 0
	}
	return d.time.Now()
}

func (d *ExampleTop) Signals() []trace.Signal {
	top := []string{"TOP"}
	inner := []string{"TOP", ExampleTopName}
	led := func(i int) func() uint64 {
		return func() uint64 {
			r, g, b := d.LED()
			return [3]uint64{r, g, b}[i]
		}
	}
	return []trace.Signal{
		{Scope: top, Name: clockInput, Width: 1, Value: func() uint64 { return d.clk }},
		{Scope: top, Name: resetInput, Width: 1, Value: func() uint64 { return d.reset }},
		{Scope: top, Name: "led_red", Width: 1, Value: led(0)},
		{Scope: top, Name: "led_green", Width: 1, Value: led(1)},
		{Scope: top, Name: "led_blue", Width: 1, Value: led(2)},
		{Scope: inner, Name: "counter", Width: d.width, Value: func() uint64 { return d.counter }},
	}
}
