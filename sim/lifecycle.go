// sim/lifecycle.go
package sim

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vsim-dev/vsim/sim/trace"
)

// TraceSink is the waveform recorder the Controller drives.
type TraceSink interface {
	Bind(src trace.Source, depth int) error
	Open(path string) error
	Dump(ts uint64) error
	Close() error
}

// SinkFactory constructs a TraceSink for a trace configuration.
type SinkFactory func(cfg TraceConfig) (TraceSink, error)

// Result describes a completed run.
type Result struct {
	RunID      string
	Model      string
	StopReason StopReason
	Time       uint64 // final simulation time
	Ticks      uint64 // full clock cycles (Time / 2)
	StartedAt  time.Time
	EndedAt    time.Time
	TracePath  string        // "" when tracing was disabled
	Trace      trace.Summary // zero when tracing was disabled
}

// Controller sequences one simulation run: log, model, trace sink, driver
// loop, and a shutdown that always runs exactly once.
type Controller struct {
	cfg      Config
	latch    *InterruptLatch
	time     *SimTime
	newModel ModelFactory
	newSink  SinkFactory
	now      func() time.Time
}

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

// WithModelFactory bypasses the model registry.
func WithModelFactory(f ModelFactory) ControllerOption {
	return func(c *Controller) { c.newModel = f }
}

// WithSinkFactory replaces the default trace.Writer sink.
func WithSinkFactory(f SinkFactory) ControllerOption {
	return func(c *Controller) { c.newSink = f }
}

// WithSimTime supplies the time counter, letting callers observe it.
func WithSimTime(t *SimTime) ControllerOption {
	return func(c *Controller) { c.time = t }
}

// NewController returns a Controller for cfg. latch is the stop request
// shared with the signal relay; nil gives the run a private latch.
func NewController(cfg Config, latch *InterruptLatch, opts ...ControllerOption) *Controller {
	if latch == nil {
		latch = &InterruptLatch{}
	}
	c := &Controller{
		cfg:   cfg,
		latch: latch,
		time:  NewSimTime(),
		newModel: func(mo ModelOptions) (Model, error) {
			return NewModel(cfg.Model, mo)
		},
		newSink: newWriterSink,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newWriterSink(cfg TraceConfig) (TraceSink, error) {
	date := cfg.Date
	if date == "" {
		date = time.Now().Format(time.ANSIC)
	}
	return trace.NewWriter(cfg.Format, trace.DefaultHeader(date))
}

// Run performs a complete simulation. Cancelling ctx requests a stop the same
// way an interrupt signal does.
//
// The only error before the model exists is a log that cannot be opened
// (wrapping ErrLogOpen); the message is also written to the console. Once the
// model is constructed, shutdown runs on every return path.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	log, err := OpenLogger(c.cfg.LogPath, c.cfg.Console)
	if err != nil {
		if c.cfg.Console != nil {
			fmt.Fprintf(c.cfg.Console, "can't create %s\n", c.cfg.LogPath)
		}
		return nil, err
	}
	defer log.Close()

	res := &Result{
		RunID:     uuid.Must(uuid.NewV7()).String(),
		Model:     c.cfg.Model,
		StartedAt: c.now(),
	}
	log.Logf("\nSimulation started")
	log.LogOnlyf("Run %s: model %s, args [%s]", res.RunID, c.cfg.Model, strings.Join(c.cfg.ModelArgs, " "))

	stopWatch := c.latch.WatchContext(ctx)
	defer stopWatch()

	trace.EverOn(c.cfg.Trace.Enabled)
	model, err := c.newModel(ModelOptions{Time: c.time, Args: c.cfg.ModelArgs})
	if err != nil {
		log.Logf("Simulation aborted: %v", err)
		return res, err
	}

	sd := &shutdown{log: log, model: model, time: c.time, res: res, now: c.now}
	defer sd.run()

	if !hasInput(model, c.cfg.Clock.Input) {
		return res, errors.Errorf("model %s has no clock input %q (inputs: %v)", model.Name(), c.cfg.Clock.Input, model.Inputs())
	}
	if c.cfg.Clock.ResetInput != "" && !hasInput(model, c.cfg.Clock.ResetInput) {
		return res, errors.Errorf("model %s has no reset input %q", model.Name(), c.cfg.Clock.ResetInput)
	}

	var dumper Dumper
	if c.cfg.Trace.Enabled {
		sink, err := c.openSink(model, log)
		if err != nil {
			log.Logf("Simulation aborted: %v", err)
			return res, err
		}
		sd.sink = sink
		dumper = sink
		res.TracePath = c.cfg.Trace.Path
	}

	logrus.Infof("[time %010d] Starting %s, max time %d, tracing=%v",
		c.time.Now(), model.Name(), c.cfg.Clock.MaxTime, c.cfg.Trace.Enabled)
	driver := NewDriver(model, c.time, dumper, c.latch, c.cfg.Clock)
	res.StopReason = driver.Run()
	return res, nil
}

func (c *Controller) openSink(model Model, log *Logger) (TraceSink, error) {
	sink, err := c.newSink(c.cfg.Trace)
	if err != nil {
		return nil, errors.Wrap(err, "create trace sink")
	}
	if err := sink.Bind(model, c.cfg.Trace.Depth); err != nil {
		return nil, errors.Wrap(err, "bind trace sink")
	}
	log.LogOnlyf("Writing %s waveform file to %q...", strings.ToUpper(string(c.cfg.Trace.Format)), c.cfg.Trace.Path)
	if err := sink.Open(c.cfg.Trace.Path); err != nil {
		return nil, errors.Wrap(err, "open trace sink")
	}
	return sink, nil
}

// shutdown finalizes the model, closes the trace sink and logs the summary.
type shutdown struct {
	once  sync.Once
	log   *Logger
	model Model
	sink  TraceSink
	time  *SimTime
	res   *Result
	now   func() time.Time
}

func (s *shutdown) run() {
	s.once.Do(func() {
		s.model.Final()
		if closer, ok := s.model.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logrus.Warnf("release model: %v", err)
			}
		}
		if s.sink != nil {
			if err := s.sink.Close(); err != nil {
				s.log.LogOnlyf("Trace close failed: %v", err)
			}
			if w, ok := s.sink.(*trace.Writer); ok {
				s.res.Trace = trace.Summarize(w)
				s.log.LogOnlyf("Trace: %d dumps, %d value changes, %d signals",
					s.res.Trace.Dumps, s.res.Trace.ValueChanges, s.res.Trace.Signals)
			}
		}
		s.res.Time = s.time.Now()
		s.res.Ticks = s.time.Ticks()
		s.res.EndedAt = s.now()
		if s.res.StopReason != StopNone {
			s.log.LogOnlyf("Stop reason: %s", s.res.StopReason)
		}
		s.log.Logf("Simulation ended after %d clock ticks", s.res.Ticks)
	})
}
