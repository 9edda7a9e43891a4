package sim

import (
	"errors"

	"github.com/vsim-dev/vsim/sim/trace"
)

const testClock = "clk"

// fakeModel records how the Driver exercises it.
type fakeModel struct {
	time     TimeSource
	finishAt uint64 // GotFinish once time >= finishAt; 0 = never
	onEval   func(m *fakeModel)
	quiet    bool // skip per-Eval recording on long runs

	inputs map[string]uint64
	evals  int
	levels []uint64 // clock level seen by each Eval
	resets []uint64 // reset level seen by each Eval
	finals int
	closes int
}

func newFakeModel(t TimeSource) *fakeModel {
	return &fakeModel{time: t, inputs: map[string]uint64{}}
}

func (m *fakeModel) Name() string                       { return "fake" }
func (m *fakeModel) Inputs() []string                   { return []string{testClock, "rst"} }
func (m *fakeModel) SetInput(name string, value uint64) { m.inputs[name] = value }
func (m *fakeModel) GotFinish() bool {
	return m.finishAt != 0 && m.time.Now() >= m.finishAt
}
func (m *fakeModel) Final()       { m.finals++ }
func (m *fakeModel) Close() error { m.closes++; return nil }

func (m *fakeModel) Eval() {
	m.evals++
	if m.quiet {
		return
	}
	m.levels = append(m.levels, m.inputs[testClock])
	m.resets = append(m.resets, m.inputs["rst"])
	if m.onEval != nil {
		m.onEval(m)
	}
}

func (m *fakeModel) Signals() []trace.Signal {
	return []trace.Signal{
		{Scope: []string{"TOP"}, Name: testClock, Width: 1, Value: func() uint64 { return m.inputs[testClock] }},
	}
}

// countingSink is a TraceSink that only counts calls.
type countingSink struct {
	bindErr error
	binds   int
	opens   int
	closes  int
	stamps  []uint64
	path    string
}

func (s *countingSink) Bind(trace.Source, int) error {
	s.binds++
	return s.bindErr
}
func (s *countingSink) Open(path string) error { s.opens++; s.path = path; return nil }
func (s *countingSink) Dump(ts uint64) error   { s.stamps = append(s.stamps, ts); return nil }
func (s *countingSink) Close() error           { s.closes++; return nil }

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
