// sim/model.go
package sim

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/vsim-dev/vsim/sim/trace"
)

// Model is a clocked hardware design the Driver can step.
//
// Implementations are opaque stepping engines: the Driver writes inputs, calls
// Eval to settle the design for those inputs, and polls GotFinish. Final is
// called exactly once when the run ends, whatever ended it.
type Model interface {
	// Name returns the design's top-level name.
	Name() string
	// Inputs lists the input ports SetInput accepts.
	Inputs() []string
	// SetInput drives an input port. Unknown names are ignored.
	SetInput(name string, value uint64)
	// Eval advances combinational and sequential state for the current inputs.
	Eval()
	// GotFinish reports whether the design reached its own completion state.
	GotFinish() bool
	// Final runs end-of-simulation settlement logic.
	Final()
	// Signals enumerates traceable signals for waveform capture.
	Signals() []trace.Signal
}

// ModelOptions carries what a design receives at construction.
type ModelOptions struct {
	Time TimeSource // time-query hook ($time)
	Args []string   // plusargs, e.g. "+finish=1000"
}

// ModelFactory constructs a Model.
type ModelFactory func(opts ModelOptions) (Model, error)

var (
	modelsMu sync.RWMutex
	models   = map[string]ModelFactory{}
)

// RegisterModel makes a design available by name. Design packages call it
// from init(). Registering the same name twice panics.
func RegisterModel(name string, f ModelFactory) {
	modelsMu.Lock()
	defer modelsMu.Unlock()
	if _, dup := models[name]; dup {
		panic("sim: model registered twice: " + name)
	}
	models[name] = f
}

// NewModel constructs the registered design called name.
func NewModel(name string, opts ModelOptions) (Model, error) {
	modelsMu.RLock()
	f, ok := models[name]
	modelsMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown model %q (registered: %v)", name, ModelNames())
	}
	m, err := f(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "construct model %q", name)
	}
	return m, nil
}

// IsRegisteredModel reports whether a design named name is registered.
func IsRegisteredModel(name string) bool {
	modelsMu.RLock()
	defer modelsMu.RUnlock()
	_, ok := models[name]
	return ok
}

// ModelNames returns the registered design names in sorted order.
func ModelNames() []string {
	modelsMu.RLock()
	defer modelsMu.RUnlock()
	names := make([]string, 0, len(models))
	for n := range models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func hasInput(m Model, name string) bool {
	for _, in := range m.Inputs() {
		if in == name {
			return true
		}
	}
	return false
}
