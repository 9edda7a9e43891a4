// Package trace writes waveform traces of a design's signals.
// This package has no dependencies on sim/; designs describe their signals
// with the Signal type defined here.
package trace

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Format selects the on-disk waveform encoding.
type Format string

const (
	// FormatVCD is the legacy plain-text Value Change Dump.
	FormatVCD Format = "vcd"
	// FormatCompact is the VCD stream compressed with zstd.
	FormatCompact Format = "compact"
)

// validFormats maps accepted format strings.
var validFormats = map[Format]bool{
	FormatVCD:     true,
	FormatCompact: true,
}

// IsValidFormat returns true if the given string names a supported format.
func IsValidFormat(format string) bool {
	return validFormats[Format(format)]
}

// Ext returns the file extension conventionally used for the format.
func (f Format) Ext() string {
	if f == FormatCompact {
		return ".vcd.zst"
	}
	return ".vcd"
}

var (
	// ErrNotEverOn is returned by Bind when tracing was not enabled process-wide.
	ErrNotEverOn = errors.New("trace: tracing not enabled; call EverOn(true) before constructing the model")
	// ErrNotOpen is returned by Dump before Open or after Close.
	ErrNotOpen = errors.New("trace: writer not open")
)

var everOn atomic.Bool

// EverOn switches the tracing capability on or off for the whole process. It
// must be called before the traced model is constructed.
func EverOn(on bool) {
	everOn.Store(on)
}

// IsEverOn reports the process-wide tracing capability.
func IsEverOn() bool {
	return everOn.Load()
}

// Signal describes one traced wire or register.
type Signal struct {
	Scope []string      // hierarchical path, outermost first (e.g. TOP, example_top)
	Name  string        // signal name within its scope
	Width int           // bit width, 1..64
	Value func() uint64 // current value; bits above Width are ignored
}

// Source is anything that can enumerate its traceable signals.
type Source interface {
	Signals() []Signal
}
