package sim

import (
	"io"

	"github.com/vsim-dev/vsim/sim/trace"
)

// DefaultMaxTime is the reference safety ceiling in simulation-time units
// (half-cycles). It only stops runs that neither finish nor get interrupted.
const DefaultMaxTime uint64 = 10_000_000

// DefaultTraceDepth traces the whole design hierarchy.
const DefaultTraceDepth = 99

// ClockConfig groups the Driver's clocking parameters.
type ClockConfig struct {
	Input       string // clock input port driven high then low each cycle
	MaxTime     uint64 // stop once simulation time reaches this value
	ResetInput  string // reset port held high for ResetCycles ("" = no reset sequencing)
	ResetCycles uint64 // full cycles of reset from time 0
}

// TraceConfig groups waveform capture parameters.
type TraceConfig struct {
	Enabled bool
	Format  trace.Format
	Path    string // trace file path
	Depth   int    // hierarchy depth bound at Bind
	Date    string // VCD $date field; empty uses the wall clock at Open
}

// Config is everything the Controller needs for one run.
type Config struct {
	LogPath   string    // run log, opened in append mode
	Console   io.Writer // console sink for Logf (nil = log file only)
	Model     string    // registered design name
	ModelArgs []string  // plusargs forwarded to the design
	Clock     ClockConfig
	Trace     TraceConfig
}

// NewClockConfig returns a ClockConfig with no reset sequencing.
func NewClockConfig(input string, maxTime uint64) ClockConfig {
	return ClockConfig{Input: input, MaxTime: maxTime}
}

// NewTraceConfig returns an enabled TraceConfig.
func NewTraceConfig(format trace.Format, path string, depth int) TraceConfig {
	return TraceConfig{Enabled: true, Format: format, Path: path, Depth: depth}
}
