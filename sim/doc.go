// Package sim drives a clocked hardware design through discrete simulation time.
//
// # Reading Guide
//
// Start with these three files to understand the driver:
//   - clock.go: SimTime, the single authoritative time counter (one unit per clock half-cycle)
//   - driver.go: the two-phase clock loop and its stop conditions (interrupt, finish, ceiling)
//   - lifecycle.go: startup, the driver run, and the shutdown that runs exactly once
//
// # Architecture
//
// The sim package defines the Model contract and the run lifecycle;
// collaborators live in sub-packages:
//   - sim/trace/: waveform capture (VCD, or zstd-compressed VCD)
//   - sim/design/: reference designs, registered from init()
//   - sim/history/: SQLite record of completed runs
//
// Designs register a ModelFactory with RegisterModel; the command line imports
// sim/design for that side effect.
//
// # Concurrency
//
// The clock loop is single-threaded. The only concurrent writer is the signal
// relay installed by InterruptLatch.Install, and it only sets the latch. The
// Driver polls the latch between full cycles, so a stopped run always ends on
// a cycle boundary.
package sim
