// sim/clock.go
package sim

import "sync/atomic"

// TimeSource reports the current simulation time. Designs read it wherever a
// hardware description would query $time.
type TimeSource interface {
	Now() uint64
}

// SimTime is the authoritative simulation time counter.
//
// It starts at 0 and is advanced by exactly one per clock half-cycle, so a full
// clock cycle is two units of simulation time. The counter never decreases.
//
// Reads are atomic so the counter can be observed from outside the driving
// goroutine; only the Driver advances it.
type SimTime struct {
	t atomic.Uint64
}

// NewSimTime returns a counter at time 0.
func NewSimTime() *SimTime {
	return &SimTime{}
}

// Now returns the current simulation time.
func (c *SimTime) Now() uint64 {
	return c.t.Load()
}

// Advance moves time forward by one half-cycle and returns the new time.
func (c *SimTime) Advance() uint64 {
	return c.t.Add(1)
}

// Ticks returns the number of completed full clock cycles.
func (c *SimTime) Ticks() uint64 {
	return c.t.Load() / 2
}
