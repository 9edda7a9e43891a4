package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimTime_StartsAtZero(t *testing.T) {
	c := NewSimTime()
	assert.Equal(t, uint64(0), c.Now())
	assert.Equal(t, uint64(0), c.Ticks())
}

func TestSimTime_AdvanceIsMonotonicByOne(t *testing.T) {
	c := NewSimTime()
	for want := uint64(1); want <= 5; want++ {
		assert.Equal(t, want, c.Advance())
		assert.Equal(t, want, c.Now())
	}
	// odd time: the in-progress cycle is not counted
	assert.Equal(t, uint64(2), c.Ticks())
}
