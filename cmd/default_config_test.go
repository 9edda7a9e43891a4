package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsim-dev/vsim/sim"
	"github.com/vsim-dev/vsim/sim/trace"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig_IsReferenceConfiguration(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "example_top", cfg.Model.Name)
	assert.Equal(t, "gpio_20", cfg.Clock.Input)
	assert.Equal(t, uint64(10_000_000), cfg.Clock.MaxTime)
	assert.True(t, cfg.Trace.Enabled)
	assert.Equal(t, 99, cfg.Trace.Depth)
	assert.Equal(t, "logs/example_vsim.vcd.zst", cfg.TracePath())
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	// GIVEN a file setting only part of two sections
	path := writeConfig(t, `
model:
  args: ["+finish=100"]
trace:
  format: vcd
`)

	// WHEN loaded
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// THEN set keys override and everything else keeps its default
	assert.Equal(t, []string{"+finish=100"}, cfg.Model.Args)
	assert.Equal(t, "example_top", cfg.Model.Name)
	assert.Equal(t, "vcd", cfg.Trace.Format)
	assert.True(t, cfg.Trace.Enabled)
	assert.Equal(t, "logs/example_vsim.vcd", cfg.TracePath())
}

func TestLoadConfig_UnknownKeyRejected(t *testing.T) {
	// GIVEN a typo in a key
	path := writeConfig(t, "clock:\n  max_tme: 10\n")

	// THEN strict parsing refuses it
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EmptyFileIsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty log path", func(c *Config) { c.Log.Path = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }},
		{"unknown model", func(c *Config) { c.Model.Name = "no_such_design" }},
		{"empty clock", func(c *Config) { c.Clock.Input = "" }},
		{"ceiling below one cycle", func(c *Config) { c.Clock.MaxTime = 1 }},
		{"reset cycles without input", func(c *Config) { c.Clock.ResetCycles = 2 }},
		{"bad trace format", func(c *Config) { c.Trace.Format = "fst" }},
		{"zero depth", func(c *Config) { c.Trace.Depth = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_TraceFieldsIgnoredWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trace = TraceConfig{Enabled: false, Format: "bogus"}
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SimConfig(t *testing.T) {
	// GIVEN a config with reset sequencing and an explicit trace path
	cfg := DefaultConfig()
	cfg.Clock.ResetInput, cfg.Clock.ResetCycles = "reset_i", 2
	cfg.Trace.Path = "out/wave.vcd.zst"

	// WHEN converted
	sc := cfg.SimConfig(nil)

	// THEN every field carries over
	assert.Equal(t, sim.ClockConfig{Input: "gpio_20", MaxTime: sim.DefaultMaxTime, ResetInput: "reset_i", ResetCycles: 2}, sc.Clock)
	assert.Equal(t, sim.NewTraceConfig(trace.FormatCompact, "out/wave.vcd.zst", 99), sc.Trace)
	assert.Equal(t, "logs/example_vsim.log", sc.LogPath)
	assert.Equal(t, "example_top", sc.Model)
}

func TestConfig_SimConfig_TracingDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trace.Enabled = false
	assert.Equal(t, sim.TraceConfig{}, cfg.SimConfig(nil).Trace)
}
