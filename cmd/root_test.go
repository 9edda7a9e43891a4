package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsim-dev/vsim/sim"
	"github.com/vsim-dev/vsim/sim/history"
)

func parseRunFlags(t *testing.T, argv ...string) (*pflag.FlagSet, *runFlags) {
	t.Helper()
	o := &runFlags{}
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	bindRunFlags(fs, o)
	require.NoError(t, fs.Parse(argv))
	return fs, o
}

func TestRunFlags_OnlyChangedFlagsOverrideConfig(t *testing.T) {
	// GIVEN a config file setting the ceiling and format
	path := writeConfig(t, "clock:\n  max_time: 500\ntrace:\n  format: vcd\n")

	// WHEN only --trace-depth and --config are passed
	fs, o := parseRunFlags(t, "--config", path, "--trace-depth", "2")
	cfg, err := o.config(fs, nil)
	require.NoError(t, err)

	// THEN the file's values survive and the flag applies
	assert.Equal(t, uint64(500), cfg.Clock.MaxTime)
	assert.Equal(t, "vcd", cfg.Trace.Format)
	assert.Equal(t, 2, cfg.Trace.Depth)
}

func TestRunFlags_PlusargsFromFlagAndTrailingArgs(t *testing.T) {
	fs, o := parseRunFlags(t, "--plusarg", "+finish=10", "--trace=false")
	cfg, err := o.config(fs, []string{"+width=8"})
	require.NoError(t, err)

	assert.Equal(t, []string{"+finish=10", "+width=8"}, cfg.Model.Args)
	assert.False(t, cfg.Trace.Enabled)
}

func TestRunFlags_InvalidResultIsRejected(t *testing.T) {
	fs, o := parseRunFlags(t, "--model", "no_such_design")
	_, err := o.config(fs, nil)
	assert.Error(t, err)
}

func TestRunSimulation_ExampleTopFinishes(t *testing.T) {
	// GIVEN the reference design finishing after 10 edges, traced and recorded
	dir := t.TempDir()
	fs, o := parseRunFlags(t,
		"--log-file", filepath.Join(dir, "logs", "example_vsim.log"),
		"--history-db", filepath.Join(dir, "runs.db"),
		"--plusarg", "+finish=10",
	)
	cfg, err := o.config(fs, nil)
	require.NoError(t, err)
	var console bytes.Buffer

	// WHEN run
	res, err := runSimulation(context.Background(), cfg, &sim.InterruptLatch{}, &console)
	require.NoError(t, err)

	// THEN the design stopped itself after ten cycles
	assert.Equal(t, sim.StopFinished, res.StopReason)
	assert.Equal(t, uint64(10), res.Ticks)
	assert.Contains(t, console.String(), "Simulation ended after 10 clock ticks")

	// AND the compact trace sits next to the log
	assert.Equal(t, filepath.Join(dir, "logs", "example_vsim.vcd.zst"), res.TracePath)
	_, err = os.Stat(res.TracePath)
	assert.NoError(t, err)
	assert.Equal(t, 20, res.Trace.Dumps)

	// AND the run was recorded
	store, err := history.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)
	assert.Equal(t, "finished", runs[0].StopReason)
}

func TestRunSimulation_Interrupted(t *testing.T) {
	// GIVEN a stop already requested
	dir := t.TempDir()
	fs, o := parseRunFlags(t, "--log-file", filepath.Join(dir, "run.log"), "--trace=false")
	cfg, err := o.config(fs, nil)
	require.NoError(t, err)
	latch := &sim.InterruptLatch{}
	latch.Set()

	// WHEN run
	res, err := runSimulation(context.Background(), cfg, latch, nil)

	// THEN it ends cleanly with zero ticks
	require.NoError(t, err)
	assert.Equal(t, sim.StopInterrupted, res.StopReason)
	assert.Zero(t, res.Ticks)
}

func TestRunSimulation_LogOpenFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg := DefaultConfig()
	cfg.Log.Path = filepath.Join(blocker, "run.log")
	var console bytes.Buffer

	_, err := runSimulation(context.Background(), cfg, &sim.InterruptLatch{}, &console)

	assert.ErrorIs(t, err, sim.ErrLogOpen)
	assert.Contains(t, console.String(), "can't create")
}

func TestModelsCmd_ListsExampleTop(t *testing.T) {
	var out bytes.Buffer
	modelsCmd.SetOut(&out)
	modelsCmd.Run(modelsCmd, nil)
	assert.Contains(t, out.String(), "example_top\n")
}
