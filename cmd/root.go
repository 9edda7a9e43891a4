package cmd

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vsim-dev/vsim/sim"
	_ "github.com/vsim-dev/vsim/sim/design" // registers example_top
	"github.com/vsim-dev/vsim/sim/history"
)

// runFlags holds the run command's CLI flags. A flag only overrides the
// config file when it was set explicitly.
type runFlags struct {
	configPath  string   // YAML config file
	logPath     string   // run log path
	logLevel    string   // diagnostic log verbosity
	model       string   // registered design name
	plusargs    []string // design plusargs
	clockInput  string   // clock input port
	maxTime     uint64   // ceiling in half-cycles
	resetInput  string   // reset input port
	resetCycles uint64   // cycles of reset from time 0
	trace       bool     // capture a waveform
	traceFormat string   // vcd or compact
	tracePath   string   // waveform path
	traceDepth  int      // hierarchy depth to trace
	historyPath string   // sqlite run history
}

var runOpts runFlags

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "vsim",
	Short: "Clock driver for simulated hardware designs",
}

// runCmd drives a design until it finishes, is interrupted, or hits the ceiling.
// Trailing arguments are forwarded to the design as plusargs.
var runCmd = &cobra.Command{
	Use:          "run [-- +plusarg...]",
	Short:        "Run a simulation",
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := runOpts.config(cmd.Flags(), args)
		if err != nil {
			return err
		}
		level, _ := logrus.ParseLevel(cfg.Log.Level) // validated
		logrus.SetLevel(level)

		latch := &sim.InterruptLatch{}
		stop := latch.Install(os.Interrupt)
		defer stop()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		res, err := runSimulation(ctx, cfg, latch, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		logrus.Infof("Run %s complete: %s after %d clock ticks", res.RunID, res.StopReason, res.Ticks)
		return nil
	},
}

// config resolves the effective configuration: defaults, then the config
// file, then explicitly set flags, then trailing plusargs.
func (o *runFlags) config(fs *pflag.FlagSet, args []string) (Config, error) {
	cfg := DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}
	if fs.Changed("log-file") {
		cfg.Log.Path = o.logPath
	}
	if fs.Changed("log") {
		cfg.Log.Level = o.logLevel
	}
	if fs.Changed("model") {
		cfg.Model.Name = o.model
	}
	if fs.Changed("plusarg") {
		cfg.Model.Args = append(cfg.Model.Args, o.plusargs...)
	}
	cfg.Model.Args = append(cfg.Model.Args, args...)
	if fs.Changed("clock-input") {
		cfg.Clock.Input = o.clockInput
	}
	if fs.Changed("max-time") {
		cfg.Clock.MaxTime = o.maxTime
	}
	if fs.Changed("reset-input") {
		cfg.Clock.ResetInput = o.resetInput
	}
	if fs.Changed("reset-cycles") {
		cfg.Clock.ResetCycles = o.resetCycles
	}
	if fs.Changed("trace") {
		cfg.Trace.Enabled = o.trace
	}
	if fs.Changed("trace-format") {
		cfg.Trace.Format = o.traceFormat
	}
	if fs.Changed("trace-file") {
		cfg.Trace.Path = o.tracePath
	}
	if fs.Changed("trace-depth") {
		cfg.Trace.Depth = o.traceDepth
	}
	if fs.Changed("history-db") {
		cfg.History.Path = o.historyPath
	}
	return cfg, cfg.Validate()
}

// runSimulation runs one controller pass and records it in the run history
// when one is configured. A history failure is reported but does not fail
// the run.
func runSimulation(ctx context.Context, cfg Config, latch *sim.InterruptLatch, console io.Writer) (*sim.Result, error) {
	res, err := sim.NewController(cfg.SimConfig(console), latch).Run(ctx)
	if err != nil {
		return res, err
	}
	if cfg.History.Path != "" {
		if err := recordRun(ctx, cfg.History.Path, res); err != nil {
			logrus.Warnf("Run history not updated: %v", err)
		}
	}
	return res, nil
}

func recordRun(ctx context.Context, path string, res *sim.Result) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(ctx, history.Run{
		RunID:      res.RunID,
		Model:      res.Model,
		StopReason: res.StopReason.String(),
		SimTime:    res.Time,
		ClockTicks: res.Ticks,
		TracePath:  res.TracePath,
		StartedAt:  res.StartedAt,
		EndedAt:    res.EndedAt,
	})
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func bindRunFlags(fs *pflag.FlagSet, o *runFlags) {
	d := DefaultConfig()
	fs.StringVar(&o.configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&o.logPath, "log-file", d.Log.Path, "Simulation log file (appended)")
	fs.StringVar(&o.logLevel, "log", d.Log.Level, "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Design
	fs.StringVar(&o.model, "model", d.Model.Name, "Registered design to simulate")
	fs.StringArrayVar(&o.plusargs, "plusarg", nil, "Design plusarg, e.g. +finish=1000 (repeatable)")

	// Clocking
	fs.StringVar(&o.clockInput, "clock-input", d.Clock.Input, "Clock input port")
	fs.Uint64Var(&o.maxTime, "max-time", d.Clock.MaxTime, "Stop once simulation time reaches this many half-cycles")
	fs.StringVar(&o.resetInput, "reset-input", "", "Reset input port held high at start")
	fs.Uint64Var(&o.resetCycles, "reset-cycles", 0, "Clock cycles to hold reset")

	// Waveform tracing
	fs.BoolVar(&o.trace, "trace", d.Trace.Enabled, "Capture a waveform trace")
	fs.StringVar(&o.traceFormat, "trace-format", d.Trace.Format, "Trace format (compact, vcd)")
	fs.StringVar(&o.tracePath, "trace-file", "", "Trace file path (default: log path with the format's extension)")
	fs.IntVar(&o.traceDepth, "trace-depth", d.Trace.Depth, "Hierarchy depth to trace")

	fs.StringVar(&o.historyPath, "history-db", "", "SQLite run history database (disabled when empty)")
}

// init sets up CLI flags and subcommands
func init() {
	bindRunFlags(runCmd.Flags(), &runOpts)
	rootCmd.AddCommand(runCmd)
}
