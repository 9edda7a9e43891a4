package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vsim-dev/vsim/sim"
	"github.com/vsim-dev/vsim/sim/trace"
)

// Config represents the full vsim YAML configuration.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Model   ModelConfig   `yaml:"model"`
	Clock   ClockConfig   `yaml:"clock"`
	Trace   TraceConfig   `yaml:"trace"`
	History HistoryConfig `yaml:"history"`
}

type LogConfig struct {
	Path  string `yaml:"path"`  // run log, appended to
	Level string `yaml:"level"` // diagnostic verbosity (logrus level name)
}

type ModelConfig struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"` // plusargs, e.g. "+finish=1000"
}

type ClockConfig struct {
	Input       string `yaml:"input"`
	MaxTime     uint64 `yaml:"max_time"` // in half-cycles
	ResetInput  string `yaml:"reset_input"`
	ResetCycles uint64 `yaml:"reset_cycles"`
}

type TraceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
	Path    string `yaml:"path"` // empty: derived from the log path
	Depth   int    `yaml:"depth"`
}

type HistoryConfig struct {
	Path string `yaml:"path"` // sqlite database; empty disables run history
}

// DefaultConfig returns the reference configuration: the example_top design
// clocked on gpio_20, compact tracing to logs/, and a 10,000,000 half-cycle
// ceiling.
func DefaultConfig() Config {
	return Config{
		Log:   LogConfig{Path: "logs/example_vsim.log", Level: "warn"},
		Model: ModelConfig{Name: "example_top"},
		Clock: ClockConfig{Input: "gpio_20", MaxTime: sim.DefaultMaxTime},
		Trace: TraceConfig{
			Enabled: true,
			Format:  string(trace.FormatCompact),
			Depth:   sim.DefaultTraceDepth,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.Log.Path == "" {
		return errors.New("log.path must not be empty")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if !sim.IsRegisteredModel(c.Model.Name) {
		return fmt.Errorf("model.name: unknown model %q (available: %s)", c.Model.Name, strings.Join(sim.ModelNames(), ", "))
	}
	if c.Clock.Input == "" {
		return errors.New("clock.input must not be empty")
	}
	if c.Clock.MaxTime < 2 {
		return fmt.Errorf("clock.max_time must be at least one full cycle (2), got %d", c.Clock.MaxTime)
	}
	if c.Clock.ResetCycles > 0 && c.Clock.ResetInput == "" {
		return errors.New("clock.reset_cycles requires clock.reset_input")
	}
	if c.Trace.Enabled {
		if !trace.IsValidFormat(c.Trace.Format) {
			return fmt.Errorf("trace.format: unknown format %q (vcd or compact)", c.Trace.Format)
		}
		if c.Trace.Depth < 1 {
			return fmt.Errorf("trace.depth must be >= 1, got %d", c.Trace.Depth)
		}
	}
	return nil
}

// TracePath returns the configured trace path, or one derived from the log
// path and the format's extension.
func (c Config) TracePath() string {
	if c.Trace.Path != "" {
		return c.Trace.Path
	}
	return strings.TrimSuffix(c.Log.Path, ".log") + trace.Format(c.Trace.Format).Ext()
}

// SimConfig converts to the controller's configuration.
func (c Config) SimConfig(console io.Writer) sim.Config {
	sc := sim.Config{
		LogPath:   c.Log.Path,
		Console:   console,
		Model:     c.Model.Name,
		ModelArgs: c.Model.Args,
		Clock: sim.ClockConfig{
			Input:       c.Clock.Input,
			MaxTime:     c.Clock.MaxTime,
			ResetInput:  c.Clock.ResetInput,
			ResetCycles: c.Clock.ResetCycles,
		},
	}
	if c.Trace.Enabled {
		sc.Trace = sim.NewTraceConfig(trace.Format(c.Trace.Format), c.TracePath(), c.Trace.Depth)
	}
	return sc
}
