// Package config loads voxtrim settings from YAML
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/linuxmatters/voxtrim/internal/audio"
	"github.com/linuxmatters/voxtrim/internal/mains"
	"github.com/linuxmatters/voxtrim/internal/refine"
	"github.com/linuxmatters/voxtrim/internal/segments"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrMissingThreshold is returned when split mode is enabled without both
// threshold percentages
var ErrMissingThreshold = errors.New("edge_threshold and internal_threshold are required when split is enabled")

// Config represents the complete voxtrim configuration
type Config struct {
	Refine  RefineConfig  `yaml:"refine"`
	Audio   AudioConfig   `yaml:"audio"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// RefineConfig contains segment refinement parameters
type RefineConfig struct {
	Split bool `yaml:"split"`

	// Threshold percentages have no default. nil means unset.
	EdgeThreshold     *float64 `yaml:"edge_threshold"`     // percent
	InternalThreshold *float64 `yaml:"internal_threshold"` // percent

	AdjustStartMS float64 `yaml:"adjust_start_ms"`
	AdjustEndMS   float64 `yaml:"adjust_end_ms"`

	SearchWindowMS int `yaml:"search_window_ms"`
	WindowMS       int `yaml:"window_ms"`
	SeekStepMS     int `yaml:"seek_step_ms"`
	MinSilenceMS   int `yaml:"min_silence_ms"`
	KeepSilenceMS  int `yaml:"keep_silence_ms"`
	Workers        int `yaml:"workers"` // 0 = one per CPU
}

// AudioConfig contains input conditioning parameters
type AudioConfig struct {
	Hum          string  `yaml:"hum"` // off, auto, 50 or 60
	HumHarmonics int     `yaml:"hum_harmonics"`
	HumQ         float64 `yaml:"hum_q"`
}

// OutputConfig contains output file parameters
type OutputConfig struct {
	Format string `yaml:"format"` // elan, json or kaldi
	Suffix string `yaml:"suffix"` // appended to the audio file's base name
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level"`
	DebugFile string `yaml:"debug_file"`
	Reports   bool   `yaml:"reports"` // write a <output>.log report per file
}

// Default returns the built-in configuration. Threshold percentages are
// left unset, so split mode needs them from a file or flags.
func Default() *Config {
	return &Config{
		Refine: RefineConfig{
			Split:          true,
			SearchWindowMS: refine.DefaultSearchWindowMS,
			WindowMS:       refine.DefaultWindowMS,
			SeekStepMS:     refine.DefaultSeekStepMS,
			MinSilenceMS:   refine.DefaultMinSilenceRunMS,
			KeepSilenceMS:  refine.DefaultKeepSilenceMS,
		},
		Audio: AudioConfig{
			Hum:          mains.SettingOff,
			HumHarmonics: audio.DefaultHumHarmonics,
			HumQ:         audio.DefaultHumQ,
		},
		Output: OutputConfig{
			Format: string(segments.ELAN),
			Suffix: "-refined",
		},
		Logging: LoggingConfig{
			Level:     "info",
			DebugFile: "voxtrim-debug.log",
		},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values. The result is not validated, so flags can still be
// applied before calling Validate.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

// Validate performs validation of every section
func (c *Config) Validate() error {
	if err := c.Refine.Validate(); err != nil {
		return fmt.Errorf("refine config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates refinement configuration
func (r *RefineConfig) Validate() error {
	if r.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", r.Workers)
	}

	if !r.Split {
		return nil
	}

	if r.EdgeThreshold == nil || r.InternalThreshold == nil {
		return ErrMissingThreshold
	}

	// A factor of zero or below collapses every threshold to 0 dBFS or flips its sign
	if *r.EdgeThreshold <= -100 {
		return fmt.Errorf("edge_threshold must be greater than -100, got %g", *r.EdgeThreshold)
	}
	if *r.InternalThreshold <= -100 {
		return fmt.Errorf("internal_threshold must be greater than -100, got %g", *r.InternalThreshold)
	}

	if r.SearchWindowMS < 0 {
		return fmt.Errorf("search_window_ms must not be negative, got %d", r.SearchWindowMS)
	}
	if r.WindowMS < 1 {
		return fmt.Errorf("window_ms must be at least 1, got %d", r.WindowMS)
	}
	if r.SeekStepMS < 1 {
		return fmt.Errorf("seek_step_ms must be at least 1, got %d", r.SeekStepMS)
	}
	if r.MinSilenceMS < 1 {
		return fmt.Errorf("min_silence_ms must be at least 1, got %d", r.MinSilenceMS)
	}
	if r.KeepSilenceMS < 0 || r.KeepSilenceMS >= r.MinSilenceMS {
		return fmt.Errorf("keep_silence_ms (%d) must be between 0 and min_silence_ms (%d)",
			r.KeepSilenceMS, r.MinSilenceMS)
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if _, err := mains.Resolve(a.Hum); err != nil {
		return err
	}

	if a.HumHarmonics < 1 || a.HumHarmonics > 10 {
		return fmt.Errorf("hum_harmonics must be between 1 and 10, got %d", a.HumHarmonics)
	}

	if a.HumQ <= 0 {
		return fmt.Errorf("hum_q must be positive, got %g", a.HumQ)
	}

	return nil
}

// Validate validates output configuration
func (o *OutputConfig) Validate() error {
	if _, err := segments.ParseFormat(o.Format); err != nil {
		return err
	}

	if strings.ContainsAny(o.Suffix, `/\`) {
		return fmt.Errorf("suffix must not contain path separators, got %q", o.Suffix)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	if _, err := logrus.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}

	return nil
}

// Pipeline converts the refine section into an immutable refine.Config.
// Call Validate first; unset thresholds become a factor of 1.
func (c *Config) Pipeline() refine.Config {
	r := c.Refine
	cfg := refine.Config{
		Enabled:         r.Split,
		SearchWindowMS:  r.SearchWindowMS,
		WindowMS:        r.WindowMS,
		SeekStepMS:      r.SeekStepMS,
		MinSilenceRunMS: r.MinSilenceMS,
		KeepSilenceMS:   r.KeepSilenceMS,
		AdjustStart:     r.AdjustStartMS / 1000,
		AdjustEnd:       r.AdjustEndMS / 1000,
		Workers:         r.Workers,

		EdgeThresholdFactor:     1,
		InternalThresholdFactor: 1,
	}
	if r.EdgeThreshold != nil {
		cfg.EdgeThresholdFactor = refine.ThresholdFactor(*r.EdgeThreshold)
	}
	if r.InternalThreshold != nil {
		cfg.InternalThresholdFactor = refine.ThresholdFactor(*r.InternalThreshold)
	}
	return cfg
}

// SetThresholds sets both threshold percentages
func (r *RefineConfig) SetThresholds(edgePct, internalPct float64) {
	r.EdgeThreshold = &edgePct
	r.InternalThreshold = &internalPct
}
