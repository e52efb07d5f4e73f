package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration. Decode semantics (the
// log format constants) are deliberately not configurable.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Plot   PlotConfig        `yaml:"plot"`
	Export ExportConfig      `yaml:"export"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Plot.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// PlotConfig holds trace rendering configuration.
type PlotConfig struct {
	// Window is the maximum number of ticks shown; longer scans are
	// clamped to the middle Window ticks.
	Window int `yaml:"window"`
}

// Validate validates the plot configuration.
func (c *PlotConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Window, validation.Required, validation.Min(10), validation.Max(1000000)),
	)
}

// ExportConfig holds EDF export configuration.
type ExportConfig struct {
	// RecordSamples is the number of ticks per EDF data record. The EDF
	// record-size cap bounds it above.
	RecordSamples int `yaml:"record_samples"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RecordSamples, validation.Required, validation.Min(1), validation.Max(30720)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values: info
// logging, a 1000-tick plot window and one-second (400-tick) EDF records.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Plot: PlotConfig{
			Window: 1000,
		},
		Export: ExportConfig{
			RecordSamples: 400,
		},
	}
}
