package logger

import "fmt"

const FormatPretty = "pretty"

// Config contains logging configuration.
type Config struct {
	Level   string `yaml:"level" mapstructure:"level"`
	Format  string `yaml:"format" mapstructure:"format"`
	Output  string `yaml:"output" mapstructure:"output"`
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`
	// NoTimestamp disables the timestamp field. Timestamps are on by
	// default, so the zero value keeps them.
	NoTimestamp bool `yaml:"no_timestamp" mapstructure:"no_timestamp"`
	Caller      bool `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if !contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	validFormats := []string{"json", "console", FormatPretty}
	if !contains(validFormats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Format)
	}
	return nil
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
